package services

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/agreementpdf"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/config"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

func TestNotificationService_Disabled(t *testing.T) {
	called := false
	svc := NewNotificationService(&config.Config{}, func(context.Context, *mail.SGMailV3) error {
		called = true
		return nil
	})

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.SendRegistrationComplete(context.Background(), &models.User{Email: "a@b.co"}, nil))
	assert.False(t, called)
}

func TestNotificationService_SendsEscapedBodyAndAttachment(t *testing.T) {
	var msg *mail.SGMailV3
	cfg := &config.Config{
		AppUrl:                     "https://portal.example",
		LDFlag_SendCompletionEmail: true,
		LDFlag_SendgridFromEmail:   "no-reply@example.com",
	}
	svc := NewNotificationService(cfg, func(_ context.Context, m *mail.SGMailV3) error {
		msg = m
		return nil
	})
	doc := &agreementpdf.Document{Filename: "agreement.pdf", Data: []byte("%PDF-1.4 test")}

	err := svc.SendRegistrationComplete(context.Background(), &models.User{
		ID: "u1", FirstName: "<Ada>", Email: "ada@example.com",
	}, doc)
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, "no-reply@example.com", msg.From.Address)
	require.Len(t, msg.Content, 2)
	htmlBody := msg.Content[1].Value
	assert.Contains(t, htmlBody, "&lt;Ada&gt;")
	assert.False(t, strings.Contains(htmlBody, "<Ada>"))
	assert.Contains(t, htmlBody, "https://portal.example")

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "agreement.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, base64.StdEncoding.EncodeToString(doc.Data), msg.Attachments[0].Content)
}

func TestNotificationService_NeedsRecipient(t *testing.T) {
	svc := NewNotificationService(&config.Config{LDFlag_SendCompletionEmail: true}, func(context.Context, *mail.SGMailV3) error {
		t.Fatal("no message expected")
		return nil
	})
	assert.Error(t, svc.SendRegistrationComplete(context.Background(), &models.User{}, nil))
}
