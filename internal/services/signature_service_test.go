package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/session"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/signature"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
)

func newSignatures(t *testing.T, remote *fakeRemote) (SignatureService, *session.MemoryStore) {
	t.Helper()
	sessions, store := newSessions(t, remote)
	return NewSignatureService(remote, sessions, signature.WithProgressTick(time.Millisecond)), store
}

func TestSignatureService_DrawnSignatureIsSaved(t *testing.T) {
	remote := newFakeRemote()
	var uploaded dcarbon.File
	remote.uploadSig = func(f dcarbon.File) (*models.Agreement, error) {
		uploaded = f
		return &models.Agreement{SignatureURL: "https://files.example/drawn.png"}, nil
	}
	svc, store := newSignatures(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)

	snap, err := svc.Submit(context.Background(), sess, SignatureInput{
		Mode:    signature.ModeDraw,
		Strokes: [][]signature.Point{{{X: 10, Y: 10}, {X: 80, Y: 40}}},
	})
	require.NoError(t, err)
	assert.Equal(t, signature.StatusUploaded, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	assert.Equal(t, "image/png", uploaded.ContentType)

	stored, err := store.GetByID(context.Background(), sess.GetID())
	require.NoError(t, err)
	var url string
	ok, err := session.GetJSON(stored, session.KeySignatureURL, &url)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://files.example/drawn.png", url)

	assert.Equal(t, signature.StatusUploaded, svc.Progress(sess).Status)
}

func TestSignatureService_BlankCaptureNeverUploads(t *testing.T) {
	remote := newFakeRemote()
	svc, store := newSignatures(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)

	tests := []SignatureInput{
		{Mode: signature.ModeDraw},
		{Mode: signature.ModeType, Text: "   "},
		{Mode: signature.ModeUpload},
	}
	for _, in := range tests {
		t.Run(string(in.Mode), func(t *testing.T) {
			_, err := svc.Submit(context.Background(), sess, in)
			var vErr *utils.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
	assert.Zero(t, remote.count("UploadSignature"))
}

func TestSignatureService_UploadFailureKeepsMessage(t *testing.T) {
	remote := newFakeRemote()
	remote.uploadSig = func(dcarbon.File) (*models.Agreement, error) {
		return nil, &dcarbon.APIError{StatusCode: http.StatusRequestEntityTooLarge, Message: "Signature image too large"}
	}
	svc, store := newSignatures(t, remote)
	sess := storedSession(t, store, models.UserTypeResidential)

	snap, err := svc.Submit(context.Background(), sess, SignatureInput{Mode: signature.ModeType, Text: "Ada Lovelace"})
	require.Error(t, err)
	assert.Equal(t, signature.StatusError, snap.Status)
	assert.Equal(t, "Signature image too large", snap.Error)

	stored, _ := store.GetByID(context.Background(), sess.GetID())
	_, has := stored.Values[session.KeySignatureURL]
	assert.False(t, has)
}

func TestSignatureService_ProgressWithoutWidget(t *testing.T) {
	svc, store := newSignatures(t, newFakeRemote())
	sess := storedSession(t, store, models.UserTypeResidential)

	snap := svc.Progress(sess)
	assert.Equal(t, signature.ModeDraw, snap.Mode)
	assert.Equal(t, signature.StatusIdle, snap.Status)
}

func TestSignatureService_LogoutForgetsWidget(t *testing.T) {
	remote := newFakeRemote()
	svc, store := newSignatures(t, remote)
	sessions := NewSessionService(store, remote, testSecret, time.Hour, svc)
	sess := storedSession(t, store, models.UserTypeResidential)

	_, err := svc.Submit(context.Background(), sess, SignatureInput{Mode: signature.ModeType, Text: "Ada"})
	require.NoError(t, err)
	require.Equal(t, signature.StatusUploaded, svc.Progress(sess).Status)

	require.NoError(t, sessions.Logout(context.Background(), sess))
	assert.Equal(t, signature.StatusIdle, svc.Progress(sess).Status)
}
