package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/agreementpdf"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/config"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

const completionEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Welcome to DCarbon</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; line-height: 1.6; color: #1e293b; background-color: #f1f5f9; margin: 0; padding: 20px; }
  .container { max-width: 520px; margin: auto; background: #ffffff; border: 1px solid #e2e8f0; border-radius: 8px; overflow: hidden; }
  .header { background-color: #039994; color: white; padding: 20px; text-align: center; }
  .header h1 { margin: 0; font-size: 22px; }
  .content { padding: 28px; }
  .footer { background-color: #f8fafc; padding: 16px; text-align: center; font-size: 12px; color: #64748b; }
  a.button { display: inline-block; padding: 10px 18px; background: #039994; color: #fff; border-radius: 6px; text-decoration: none; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Your registration is complete</h1>
    </div>
    <div class="content">
      <p>Hello %s,</p>
      <p>Thanks for registering with DCarbon. A copy of your signed agreement is attached for your records.</p>
      <p><a class="button" href="%s">Open your dashboard</a></p>
    </div>
    <div class="footer">
      © %d DCarbon Solutions. All rights reserved.
    </div>
  </div>
</body>
</html>`

// EmailSender delivers one message.
type EmailSender func(ctx context.Context, msg *mail.SGMailV3) error

// SendgridSender returns an EmailSender backed by the SendGrid v3 API.
func SendgridSender(apiKey string) EmailSender {
	client := sendgrid.NewSendClient(apiKey)
	return func(ctx context.Context, msg *mail.SGMailV3) error {
		resp, err := client.SendWithContext(ctx, msg)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
		}
		return nil
	}
}

type NotificationService interface {
	Enabled() bool
	SendRegistrationComplete(ctx context.Context, user *models.User, doc *agreementpdf.Document) error
}

type notificationService struct {
	cfg  *config.Config
	send EmailSender
}

// NewNotificationService sends through send; a nil send uses SendGrid with
// the configured key.
func NewNotificationService(cfg *config.Config, send EmailSender) NotificationService {
	if send == nil {
		send = SendgridSender(cfg.SendgridAPIKey)
	}
	return &notificationService{cfg: cfg, send: send}
}

func (s *notificationService) Enabled() bool {
	return s.cfg.LDFlag_SendCompletionEmail
}

// SendRegistrationComplete mails the welcome message with the agreement PDF
// attached. A nil doc sends the message without an attachment.
func (s *notificationService) SendRegistrationComplete(ctx context.Context, user *models.User, doc *agreementpdf.Document) error {
	if !s.Enabled() {
		return nil
	}
	if user == nil || user.Email == "" {
		return fmt.Errorf("completion email: no recipient")
	}

	name := user.FullName()
	if name == "" {
		name = "there"
	}
	from := mail.NewEmail(constants.OrganizationName, s.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(user.FullName(), user.Email)
	subject := "Welcome to DCarbon - registration complete"
	plain := fmt.Sprintf(
		"Hello %s,\n\nThanks for registering with DCarbon. A copy of your signed agreement is attached.\n\nDashboard: %s\n",
		name, s.cfg.AppUrl,
	)
	htmlBody := fmt.Sprintf(completionEmailHTML, html.EscapeString(name), s.cfg.AppUrl, time.Now().Year())

	msg := mail.NewSingleEmail(from, subject, to, plain, htmlBody)
	if doc != nil && len(doc.Data) > 0 {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(doc.Data))
		att.SetType("application/pdf")
		att.SetFilename(doc.Filename)
		att.SetDisposition("attachment")
		msg.AddAttachment(att)
	}

	if err := s.send(ctx, msg); err != nil {
		return err
	}
	utils.Logger.WithField("userId", user.ID).Info("registration completion email sent")
	return nil
}
