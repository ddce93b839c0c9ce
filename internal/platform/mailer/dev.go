package mailer

import (
	"time"

	"github.com/harborview/guestgate/pkg/logger"
)

// DevMailer logs instead of sending. Used with EMAIL_DEV_MODE so local
// development works without an SMTP server.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("dev mailer: would send email", "to", toEmail, "subject", subject, "text", text)
	return "dev", nil
}

func (d *DevMailer) SendMagicLink(toEmail, toName, link string, expiresAt time.Time) error {
	logger.Info("dev mailer: magic link", "to", toEmail, "link", link, "expires_at", expiresAt.Format(time.RFC3339))
	return nil
}
