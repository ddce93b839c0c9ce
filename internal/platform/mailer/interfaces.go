package mailer

import "time"

// Service delivers guest-facing mail. The auth flow only decides that and
// what to send; transport lives behind this interface.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendMagicLink(toEmail, toName, link string, expiresAt time.Time) error
}
