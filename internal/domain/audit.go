package domain

import "time"

// Audit action tags.
const (
	AuditLoginEmailMatch   = "login.email_match"
	AuditMagicLinkRequest  = "magic_link.requested"
	AuditMagicLinkVerified = "magic_link.verified"
	AuditMagicLinkRejected = "magic_link.rejected"
	AuditSessionIssued     = "session.issued"
	AuditSessionRevoked    = "session.revoked"
	AuditAuthFailed        = "auth.failed"
)

// AuditEvent is append-only; this service writes it and never reads it back.
type AuditEvent struct {
	ID         string    `json:"id"`
	GuestID    int64     `json:"guest_id,omitempty"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestIP  string    `json:"request_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}
