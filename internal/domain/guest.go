package domain

import "time"

// AuthMethod selects how a guest proves identity.
type AuthMethod string

const (
	AuthEmailMatching AuthMethod = "email_matching"
	AuthMagicLink     AuthMethod = "magic_link"
)

// Guest is owned by the guest-management side; this service only reads it.
type Guest struct {
	ID         int64
	Email      string // stored lowercased
	Name       string
	AuthMethod AuthMethod
	CreatedAt  time.Time
}

// Provenance captures where a request came from. Audit-only; never part of
// any authentication decision.
type Provenance struct {
	IP        string
	UserAgent string
}
