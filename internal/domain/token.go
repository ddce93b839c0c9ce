package domain

import "time"

// TokenLength is the rendered length of magic-link and session tokens:
// 32 bytes of randomness, hex-encoded.
const TokenLength = 64

// MagicLinkToken is a single-use credential delivered by email. The token
// value itself is the primary key. Rows are kept after consumption for
// audit and replay detection; cleanup is an external housekeeping concern.
type MagicLinkToken struct {
	Token      string
	GuestID    int64
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	RequestIP  string
	UserAgent  string
}

// GuestSession is immutable once created; it is read until it expires or
// is revoked by sign-out.
type GuestSession struct {
	Token     string
	GuestID   int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RequestIP string
	UserAgent string
}

// IsTokenFormat reports whether s looks like a token this service issued:
// exactly 64 lowercase hex characters. Checked before any storage lookup.
func IsTokenFormat(s string) bool {
	if len(s) != TokenLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
