package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/harborview/guestgate/internal/domain"
)

// NewToken returns a fresh 256-bit credential rendered as 64 lowercase hex
// characters. Used for both magic-link tokens and session tokens.
func NewToken() (string, error) {
	buf := make([]byte, domain.TokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
