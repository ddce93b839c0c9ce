package service

import (
	"testing"

	"github.com/harborview/guestgate/internal/domain"
)

func TestNewTokenFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("new token: %v", err)
		}
		if !domain.IsTokenFormat(tok) {
			t.Fatalf("token %q is not 64 lowercase hex chars", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}
