package service

import (
	"context"
	"errors"
	"testing"

	"github.com/harborview/guestgate/internal/domain"
)

func TestResolveNormalizesEmail(t *testing.T) {
	guests := newMemGuests(&domain.Guest{ID: 1, Email: "ada@example.com", AuthMethod: domain.AuthMagicLink})
	r := NewCredentialResolver(guests)

	g, err := r.Resolve(context.Background(), "  Ada@Example.COM ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if g.ID != 1 {
		t.Fatalf("resolved guest %d, want 1", g.ID)
	}
	if g.AuthMethod != domain.AuthMagicLink {
		t.Fatalf("strategy %q, want magic_link", g.AuthMethod)
	}
}

func TestResolveUnknownEmail(t *testing.T) {
	r := NewCredentialResolver(newMemGuests())

	if _, err := r.Resolve(context.Background(), "x@example.com"); !errors.Is(err, domain.ErrGuestNotFound) {
		t.Fatalf("got %v, want ErrGuestNotFound", err)
	}
}
