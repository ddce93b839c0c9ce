package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harborview/guestgate/internal/domain"
)

func TestSessionValidUntilExpiry(t *testing.T) {
	now := time.Now()
	repo := newMemSessions()
	m := NewSessionManager(repo, 24*time.Hour)
	m.now = func() time.Time { return now }

	sess, err := m.IssueSession(context.Background(), 11, domain.Provenance{IP: "203.0.113.4"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if !domain.IsTokenFormat(sess.Token) {
		t.Fatalf("session token %q is not 64 lowercase hex chars", sess.Token)
	}
	if !sess.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expires at %v, want now+24h", sess.ExpiresAt)
	}

	// Valid one instant before expiry.
	now = sess.ExpiresAt.Add(-time.Second)
	guestID, err := m.ValidateSession(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("validate before expiry: %v", err)
	}
	if guestID != 11 {
		t.Fatalf("bound to guest %d, want 11", guestID)
	}

	// Invalid at the expiry instant.
	now = sess.ExpiresAt
	if _, err := m.ValidateSession(context.Background(), sess.Token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("at expiry: got %v, want ErrSessionExpired", err)
	}

	// And after it.
	now = sess.ExpiresAt.Add(time.Hour)
	if _, err := m.ValidateSession(context.Background(), sess.Token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("after expiry: got %v, want ErrSessionExpired", err)
	}
}

func TestValidateUnknownSession(t *testing.T) {
	m := NewSessionManager(newMemSessions(), 24*time.Hour)

	if _, err := m.ValidateSession(context.Background(), strings.Repeat("ef", 32)); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("got %v, want ErrSessionInvalid", err)
	}
	if _, err := m.ValidateSession(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("malformed: got %v, want ErrSessionInvalid", err)
	}
}

func TestConcurrentSessionsPerGuest(t *testing.T) {
	repo := newMemSessions()
	m := NewSessionManager(repo, 24*time.Hour)

	a, err := m.IssueSession(context.Background(), 9, domain.Provenance{UserAgent: "phone"})
	if err != nil {
		t.Fatalf("first session: %v", err)
	}
	b, err := m.IssueSession(context.Background(), 9, domain.Provenance{UserAgent: "laptop"})
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if a.Token == b.Token {
		t.Fatal("two sessions share a token")
	}

	for _, tok := range []string{a.Token, b.Token} {
		if id, err := m.ValidateSession(context.Background(), tok); err != nil || id != 9 {
			t.Fatalf("session %q: id=%d err=%v", tok[:8], id, err)
		}
	}
}

func TestRevokeSession(t *testing.T) {
	repo := newMemSessions()
	m := NewSessionManager(repo, 24*time.Hour)

	sess, err := m.IssueSession(context.Background(), 4, domain.Provenance{})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if err := m.Revoke(context.Background(), sess.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := m.ValidateSession(context.Background(), sess.Token); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("after revoke: got %v, want ErrSessionInvalid", err)
	}

	// Revoking again is a no-op.
	if err := m.Revoke(context.Background(), sess.Token); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}
