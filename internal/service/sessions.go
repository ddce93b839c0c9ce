package service

import (
	"context"
	"fmt"
	"time"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/harborview/guestgate/internal/repo/postgres"
)

// SessionManager issues sessions after successful authentication and
// validates them on later requests. Sessions are immutable rows: no sliding
// expiry, a new login is a new row, and concurrent sessions from several
// devices are fine.
type SessionManager struct {
	sessions postgres.SessionsRepo
	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

func NewSessionManager(sessions postgres.SessionsRepo, ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		newToken: NewToken,
	}
}

func (m *SessionManager) IssueSession(ctx context.Context, guestID int64, prov domain.Provenance) (*domain.GuestSession, error) {
	value, err := m.newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := m.now()
	s := &domain.GuestSession{
		Token:     value,
		GuestID:   guestID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		RequestIP: prov.IP,
		UserAgent: prov.UserAgent,
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return s, nil
}

// ValidateSession returns the guest id bound to the token. Expiry is
// enforced lazily here: a row past its expires_at is reported expired, not
// returned. Valid strictly before expiry, invalid at or after it.
func (m *SessionManager) ValidateSession(ctx context.Context, token string) (int64, error) {
	if !domain.IsTokenFormat(token) {
		return 0, domain.ErrSessionInvalid
	}

	s, err := m.sessions.Get(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	if s == nil {
		return 0, domain.ErrSessionInvalid
	}
	if !m.now().Before(s.ExpiresAt) {
		return 0, domain.ErrSessionExpired
	}
	return s.GuestID, nil
}

// Session returns the full session row for introspection, applying the same
// expiry rule as ValidateSession.
func (m *SessionManager) Session(ctx context.Context, token string) (*domain.GuestSession, error) {
	if !domain.IsTokenFormat(token) {
		return nil, domain.ErrSessionInvalid
	}

	s, err := m.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if s == nil {
		return nil, domain.ErrSessionInvalid
	}
	if !m.now().Before(s.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}
	return s, nil
}

// Revoke deletes the session (sign-out). Revoking an unknown token is a
// no-op.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if !domain.IsTokenFormat(token) {
		return nil
	}
	if err := m.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
