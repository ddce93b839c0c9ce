package postgres

import (
	"context"
	"time"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionsRepo persists guest sessions. Rows are immutable once created;
// expiry is judged by the caller at read time.
type SessionsRepo interface {
	Create(ctx context.Context, s *domain.GuestSession) error
	// Get returns the session row or (nil, nil) if absent.
	Get(ctx context.Context, token string) (*domain.GuestSession, error)
	// Delete removes a session (sign-out). Deleting an absent session is
	// not an error.
	Delete(ctx context.Context, token string) error
}

type SessionsRepoImpl struct{ pool *pgxpool.Pool }

func NewSessionsRepo(pool *pgxpool.Pool) *SessionsRepoImpl { return &SessionsRepoImpl{pool: pool} }

func (r *SessionsRepoImpl) Create(ctx context.Context, s *domain.GuestSession) error {
	const q = `
		INSERT INTO guest_sessions (token, guest_id, created_at, expires_at, request_ip, user_agent)
		VALUES ($1, $2, $3, $4, NULLIF($5,'')::inet, $6)
	`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, s.Token, s.GuestID, s.CreatedAt, s.ExpiresAt, s.RequestIP, s.UserAgent)
	return err
}

func (r *SessionsRepoImpl) Get(ctx context.Context, token string) (*domain.GuestSession, error) {
	const q = `
		SELECT token, guest_id, created_at, expires_at, coalesce(request_ip::text,''), user_agent
		FROM guest_sessions
		WHERE token = $1
	`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.GuestSession
	err := r.pool.QueryRow(ctx, q, token).Scan(&s.Token, &s.GuestID, &s.CreatedAt, &s.ExpiresAt, &s.RequestIP, &s.UserAgent)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionsRepoImpl) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `DELETE FROM guest_sessions WHERE token = $1`, token)
	return err
}
