package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokensRepo persists magic-link tokens. Consumed rows are kept for audit
// and replay detection; an external housekeeping job may remove them later.
type TokensRepo interface {
	// Create inserts an unconsumed token row. Returns domain.ErrTokenExists
	// on a primary-key collision instead of overwriting.
	Create(ctx context.Context, t *domain.MagicLinkToken) error
	// Consume atomically marks the token used and returns the owning guest
	// id. Exactly one of any set of concurrent calls for the same token
	// succeeds; the rest get domain.ErrTokenUsed. Other failures are
	// domain.ErrTokenNotFound or domain.ErrTokenExpired.
	Consume(ctx context.Context, token string) (int64, error)
}

type TokensRepoImpl struct{ pool *pgxpool.Pool }

func NewTokensRepo(pool *pgxpool.Pool) *TokensRepoImpl { return &TokensRepoImpl{pool: pool} }

func (r *TokensRepoImpl) Create(ctx context.Context, t *domain.MagicLinkToken) error {
	const q = `
		INSERT INTO magic_link_tokens (token, guest_id, created_at, expires_at, request_ip, user_agent)
		VALUES ($1, $2, $3, $4, NULLIF($5,'')::inet, $6)
	`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, t.Token, t.GuestID, t.CreatedAt, t.ExpiresAt, t.RequestIP, t.UserAgent)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrTokenExists
	}
	return err
}

func (r *TokensRepoImpl) Consume(ctx context.Context, token string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Conditional update: reads and flips the consumed flag in one
	// statement, so two concurrent redemptions cannot both win.
	var guestID int64
	err := r.pool.QueryRow(ctx, `
UPDATE magic_link_tokens
SET consumed_at = now()
WHERE token = $1
  AND consumed_at IS NULL
  AND expires_at > now()
RETURNING guest_id
`, token).Scan(&guestID)
	if err == nil {
		return guestID, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}

	// The update matched nothing; classify why so the caller can tell the
	// guest whether to request a new link.
	var (
		expiresAt time.Time
		consumed  *time.Time
	)
	err = r.pool.QueryRow(ctx,
		`SELECT expires_at, consumed_at FROM magic_link_tokens WHERE token = $1`,
		token).Scan(&expiresAt, &consumed)
	if err == pgx.ErrNoRows {
		return 0, domain.ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	// Expiry wins over consumption: an expired token is dead either way.
	if !time.Now().Before(expiresAt) {
		return 0, domain.ErrTokenExpired
	}
	return 0, domain.ErrTokenUsed
}
