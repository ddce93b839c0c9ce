package postgres

import (
	"context"
	"time"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GuestsRepo reads the guest directory. The guests table is owned by the
// guest-management side; this service never writes it.
type GuestsRepo interface {
	// FindByEmail looks up a guest by lowercased email. Returns (nil, nil)
	// when no guest matches.
	FindByEmail(ctx context.Context, email string) (*domain.Guest, error)
	// GetByID returns a guest by id, (nil, nil) if absent.
	GetByID(ctx context.Context, id int64) (*domain.Guest, error)
}

type GuestsRepoImpl struct{ pool *pgxpool.Pool }

func NewGuestsRepo(pool *pgxpool.Pool) *GuestsRepoImpl { return &GuestsRepoImpl{pool: pool} }

func (r *GuestsRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	const q = `
		SELECT id, email, name, auth_method, created_at
		FROM guests
		WHERE email = lower($1)
	`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Guest
	err := r.pool.QueryRow(ctx, q, email).Scan(&g.ID, &g.Email, &g.Name, &g.AuthMethod, &g.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuestsRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Guest, error) {
	const q = `
		SELECT id, email, name, auth_method, created_at
		FROM guests
		WHERE id = $1
	`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Guest
	err := r.pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.Email, &g.Name, &g.AuthMethod, &g.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
