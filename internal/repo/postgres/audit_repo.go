package postgres

import (
	"context"
	"time"

	"github.com/harborview/guestgate/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo appends authentication audit events. Write-only from this
// service's perspective.
type AuditRepo interface {
	Insert(ctx context.Context, ev *domain.AuditEvent) error
}

type AuditRepoImpl struct{ pool *pgxpool.Pool }

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepoImpl { return &AuditRepoImpl{pool: pool} }

func (r *AuditRepoImpl) Insert(ctx context.Context, ev *domain.AuditEvent) error {
	const q = `
		INSERT INTO auth_audit_events (id, guest_id, action, occurred_at, request_ip, user_agent, detail)
		VALUES ($1, NULLIF($2,0), $3, $4, NULLIF($5,'')::inet, $6, $7)
	`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, ev.ID, ev.GuestID, ev.Action, ev.OccurredAt, ev.RequestIP, ev.UserAgent, ev.Detail)
	return err
}
