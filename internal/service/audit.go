package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harborview/guestgate/internal/domain"
	"github.com/harborview/guestgate/internal/repo/postgres"
	"github.com/harborview/guestgate/pkg/events"
	"github.com/harborview/guestgate/pkg/logger"
)

// AuditSink records authentication events without ever blocking or failing
// the request that produced them.
type AuditSink interface {
	Record(ev domain.AuditEvent)
}

// AuditRecorder buffers events on a bounded channel and drains them from a
// single background worker that appends to Postgres and publishes on NATS.
// A full buffer drops the event with a local warning; audit-log
// availability must never gate authentication.
type AuditRecorder struct {
	repo    postgres.AuditRepo
	bus     events.Publisher
	subject string
	ch      chan domain.AuditEvent
	done    chan struct{}
	now     func() time.Time
}

func NewAuditRecorder(repo postgres.AuditRepo, bus events.Publisher, subject string, buffer int) *AuditRecorder {
	r := &AuditRecorder{
		repo:    repo,
		bus:     bus,
		subject: subject,
		ch:      make(chan domain.AuditEvent, buffer),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go r.run()
	return r
}

// Record enqueues the event and returns immediately.
func (r *AuditRecorder) Record(ev domain.AuditEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = r.now()
	}

	select {
	case r.ch <- ev:
	default:
		logger.Warn("audit buffer full, dropping event", "action", ev.Action)
	}
}

func (r *AuditRecorder) run() {
	defer close(r.done)
	for ev := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := r.repo.Insert(ctx, &ev); err != nil {
			logger.Error("failed to persist audit event", "action", ev.Action, "error", err)
		}
		if r.bus != nil {
			if err := r.bus.Publish(ctx, r.subject+"."+ev.Action, ev); err != nil {
				logger.Error("failed to publish audit event", "action", ev.Action, "error", err)
			}
		}
		cancel()
	}
}

// Close stops accepting events and waits for the worker to drain the
// buffer.
func (r *AuditRecorder) Close() {
	close(r.ch)
	<-r.done
}
