package service

import (
	"testing"
	"time"

	"github.com/harborview/guestgate/internal/domain"
)

func TestAuditRecorderPersistsEvents(t *testing.T) {
	store := &memAudit{}
	rec := NewAuditRecorder(store, nil, "test.audit", 16)

	rec.Record(domain.AuditEvent{GuestID: 1, Action: domain.AuditLoginEmailMatch})
	rec.Record(domain.AuditEvent{Action: domain.AuditMagicLinkRejected, Detail: "invalid token"})
	rec.Close()

	if got := store.len(); got != 2 {
		t.Fatalf("persisted %d events, want 2", got)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, ev := range store.events {
		if ev.ID == "" {
			t.Error("event missing generated id")
		}
		if ev.OccurredAt.IsZero() {
			t.Error("event missing timestamp")
		}
	}
}

func TestAuditRecorderNeverBlocks(t *testing.T) {
	store := &memAudit{}
	rec := NewAuditRecorder(store, nil, "test.audit", 1)

	done := make(chan struct{})
	go func() {
		// Far more events than the buffer holds; Record must still return
		// promptly, dropping what doesn't fit.
		for i := 0; i < 1000; i++ {
			rec.Record(domain.AuditEvent{Action: domain.AuditSessionIssued})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Record blocked the caller")
	}
	rec.Close()
}
