package service

import (
	"context"
	"sync"
	"time"

	"github.com/harborview/guestgate/internal/domain"
)

// memTokens implements postgres.TokensRepo with the same atomic consume
// semantics the SQL gives us, under a mutex.
type memTokens struct {
	mu       sync.Mutex
	rows     map[string]*domain.MagicLinkToken
	now      func() time.Time
	consumes int
	creates  int
}

func newMemTokens(now func() time.Time) *memTokens {
	return &memTokens{rows: make(map[string]*domain.MagicLinkToken), now: now}
}

func (m *memTokens) Create(_ context.Context, t *domain.MagicLinkToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if _, ok := m.rows[t.Token]; ok {
		return domain.ErrTokenExists
	}
	cp := *t
	m.rows[t.Token] = &cp
	return nil
}

func (m *memTokens) Consume(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumes++
	row, ok := m.rows[token]
	if !ok {
		return 0, domain.ErrTokenNotFound
	}
	now := m.now()
	if !now.Before(row.ExpiresAt) {
		return 0, domain.ErrTokenExpired
	}
	if row.ConsumedAt != nil {
		return 0, domain.ErrTokenUsed
	}
	row.ConsumedAt = &now
	return row.GuestID, nil
}

// memSessions implements postgres.SessionsRepo in memory.
type memSessions struct {
	mu   sync.Mutex
	rows map[string]*domain.GuestSession
}

func newMemSessions() *memSessions {
	return &memSessions{rows: make(map[string]*domain.GuestSession)}
}

func (m *memSessions) Create(_ context.Context, s *domain.GuestSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.rows[s.Token] = &cp
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (*domain.GuestSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[token]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, token)
	return nil
}

// memGuests implements postgres.GuestsRepo in memory.
type memGuests struct {
	byEmail map[string]*domain.Guest
}

func newMemGuests(guests ...*domain.Guest) *memGuests {
	m := &memGuests{byEmail: make(map[string]*domain.Guest)}
	for _, g := range guests {
		m.byEmail[g.Email] = g
	}
	return m
}

func (m *memGuests) FindByEmail(_ context.Context, email string) (*domain.Guest, error) {
	g, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	return g, nil
}

func (m *memGuests) GetByID(_ context.Context, id int64) (*domain.Guest, error) {
	for _, g := range m.byEmail {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, nil
}

// memAudit records events synchronously for assertions.
type memAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (m *memAudit) Record(ev domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *memAudit) Insert(_ context.Context, ev *domain.AuditEvent) error {
	m.Record(*ev)
	return nil
}

func (m *memAudit) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
