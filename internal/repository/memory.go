package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/triage-service/internal/domain"
)

// MemoryTicketRepository keeps tickets in memory. Suitable for dev/testing;
// it mirrors the postgres repository's semantics, including pgx.ErrNoRows on
// absent rows and the status guard on the triage commits.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
}

// NewMemoryTicketRepository initializes the in-memory store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (m *MemoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	cp := *ticket
	m.tickets[ticket.ID] = &cp
	return nil
}

func (m *MemoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryTicketRepository) List(_ context.Context, limit, offset int) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	all := make([]domain.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryTicketRepository) UpdateDraft(_ context.Context, id, draft string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.AIDraft = &draft
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryTicketRepository) MarkResolved(_ context.Context, id string, resolvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || t.Status == domain.TicketStatusResolved {
		return pgx.ErrNoRows
	}
	rt := resolvedAt
	t.Status = domain.TicketStatusResolved
	t.ResolvedAt = &rt
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryTicketRepository) Reopen(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || t.Status != domain.TicketStatusResolved {
		return pgx.ErrNoRows
	}
	t.Status = domain.TicketStatusPending
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryTicketRepository) ApplyTriageSuccess(_ context.Context, id string, category domain.Category, urgency domain.Urgency, sentiment int, draft string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || t.Status != domain.TicketStatusPending {
		return pgx.ErrNoRows
	}
	t.Category = &category
	t.Urgency = &urgency
	t.SentimentScore = &sentiment
	t.AIDraft = &draft
	t.Status = domain.TicketStatusProcessed
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryTicketRepository) ApplyTriageFailure(_ context.Context, id string, draft string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || t.Status != domain.TicketStatusPending {
		return pgx.ErrNoRows
	}
	t.AIDraft = &draft
	t.Status = domain.TicketStatusError
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryTicketRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, id)
	return nil
}

// MemoryAgentRepository keeps agent accounts in memory for dev/testing.
type MemoryAgentRepository struct {
	mu     sync.RWMutex
	agents map[string]*domain.Agent // id -> agent
}

// NewMemoryAgentRepository initializes the in-memory store.
func NewMemoryAgentRepository() *MemoryAgentRepository {
	return &MemoryAgentRepository{agents: make(map[string]*domain.Agent)}
}

func (m *MemoryAgentRepository) Create(_ context.Context, agent *domain.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.agents {
		if existing.Email == agent.Email {
			return nil
		}
	}
	agent.CreatedAt = time.Now()
	cp := *agent
	m.agents[agent.ID] = &cp
	return nil
}

func (m *MemoryAgentRepository) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryAgentRepository) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.agents {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}
