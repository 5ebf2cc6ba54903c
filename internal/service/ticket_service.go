package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/repository"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// TicketService coordinates the ticket lifecycle. Triage itself runs in the
// background worker; creation only records the ticket and publishes the
// event that schedules it.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	limiter    *persistence.RateLimiter
	maxMessage int
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Limiter    *persistence.RateLimiter
}

// TicketCreateInput describes the intake payload.
type TicketCreateInput struct {
	Email   string
	Message string
}

// NewTicketService constructs the service.
func NewTicketService(cfg config.AppConfig, deps TicketDependencies) *TicketService {
	maxMessage := cfg.MaxMessageLength
	if maxMessage <= 0 {
		maxMessage = 10000
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		limiter:    deps.Limiter,
		maxMessage: maxMessage,
	}
}

// CreateTicket validates intake input and records a pending ticket. The
// returned ticket carries no triage-derived fields; they are populated by
// the background pipeline after this call has returned.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	if len(message) > s.maxMessage {
		return nil, apperrors.NewValidationError("message too long", map[string]any{
			"max_length": s.maxMessage,
		})
	}

	if !s.limiter.Allow(ctx, strings.ToLower(email)) {
		return nil, apperrors.NewTooManyRequests("too many tickets submitted; try again later")
	}

	ticket := &domain.Ticket{
		ID:      uuid.NewString(),
		Email:   email,
		Message: message,
		Status:  domain.TicketStatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Email:          ticket.Email,
			MessagePreview: stringPreview(ticket.Message, 120),
		},
	})
	return ticket, nil
}

// ListTickets returns tickets newest first.
func (s *TicketService) ListTickets(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketError(err)
	}
	return ticket, nil
}

// UpdateDraft overwrites the AI draft with agent-edited text. Legal from any
// state; the commit touches only the draft column, so an edit racing the
// background triage can never revert the triage outcome.
func (s *TicketService) UpdateDraft(ctx context.Context, agentID, ticketID, draft string) (*domain.Ticket, error) {
	if strings.TrimSpace(draft) == "" {
		return nil, apperrors.NewValidationError("draft required", nil)
	}

	if err := s.tickets.UpdateDraft(ctx, ticketID, draft); err != nil {
		return nil, mapTicketError(err)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDraftUpdated,
		TicketID: ticket.ID,
		Payload: events.TicketDraftUpdatedPayload{
			AgentID:      agentID,
			DraftPreview: stringPreview(draft, 120),
		},
	})
	return ticket, nil
}

// ResolveTicket transitions a ticket into resolved. Resolving an already
// resolved ticket is rejected so agents notice duplicate actions.
func (s *TicketService) ResolveTicket(ctx context.Context, agentID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketError(err)
	}
	if ticket.Status == domain.TicketStatusResolved {
		return nil, apperrors.NewInvalidTransition("ticket already resolved", nil)
	}

	if err := s.tickets.MarkResolved(ctx, ticketID, time.Now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Guard miss: the ticket was resolved or deleted after the read.
			if _, getErr := s.tickets.GetByID(ctx, ticketID); getErr != nil {
				return nil, mapTicketError(getErr)
			}
			return nil, apperrors.NewInvalidTransition("ticket already resolved", nil)
		}
		return nil, apperrors.MapError(err)
	}

	resolved, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketError(err)
	}
	s.publishStatusChange(ctx, resolved.ID, agentID, ticket.Status, resolved.Status)
	return resolved, nil
}

// ReopenTicket transitions a resolved ticket back to pending. The prior
// resolution timestamp is retained as history.
func (s *TicketService) ReopenTicket(ctx context.Context, agentID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketError(err)
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewInvalidTransition("only resolved tickets can be reopened", nil)
	}

	if err := s.tickets.Reopen(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := s.tickets.GetByID(ctx, ticketID); getErr != nil {
				return nil, mapTicketError(getErr)
			}
			return nil, apperrors.NewInvalidTransition("only resolved tickets can be reopened", nil)
		}
		return nil, apperrors.MapError(err)
	}

	reopened, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapTicketError(err)
	}
	s.publishStatusChange(ctx, reopened.ID, agentID, ticket.Status, reopened.Status)
	return reopened, nil
}

// DeleteTicket removes a ticket permanently.
func (s *TicketService) DeleteTicket(ctx context.Context, agentID, ticketID string) error {
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return mapTicketError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		Payload:  events.TicketDeletedPayload{AgentID: agentID},
	})
	return nil
}

func (s *TicketService) publishStatusChange(ctx context.Context, ticketID, agentID string, oldStatus, newStatus domain.TicketStatus) {
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			AgentID:   agentID,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapTicketError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return apperrors.MapError(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
