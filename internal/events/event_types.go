package events

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketTriaged       EventType = "ticket_triaged"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDraftUpdated  EventType = "ticket_draft_updated"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Email          string `json:"email"`
	MessagePreview string `json:"message_preview"`
}

// TicketTriagedPayload payload.
type TicketTriagedPayload struct {
	Outcome  domain.TicketStatus `json:"outcome"`
	Category *domain.Category    `json:"category,omitempty"`
	Urgency  *domain.Urgency     `json:"urgency,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	AgentID   string              `json:"agent_id,omitempty"`
}

// TicketDraftUpdatedPayload payload.
type TicketDraftUpdatedPayload struct {
	AgentID      string `json:"agent_id,omitempty"`
	DraftPreview string `json:"draft_preview"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	AgentID string `json:"agent_id,omitempty"`
}
