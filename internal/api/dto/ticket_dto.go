package dto

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// CreateTicketResponse acknowledges intake; triage results arrive later.
type CreateTicketResponse struct {
	ID     string              `json:"id"`
	Status domain.TicketStatus `json:"status"`
}

// UpdateDraftRequest payload.
type UpdateDraftRequest struct {
	AIDraft string `json:"ai_draft"`
}

// TicketListItem response.
type TicketListItem struct {
	ID        string              `json:"id"`
	Email     string              `json:"email"`
	Category  *domain.Category    `json:"category"`
	Urgency   *domain.Urgency     `json:"urgency"`
	Status    domain.TicketStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID             string              `json:"id"`
	Email          string              `json:"email"`
	Message        string              `json:"message"`
	Category       *domain.Category    `json:"category"`
	SentimentScore *int                `json:"sentiment_score"`
	Urgency        *domain.Urgency     `json:"urgency"`
	AIDraft        *string             `json:"ai_draft"`
	Status         domain.TicketStatus `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	ResolvedAt     *time.Time          `json:"resolved_at"`
}
