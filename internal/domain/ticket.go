package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusProcessed TicketStatus = "processed"
	TicketStatusResolved  TicketStatus = "resolved"
	TicketStatusError     TicketStatus = "error"
)

// Category enumerates the triage classification buckets.
type Category string

const (
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategoryFeature   Category = "feature"
	CategoryGeneral   Category = "general"
)

// Urgency enumerates triage-assessed urgency.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Sentiment score bounds; values outside this range never reach storage.
const (
	SentimentMin = 1
	SentimentMax = 10
)

// Ticket is the aggregate for customer support requests. Email and Message
// are immutable after creation; triage-derived fields stay nil until the
// background triage commits an outcome.
type Ticket struct {
	ID             string
	Email          string
	Message        string
	Category       *Category
	SentimentScore *int
	Urgency        *Urgency
	AIDraft        *string
	Status         TicketStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
}

// IsPending reports whether triage has not yet committed an outcome.
func (t *Ticket) IsPending() bool {
	return t.Status == TicketStatusPending
}

// IsHighPriority reports whether triage flagged the ticket as high urgency.
func (t *Ticket) IsHighPriority() bool {
	return t.Urgency != nil && *t.Urgency == UrgencyHigh
}

// ValidCategory reports membership in the closed category enumeration.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategoryFeature, CategoryGeneral:
		return true
	}
	return false
}

// ValidUrgency reports membership in the closed urgency enumeration.
func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}
