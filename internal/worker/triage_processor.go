package worker

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/triage"
)

// TriageProcessor drives a ticket from pending to a terminal triage outcome.
// Each invocation runs off the request path, loads one ticket, and commits
// exactly one transition. Any failure degrades the ticket to the error state
// with a customer-safe draft; nothing here is fatal to the process.
type TriageProcessor struct {
	tickets    repository.TicketRepository
	triager    triage.Triager
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewTriageProcessor constructs the processor.
func NewTriageProcessor(tickets repository.TicketRepository, triager triage.Triager, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *TriageProcessor {
	return &TriageProcessor{
		tickets:    tickets,
		triager:    triager,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Process triages the ticket with the given id. A ticket deleted before the
// task ran is not an error; the processor returns silently.
func (p *TriageProcessor) Process(ctx context.Context, ticketID string) {
	log := p.logger.With(zap.String("ticket_id", ticketID))

	ticket, err := p.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug("ticket gone before triage; skipping")
			return
		}
		log.Error("load ticket for triage", zap.Error(err))
		return
	}
	if !ticket.IsPending() {
		log.Warn("ticket not pending; skipping triage", zap.String("status", string(ticket.Status)))
		return
	}

	raw, err := p.triager.Triage(ctx, ticket.Message)
	if err != nil {
		log.Error("triage call failed", zap.Error(err))
		p.commitFailure(ctx, log, ticketID)
		return
	}

	result := triage.Validate(raw)
	for _, warning := range result.Warnings {
		log.Warn("triage output corrected", zap.String("warning", warning))
	}

	if err := p.tickets.ApplyTriageSuccess(ctx, ticketID, result.Category, result.Urgency, result.SentimentScore, result.DraftReply); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug("ticket gone or no longer pending; triage result dropped")
			return
		}
		log.Error("commit triage result", zap.Error(err))
		p.commitFailure(ctx, log, ticketID)
		return
	}

	p.metrics.RecordTriage(string(domain.TicketStatusProcessed))
	p.publish(ctx, ticketID, events.TicketTriagedPayload{
		Outcome:  domain.TicketStatusProcessed,
		Category: &result.Category,
		Urgency:  &result.Urgency,
		Warnings: result.Warnings,
	})
	log.Info("triage complete",
		zap.String("category", string(result.Category)),
		zap.String("urgency", string(result.Urgency)),
		zap.Int("sentiment", result.SentimentScore),
	)
}

func (p *TriageProcessor) commitFailure(ctx context.Context, log *zap.Logger, ticketID string) {
	if err := p.tickets.ApplyTriageFailure(ctx, ticketID, triage.FallbackDraft); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug("ticket gone or no longer pending; failure commit dropped")
			return
		}
		// The ticket stays pending; an out-of-band sweep must pick it up.
		log.Error("commit triage failure state", zap.Error(err))
		return
	}
	p.metrics.RecordTriage(string(domain.TicketStatusError))
	p.publish(ctx, ticketID, events.TicketTriagedPayload{Outcome: domain.TicketStatusError})
}

func (p *TriageProcessor) publish(ctx context.Context, ticketID string, payload events.TicketTriagedPayload) {
	if p.dispatcher == nil {
		return
	}
	_ = p.dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketTriaged,
		TicketID: ticketID,
		Payload:  payload,
	})
}
