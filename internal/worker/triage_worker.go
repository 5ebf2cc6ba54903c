package worker

import (
	"context"

	"github.com/spec-kit/triage-service/internal/events"
)

// StartTriageWorker subscribes the processor to ticket creation events. Each
// created ticket spawns one detached goroutine driving the triage pipeline;
// the request that created the ticket has already returned by the time the
// processor runs. There is no durable queue: a crash between creation and
// commit leaves the ticket pending, which operators reconcile out of band.
func StartTriageWorker(dispatcher events.Dispatcher, processor *TriageProcessor) {
	if dispatcher == nil || processor == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, event events.Event) error {
		go processor.Process(context.WithoutCancel(ctx), event.TicketID)
		return nil
	})
}
