package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Agents         *handlers.AgentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Intake and reads are public; mutations
// require an authenticated agent.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/agents/login", cfg.Agents.Login)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)

	protected := tickets.Group("", cfg.AuthMiddleware.Handle)
	protected.Patch("/:id/draft", cfg.Tickets.UpdateDraft)
	protected.Patch("/:id/resolve", cfg.Tickets.ResolveTicket)
	protected.Put("/:id/reopen", cfg.Tickets.ReopenTicket)
	protected.Delete("/:id", cfg.Tickets.DeleteTicket)
}
