package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/triage-service/internal/api/http"
	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/internal/worker"
)

type stubTriager struct {
	result *triage.RawResult
	err    error
}

func (s *stubTriager) Triage(_ context.Context, _ string) (*triage.RawResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type testEnv struct {
	app     *fiber.App
	tickets *repository.MemoryTicketRepository
	agents  *repository.MemoryAgentRepository
	auth    *service.AuthService
}

func intPtr(v int) *int { return &v }

func newTestEnv(t *testing.T, triager triage.Triager) *testEnv {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{Name: "test", Version: "test", MaxMessageLength: 10000},
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            4,
			SeedAgentEmail:        "agent@example.com",
			SeedAgentPassword:     "hunter2",
			SeedAgentName:         "Test Agent",
		},
	}

	ticketRepo := repository.NewMemoryTicketRepository()
	agentRepo := repository.NewMemoryAgentRepository()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	ticketService := service.NewTicketService(cfg.App, service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
	})
	authService := service.NewAuthService(cfg, agentRepo)
	if err := authService.EnsureSeedAgent(context.Background()); err != nil {
		t.Fatalf("seed agent: %v", err)
	}

	if triager != nil {
		processor := worker.NewTriageProcessor(ticketRepo, triager, dispatcher, metrics, logger)
		worker.StartTriageWorker(dispatcher, processor)
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Agents:         handlers.NewAgentsHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), agentRepo),
	})

	return &testEnv{app: app, tickets: ticketRepo, agents: agentRepo, auth: authService}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	resp, body := e.request(t, http.MethodPost, "/auth/agents/login", "", map[string]string{
		"email":    "agent@example.com",
		"password": "hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	data, _ := body["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("no token in login response")
	}
	return token
}

func (e *testEnv) createTicket(t *testing.T) string {
	t.Helper()
	resp, body := e.request(t, http.MethodPost, "/tickets", "", map[string]string{
		"email":   "customer@example.com",
		"message": "My invoice is wrong and I was charged twice",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("no ticket id in response")
	}
	if body["status"] != "pending" {
		t.Errorf("status = %v, want pending", body["status"])
	}
	return id
}

func (e *testEnv) waitForStatus(t *testing.T, id, want string) map[string]any {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		resp, body := e.request(t, http.MethodGet, "/tickets/"+id, "", nil)
		if resp.StatusCode == http.StatusOK {
			data, _ := body["data"].(map[string]any)
			if data["status"] == want {
				return data
			}
		}
		select {
		case <-deadline:
			t.Fatalf("ticket %s never reached status %q", id, want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestIntakeToProcessedFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubTriager{result: &triage.RawResult{
		Category:       "Billing",
		SentimentScore: intPtr(4),
		Urgency:        "High",
		DraftReply:     "We are sorry about the double charge.",
	}})

	id := env.createTicket(t)
	data := env.waitForStatus(t, id, "processed")

	if data["category"] != "billing" {
		t.Errorf("category = %v, want billing", data["category"])
	}
	if data["urgency"] != "high" {
		t.Errorf("urgency = %v, want high", data["urgency"])
	}
	if data["sentiment_score"] != float64(4) {
		t.Errorf("sentiment = %v, want 4", data["sentiment_score"])
	}
}

func TestIntakeToErrorFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &stubTriager{err: &triage.Error{Kind: triage.TransportFailure}})

	id := env.createTicket(t)
	data := env.waitForStatus(t, id, "error")

	if data["ai_draft"] != triage.FallbackDraft {
		t.Errorf("draft = %v, want fallback", data["ai_draft"])
	}
	if data["category"] != nil || data["urgency"] != nil || data["sentiment_score"] != nil {
		t.Error("classification fields must stay absent on triage failure")
	}
}

func TestCreateTicket_InvalidPayload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	resp, body := env.request(t, http.MethodPost, "/tickets", "", map[string]string{
		"email":   "not-an-email",
		"message": "help",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	errObj, _ := body["error"].(map[string]any)
	if errObj["code"] != "VALIDATION_FAILED" {
		t.Errorf("code = %v", errObj["code"])
	}
}

func TestGetTicket_Unknown404(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	resp, _ := env.request(t, http.MethodGet, "/tickets/unknown-id", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAgentMutationsRequireAuth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	id := env.createTicket(t)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPatch, "/tickets/" + id + "/draft", map[string]string{"ai_draft": "x"}},
		{http.MethodPatch, "/tickets/" + id + "/resolve", nil},
		{http.MethodPut, "/tickets/" + id + "/reopen", nil},
		{http.MethodDelete, "/tickets/" + id, nil},
	}
	for _, tc := range cases {
		resp, _ := env.request(t, tc.method, tc.path, "", tc.body)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestResolveReopenLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	token := env.login(t)
	id := env.createTicket(t)

	resp, body := env.request(t, http.MethodPatch, "/tickets/"+id+"/resolve", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status = %d", resp.StatusCode)
	}
	data, _ := body["data"].(map[string]any)
	if data["status"] != "resolved" {
		t.Errorf("status = %v, want resolved", data["status"])
	}
	if data["resolved_at"] == nil {
		t.Error("resolved_at not set")
	}

	// Second resolve is rejected.
	resp, body = env.request(t, http.MethodPatch, "/tickets/"+id+"/resolve", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("double resolve status = %d, want 400", resp.StatusCode)
	}
	errObj, _ := body["error"].(map[string]any)
	if errObj["code"] != "INVALID_TRANSITION" {
		t.Errorf("code = %v, want INVALID_TRANSITION", errObj["code"])
	}

	// Reopen goes back to pending.
	resp, body = env.request(t, http.MethodPut, "/tickets/"+id+"/reopen", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reopen status = %d", resp.StatusCode)
	}
	data, _ = body["data"].(map[string]any)
	if data["status"] != "pending" {
		t.Errorf("status = %v, want pending", data["status"])
	}

	// Reopening a pending ticket is rejected.
	resp, _ = env.request(t, http.MethodPut, "/tickets/"+id+"/reopen", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("double reopen status = %d, want 400", resp.StatusCode)
	}
}

func TestDraftEditAndDelete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	token := env.login(t)
	id := env.createTicket(t)

	resp, body := env.request(t, http.MethodPatch, "/tickets/"+id+"/draft", token, map[string]string{
		"ai_draft": "Dear customer, we fixed it.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("draft status = %d", resp.StatusCode)
	}
	data, _ := body["data"].(map[string]any)
	if data["ai_draft"] != "Dear customer, we fixed it." {
		t.Errorf("draft = %v", data["ai_draft"])
	}

	resp, _ = env.request(t, http.MethodDelete, "/tickets/"+id, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodGet, "/tickets/"+id, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestListTickets(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	first := env.createTicket(t)
	second := env.createTicket(t)

	resp, body := env.request(t, http.MethodGet, "/tickets", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	items, _ := body["data"].([]any)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	head, _ := items[0].(map[string]any)
	if head["id"] != second && head["id"] != first {
		t.Errorf("unexpected head id %v", head["id"])
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	resp, _ := env.request(t, http.MethodPost, "/auth/agents/login", "", map[string]string{
		"email":    "agent@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHealthReady_DegradedWithoutPostgres(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	resp, body := env.request(t, http.MethodGet, "/health/ready", "", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if body["status"] != "degraded" {
		t.Errorf("status field = %v, want degraded", body["status"])
	}
	deps, _ := body["dependencies"].(map[string]any)
	if deps["postgres"] == "ok" {
		t.Error("postgres reported ok with no pool configured")
	}
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	resp, body := env.request(t, http.MethodGet, "/health/live", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "alive" {
		t.Errorf("status field = %v", body["status"])
	}
}
