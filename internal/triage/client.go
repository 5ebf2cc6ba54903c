package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spec-kit/triage-service/internal/config"
)

const systemPrompt = `You are a customer support triage system.

IMPORTANT:
- Detect the language used by the customer.
- Write the draft_reply in THE SAME LANGUAGE as the customer message.
- Do not mention language detection in the output.

Return ONLY valid JSON with this schema:
{
  "category": "Billing | Technical | Feature Request",
  "sentiment_score": number (1-10),
  "urgency": "High | Medium | Low",
  "draft_reply": string
}

Rules:
- No markdown
- No explanation
- JSON only`

// RawResult is the model's classification as parsed from its reply, before
// any validation. Field values are untrusted.
type RawResult struct {
	Category       string `json:"category"`
	SentimentScore *int   `json:"sentiment_score"`
	Urgency        string `json:"urgency"`
	DraftReply     string `json:"draft_reply"`
}

// Triager classifies a customer message and drafts a reply.
type Triager interface {
	Triage(ctx context.Context, message string) (*RawResult, error)
}

// Client talks to an Ollama-style generation endpoint.
type Client struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewClient builds the triage client. The timeout bounds the whole call; a
// single attempt is made, never a retry.
func NewClient(cfg config.TriageConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Triage sends the message embedded in the instruction prompt and extracts
// the JSON object from the free-form reply.
func (c *Client) Triage(ctx context.Context, message string) (*RawResult, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: fmt.Sprintf("%s\n\nCustomer complaint:\n%s", systemPrompt, message),
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(TransportFailure, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newError(TransportFailure, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, newError(TransportFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(TransportFailure, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(TransportFailure, fmt.Errorf("generation endpoint returned %d", resp.StatusCode))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, newError(MalformedOutput, fmt.Errorf("decode envelope: %w", err))
	}

	return ExtractResult(gen.Response)
}

// ExtractResult pulls the JSON object out of free-form model output. The
// model may wrap the object in commentary; everything outside the first `{`
// and last `}` is discarded.
func ExtractResult(text string) (*RawResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, newError(MalformedOutput, fmt.Errorf("no JSON object in model output"))
	}

	var raw RawResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, newError(MalformedOutput, fmt.Errorf("parse model output: %w", err))
	}
	return &raw, nil
}
