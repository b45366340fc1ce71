// Package ai routes chat and one-shot prompts to the configured language
// model provider and always produces a ChatResponse: when the provider is
// missing or fails, a deterministic demo answer is returned instead.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mets-backend/internal/models"
)

// Provider identifiers.
const (
	GeminiID     = "gemini"
	OpenRouterID = "openRouter"
)

// Mode selects which of a provider's models serves a request.
type Mode string

const (
	ModeChat      Mode = "chat"
	ModeInstruct  Mode = "instruct"
	ModeTechnical Mode = "technical"
)

// Provider sends a message list in its own wire shape. Send returns the raw
// response body; Normalize maps that body, decoded as the provider's own
// response type, to the reply text.
type Provider interface {
	ID() string
	Configured() bool
	Status() models.ProviderStatus
	Send(ctx context.Context, messages []models.ChatMessage, opts models.ChatOptions, mode Mode) (json.RawMessage, error)
	Normalize(raw json.RawMessage) (string, error)
}

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s api error: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s api error: status %d", e.Provider, e.StatusCode)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// postJSON sends payload and returns the response body of a 2xx reply.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		return nil, &StatusError{Provider: provider, StatusCode: resp.StatusCode, Message: errResp.Error.Message}
	}

	if !json.Valid(respBody) {
		return nil, fmt.Errorf("%s returned a non-JSON body", provider)
	}
	return respBody, nil
}

func float64Or(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}
