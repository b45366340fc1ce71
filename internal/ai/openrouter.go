package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mets-backend/internal/models"
)

const (
	DefaultOpenRouterURL           = "https://openrouter.ai/api/v1"
	DefaultOpenRouterChatModel     = "google/gemini-pro-1.5-exp-03-25"
	DefaultOpenRouterInstructModel = "google/gemini-flash-1.5"
)

type OpenRouterConfig struct {
	APIKey         string
	APIURL         string
	ChatModel      string
	InstructModel  string
	TechnicalModel string
	SiteURL        string
	AppName        string
}

// OpenRouterProvider speaks the OpenAI-compatible chat completions API.
type OpenRouterProvider struct {
	cfg        OpenRouterConfig
	httpClient *http.Client
}

func NewOpenRouterProvider(cfg OpenRouterConfig, httpClient *http.Client) *OpenRouterProvider {
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultOpenRouterChatModel
	}
	if cfg.InstructModel == "" {
		cfg.InstructModel = DefaultOpenRouterInstructModel
	}
	if cfg.TechnicalModel == "" {
		cfg.TechnicalModel = cfg.ChatModel
	}
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &OpenRouterProvider{cfg: cfg, httpClient: httpClient}
}

func (p *OpenRouterProvider) ID() string { return OpenRouterID }

func (p *OpenRouterProvider) Configured() bool {
	return p.cfg.APIKey != "" && p.cfg.APIURL != ""
}

func (p *OpenRouterProvider) Status() models.ProviderStatus {
	return models.ProviderStatus{
		Configured:   p.Configured(),
		DefaultModel: p.cfg.ChatModel,
		Models: map[string]string{
			string(ModeChat):      p.cfg.ChatModel,
			string(ModeInstruct):  p.cfg.InstructModel,
			string(ModeTechnical): p.cfg.TechnicalModel,
		},
	}
}

func (p *OpenRouterProvider) model(mode Mode) string {
	switch mode {
	case ModeInstruct:
		return p.cfg.InstructModel
	case ModeTechnical:
		return p.cfg.TechnicalModel
	default:
		return p.cfg.ChatModel
	}
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

// chatMessage.Content is either a string or a []chatContentPart.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func buildChatRequest(model string, messages []models.ChatMessage, opts models.ChatOptions) chatRequest {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		if m.ImageURL != "" {
			out = append(out, chatMessage{
				Role: string(m.Role),
				Content: []chatContentPart{
					{Type: "text", Text: m.Content},
					{Type: "image_url", ImageURL: &chatImageURL{URL: m.ImageURL}},
				},
			})
			continue
		}
		out = append(out, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	return chatRequest{
		Model:       model,
		Messages:    out,
		Temperature: float64Or(opts.Temperature, 0.7),
		MaxTokens:   intOr(opts.MaxTokens, 2048),
		TopP:        float64Or(opts.TopP, 0.8),
	}
}

func (p *OpenRouterProvider) Send(ctx context.Context, messages []models.ChatMessage, opts models.ChatOptions, mode Mode) (json.RawMessage, error) {
	if !p.Configured() {
		return nil, errors.New("openRouter is not configured")
	}

	model := opts.Model
	if model == "" {
		model = p.model(mode)
	}

	headers := map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	if p.cfg.SiteURL != "" {
		headers["HTTP-Referer"] = p.cfg.SiteURL
	}
	if p.cfg.AppName != "" {
		headers["X-Title"] = p.cfg.AppName
	}

	url := joinURL(p.cfg.APIURL, "chat/completions")
	return postJSON(ctx, p.httpClient, OpenRouterID, url, headers, buildChatRequest(model, messages, opts))
}

func (p *OpenRouterProvider) Normalize(raw json.RawMessage) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode openRouter response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openRouter response has no choices")
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", errors.New("openRouter response text is empty")
	}
	return text, nil
}
