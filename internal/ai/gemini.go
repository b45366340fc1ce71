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
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultGeminiModel = "gemini-1.5-pro"
)

type GeminiConfig struct {
	APIKey string
	APIURL string
	Model  string
}

// GeminiProvider speaks the generateContent API.
type GeminiProvider struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

func NewGeminiProvider(cfg GeminiConfig, httpClient *http.Client) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	return &GeminiProvider{cfg: cfg, httpClient: httpClient}
}

func (p *GeminiProvider) ID() string { return GeminiID }

func (p *GeminiProvider) Configured() bool {
	return p.cfg.APIKey != "" && p.cfg.APIURL != ""
}

func (p *GeminiProvider) Status() models.ProviderStatus {
	return models.ProviderStatus{Configured: p.Configured(), DefaultModel: p.cfg.Model}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

var defaultSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// geminiRole maps chat roles onto Gemini's two roles; system prompts are
// sent as user turns.
func geminiRole(r models.ChatRole) string {
	if r == models.RoleAssistant {
		return "model"
	}
	return "user"
}

func buildGeminiRequest(messages []models.ChatMessage, opts models.ChatOptions) geminiRequest {
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		parts := []geminiPart{{Text: m.Content}}
		if m.ImageURL != "" {
			parts = append(parts, geminiPart{Text: "Görsel: " + m.ImageURL})
		}
		contents = append(contents, geminiContent{Role: geminiRole(m.Role), Parts: parts})
	}

	return geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     float64Or(opts.Temperature, 0.7),
			MaxOutputTokens: intOr(opts.MaxTokens, 2048),
			TopP:            float64Or(opts.TopP, 0.8),
			TopK:            intOr(opts.TopK, 40),
		},
		SafetySettings: defaultSafetySettings,
	}
}

func (p *GeminiProvider) Send(ctx context.Context, messages []models.ChatMessage, opts models.ChatOptions, _ Mode) (json.RawMessage, error) {
	if !p.Configured() {
		return nil, errors.New("gemini is not configured")
	}

	model := p.cfg.Model
	if opts.Model != "" {
		model = opts.Model
	}

	url := joinURL(p.cfg.APIURL, fmt.Sprintf("%s:generateContent", model))
	headers := map[string]string{"x-goog-api-key": p.cfg.APIKey}

	return postJSON(ctx, p.httpClient, GeminiID, url, headers, buildGeminiRequest(messages, opts))
}

func (p *GeminiProvider) Normalize(raw json.RawMessage) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response has no candidates")
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("gemini response text is empty")
	}
	return text, nil
}
