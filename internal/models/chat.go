package models

import "encoding/json"

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role     ChatRole `json:"role"`
	Content  string   `json:"content"`
	ImageURL string   `json:"image_url,omitempty"`
}

// ChatOptions overrides provider defaults. Nil fields fall back to the
// provider's configured values.
type ChatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	Model       string   `json:"model,omitempty"`
}

type ChatResponse struct {
	Text    string          `json:"text"`
	Success bool            `json:"success"`
	Source  string          `json:"source"`
	IsDemo  bool            `json:"isDemo,omitempty"`
	Raw     json.RawMessage `json:"raw,omitempty"`
}

type ProviderStatus struct {
	Configured   bool              `json:"configured"`
	DefaultModel string            `json:"defaultModel"`
	Models       map[string]string `json:"models,omitempty"`
}

type ServiceStatus struct {
	ActiveService string                    `json:"activeService"`
	Providers     map[string]ProviderStatus `json:"providers"`
}
