package models

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StatusUpdateRequest changes the production status of an order. Progress
// is a percentage from 0 to 100.
type StatusUpdateRequest struct {
	Status   OrderStatus `json:"status" binding:"required"`
	Progress *int        `json:"progress"`
}

type CreateOrderRequest struct {
	OrderDate     string         `json:"orderDate"`
	CustomerInfo  CustomerInfo   `json:"customerInfo"`
	TechnicalInfo *TechnicalInfo `json:"technicalInfo,omitempty"`
	Cells         []Cell         `json:"cells"`
	Priority      Priority       `json:"priority,omitempty"`
}

type ChatRequest struct {
	Message  string        `json:"message"`
	ImageURL string        `json:"image_url,omitempty"`
	History  []ChatMessage `json:"history,omitempty"`
	Options  *ChatOptions  `json:"options,omitempty"`
}

type AskRequest struct {
	Prompt  string       `json:"prompt" binding:"required"`
	Options *ChatOptions `json:"options,omitempty"`
}

// FilterUpdateRequest sets a single filter field by name, e.g.
// {"field": "status", "value": "delayed"}.
type FilterUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type SortRequest struct {
	Field string `json:"field" binding:"required"`
}

// PageRequest moves to Page, or steps with Action "next" or "prev".
// PageSize, when set, changes the page size and returns to page 1.
type PageRequest struct {
	Page     int    `json:"page,omitempty"`
	Action   string `json:"action,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

type SmartFilterRequest struct {
	Query string `json:"query"`
}
