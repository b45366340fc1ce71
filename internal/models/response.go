package models

import "time"

type HealthResponse struct {
	Status      string `json:"status"`
	OrderSource string `json:"order_source,omitempty"`
	Orders      int    `json:"orders"`
}

type OrderListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

type Suggestion struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

type OrderDetailResponse struct {
	Order       Order        `json:"order"`
	StatusText  string       `json:"status_text"`
	IsDelayed   bool         `json:"is_delayed"`
	Suggestions []Suggestion `json:"suggestions"`
}

type FilterState struct {
	SearchQuery   string `json:"searchQuery"`
	CellType      string `json:"cellType"`
	Status        string `json:"status"`
	DateStart     string `json:"dateStart"`
	DateEnd       string `json:"dateEnd"`
	PriorityLevel string `json:"priorityLevel"`
	CustomerName  string `json:"customerName"`
	RiskLevel     string `json:"riskLevel"`
}

type SortState struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// ViewResponse is the state of a user's order list session.
type ViewResponse struct {
	Filters    FilterState `json:"filters"`
	Sort       SortState   `json:"sort"`
	Orders     []Order     `json:"orders"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

type StringListResponse struct {
	Items []string `json:"items"`
}

type ExportResponse struct {
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
	Orders    int    `json:"orders"`
}

type ExportListResponse struct {
	Exports []string `json:"exports"`
	Count   int      `json:"count"`
}

type ReloadResponse struct {
	Orders   int    `json:"orders"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}
