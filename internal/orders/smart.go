package orders

import (
	"strings"

	"mets-backend/internal/models"
	"mets-backend/internal/notify"
)

// SmartFilter turns a free-text query into structured filters. When query
// is empty the current search text is used. All filters are cleared first
// and the search text is dropped once translated. It returns false and
// leaves the state untouched when there is nothing to translate.
func (e *Engine) SmartFilter(query string) bool {
	if strings.TrimSpace(query) == "" {
		query = e.Filters().SearchQuery
	}
	if strings.TrimSpace(query) == "" {
		e.notifier.Notify("Lütfen önce bir arama sorgusu girin", notify.SeverityInfo)
		return false
	}

	f := TranslateQuery(query, e.Customers(), e.CellTypes())
	e.SetFilters(f)
	e.notifier.Notify("AI filtreleri uygulandı", notify.SeveritySuccess)
	return true
}

// TranslateQuery maps keywords and known customer and cell type names found
// in query to a filter set with an empty search text.
func TranslateQuery(query string, customers, cellTypes []string) Filters {
	q := strings.ToLower(query)

	var f Filters
	if strings.Contains(q, "gecik") {
		f.Status = string(models.StatusDelayed)
	}
	if containsAny(q, prioritySearchTerms) {
		f.PriorityLevel = string(models.PriorityHigh)
	}
	if strings.Contains(q, "risk") {
		f.RiskLevel = string(models.RiskHigh)
	}
	for _, name := range customers {
		if strings.Contains(q, strings.ToLower(name)) {
			f.CustomerName = name
			break
		}
	}
	for _, ct := range cellTypes {
		if strings.Contains(q, strings.ToLower(ct)) {
			f.CellType = ct
			break
		}
	}
	return f
}
