package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mets-backend/internal/models"
)

// ErrUnknownFilter is returned when a filter field name is not recognised.
var ErrUnknownFilter = errors.New("unknown filter field")

// Filters is the mutable filter set of an order list. An empty field places
// no constraint on the result.
type Filters struct {
	SearchQuery   string
	CellType      string
	Status        string
	DateStart     string
	DateEnd       string
	PriorityLevel string
	CustomerName  string
	RiskLevel     string
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Set assigns a filter field addressed by name. Both the camelCase names
// used by the web client and their snake_case forms are accepted.
func (f *Filters) Set(field, value string) error {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "searchquery", "search_query", "search", "q":
		f.SearchQuery = value
	case "celltype", "cell_type":
		f.CellType = value
	case "status":
		f.Status = value
	case "daterange.start", "date_start", "datestart", "start":
		f.DateStart = value
	case "daterange.end", "date_end", "dateend", "end":
		f.DateEnd = value
	case "prioritylevel", "priority_level", "priority":
		f.PriorityLevel = value
	case "customername", "customer_name", "customer":
		f.CustomerName = value
	case "risklevel", "risk_level", "risk":
		f.RiskLevel = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFilter, field)
	}
	return nil
}

func (f Filters) toModel() models.FilterState {
	return models.FilterState{
		SearchQuery:   f.SearchQuery,
		CellType:      f.CellType,
		Status:        f.Status,
		DateStart:     f.DateStart,
		DateEnd:       f.DateEnd,
		PriorityLevel: f.PriorityLevel,
		CustomerName:  f.CustomerName,
		RiskLevel:     f.RiskLevel,
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Filter returns the orders matching every set field of f, in input order.
// Malformed date bounds are ignored and reported in the returned warnings.
func Filter(orders []models.Order, f Filters) ([]models.Order, []string) {
	var warnings []string

	result := orders
	if q := strings.TrimSpace(f.SearchQuery); q != "" {
		result = search(result, q)
	}

	start, hasStart := parseDate(f.DateStart)
	if f.DateStart != "" && !hasStart {
		warnings = append(warnings, fmt.Sprintf("invalid start date %q ignored", f.DateStart))
	}
	end, hasEnd := parseDate(f.DateEnd)
	if f.DateEnd != "" && !hasEnd {
		warnings = append(warnings, fmt.Sprintf("invalid end date %q ignored", f.DateEnd))
	}

	customer := strings.ToLower(f.CustomerName)

	out := make([]models.Order, 0, len(result))
	for _, o := range result {
		if f.CellType != "" && !hasCellType(o, f.CellType) {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if (hasStart || hasEnd) && !inDateRange(o.OrderDate, start, hasStart, end, hasEnd) {
			continue
		}
		if f.PriorityLevel != "" && string(o.Priority) != f.PriorityLevel {
			continue
		}
		if customer != "" && !strings.Contains(strings.ToLower(o.CustomerInfo.Name), customer) {
			continue
		}
		if f.RiskLevel != "" && string(o.RiskLevel) != f.RiskLevel {
			continue
		}
		out = append(out, o)
	}

	return out, warnings
}

func hasCellType(o models.Order, cellType string) bool {
	for _, c := range o.Cells {
		if strings.Contains(c.ProductTypeCode, cellType) {
			return true
		}
	}
	return false
}

// inDateRange checks the order date against inclusive bounds. An order
// whose date does not parse never satisfies a bound.
func inDateRange(orderDate string, start time.Time, hasStart bool, end time.Time, hasEnd bool) bool {
	d, ok := parseDate(orderDate)
	if !ok {
		return false
	}
	if hasStart && d.Before(start) {
		return false
	}
	if hasEnd && d.After(end) {
		return false
	}
	return true
}
