package orders

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"

	"mets-backend/internal/models"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort addresses a field of the order document by dotted path, using the
// JSON field names (e.g. "customerInfo.name").
type Sort struct {
	Field     string
	Direction Direction
}

// DefaultSort lists the newest orders first.
var DefaultSort = Sort{Field: "orderDate", Direction: Desc}

// Toggle returns the sort after the user picks field: the active field
// flips direction, a new field starts descending.
func (s Sort) Toggle(field string) Sort {
	if s.Field == field {
		if s.Direction == Asc {
			return Sort{Field: field, Direction: Desc}
		}
		return Sort{Field: field, Direction: Asc}
	}
	return Sort{Field: field, Direction: Desc}
}

func (s Sort) toModel() models.SortState {
	return models.SortState{Field: s.Field, Direction: string(s.Direction)}
}

var timestampFields = map[string]bool{
	"orderDate": true,
	"createdAt": true,
	"updatedAt": true,
}

// SortOrders returns a stably sorted copy of orders.
func SortOrders(orders []models.Order, s Sort) []models.Order {
	if s.Field == "" {
		s = DefaultSort
	}

	type keyed struct {
		key   any
		order models.Order
	}
	items := make([]keyed, len(orders))
	for i, o := range orders {
		items[i] = keyed{key: sortKey(o, s.Field), order: o}
	}

	desc := s.Direction == Desc
	slices.SortStableFunc(items, func(a, b keyed) int {
		c := compareValues(a.key, b.key)
		if desc {
			return -c
		}
		return c
	})

	out := make([]models.Order, len(items))
	for i, it := range items {
		out[i] = it.order
	}
	return out
}

func sortKey(o models.Order, field string) any {
	v := lookupPath(o, field)
	if timestampFields[field] {
		s, _ := v.(string)
		t, ok := parseDate(s)
		if !ok || t.IsZero() {
			return float64(0)
		}
		return float64(t.UnixMilli())
	}
	return v
}

// lookupPath resolves a dotted path against the JSON form of the order.
// Missing segments yield nil.
func lookupPath(o models.Order, path string) any {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	for _, seg := range strings.Split(path, ".") {
		m, ok := doc.(map[string]any)
		if !ok {
			return nil
		}
		doc, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return doc
}

// kindRank orders values of different JSON kinds; nil is the minimum.
func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func compareValues(a, b any) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}
