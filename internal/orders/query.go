package orders

import "mets-backend/internal/models"

// Query is the complete view state of an order list.
type Query struct {
	Filters  Filters
	Sort     Sort
	Page     int
	PageSize int
}

// Result is the view computed from a Query.
type Result struct {
	Filtered   []models.Order
	Items      []models.Order
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	Warnings   []string
}

// Apply filters, sorts and pages orders. A page outside [1, TotalPages] is
// clamped into range.
func Apply(orders []models.Order, q Query) Result {
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	filtered, warnings := Filter(orders, q.Filters)
	sorted := SortOrders(filtered, q.Sort)

	pages := TotalPages(len(sorted), size)
	page := min(max(q.Page, 1), pages)

	return Result{
		Filtered:   sorted,
		Items:      PageSlice(sorted, page, size),
		Total:      len(sorted),
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Warnings:   warnings,
	}
}
