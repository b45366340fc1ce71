package orders

import "mets-backend/internal/models"

// DefaultPageSize is the number of orders per page.
const DefaultPageSize = 10

// TotalPages is ceil(count/size), never less than one.
func TotalPages(count, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	pages := (count + size - 1) / size
	if pages < 1 {
		return 1
	}
	return pages
}

// PageSlice returns orders[(page-1)*size : page*size], clipped to the
// slice bounds.
func PageSlice(orders []models.Order, page, size int) []models.Order {
	if size < 1 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(orders) {
		return []models.Order{}
	}
	end := min(start+size, len(orders))
	return orders[start:end]
}
