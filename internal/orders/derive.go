package orders

import (
	"slices"

	"mets-backend/internal/models"
)

// Customers returns the distinct customer names, sorted.
func Customers(orders []models.Order) []string {
	seen := make(map[string]struct{})
	for _, o := range orders {
		if o.CustomerInfo.Name != "" {
			seen[o.CustomerInfo.Name] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// CellTypes returns the distinct cell product type codes, sorted.
func CellTypes(orders []models.Order) []string {
	seen := make(map[string]struct{})
	for _, o := range orders {
		for _, c := range o.Cells {
			if c.ProductTypeCode != "" {
				seen[c.ProductTypeCode] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
