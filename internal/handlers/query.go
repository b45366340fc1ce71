package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"mets-backend/internal/orders"
)

// orderQuery reads the list query parameters of GET /orders.
func orderQuery(c *gin.Context) (orders.Query, error) {
	q := orders.Query{
		Filters: orders.Filters{
			SearchQuery:   c.Query("search"),
			CellType:      c.Query("cell_type"),
			Status:        c.Query("status"),
			DateStart:     c.Query("date_start"),
			DateEnd:       c.Query("date_end"),
			PriorityLevel: c.Query("priority"),
			CustomerName:  c.Query("customer"),
			RiskLevel:     c.Query("risk"),
		},
		Sort: orders.DefaultSort,
		Page: 1,
	}

	if field := c.Query("sort"); field != "" {
		q.Sort = orders.Sort{Field: field, Direction: orders.Desc}
	}
	switch dir := c.Query("dir"); dir {
	case "":
	case string(orders.Asc), string(orders.Desc):
		q.Sort.Direction = orders.Direction(dir)
	default:
		return orders.Query{}, fmt.Errorf("dir must be asc or desc, got %q", dir)
	}

	var err error
	if q.Page, err = positiveInt(c, "page", 1); err != nil {
		return orders.Query{}, err
	}
	if q.PageSize, err = positiveInt(c, "page_size", 0); err != nil {
		return orders.Query{}, err
	}
	return q, nil
}

func positiveInt(c *gin.Context, key string, def int) (int, error) {
	s := c.Query(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}
