package orders

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"mets-backend/internal/models"
)

var ErrInvalidOrder = errors.New("invalid order")

const (
	defaultProductType     = "RM 36 CB"
	defaultTechnicalValues = "36kV 630A 16kA"
)

// ValidateNew checks the fields an order must carry before it is created.
func ValidateNew(req models.CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerInfo.Name) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidOrder)
	}
	if strings.TrimSpace(req.CustomerInfo.DocumentNo) == "" {
		return fmt.Errorf("%w: customer document number is required", ErrInvalidOrder)
	}
	if len(req.Cells) == 0 {
		return fmt.Errorf("%w: at least one cell is required", ErrInvalidOrder)
	}
	for i, c := range req.Cells {
		if c.Quantity < 0 {
			return fmt.Errorf("%w: cell %d quantity must be positive", ErrInvalidOrder, i+1)
		}
	}
	if req.OrderDate != "" {
		if _, ok := parseDate(req.OrderDate); !ok {
			return fmt.Errorf("%w: order date %q is not a date", ErrInvalidOrder, req.OrderDate)
		}
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidOrder, req.Priority)
	}
	return nil
}

// SerialNumber formats the serial of the n-th cell of an order created at
// now, e.g. SN-2404-001.
func SerialNumber(now time.Time, n int) string {
	return fmt.Sprintf("SN-%02d%02d-%03d", now.Year()%100, int(now.Month()), n)
}

// OrderNumber formats a display order number, e.g. #0424-1251. The
// sequence is zero padded to four digits and grows past 9999.
func OrderNumber(now time.Time, seq int) string {
	return fmt.Sprintf("#%02d%02d-%04d", int(now.Month()), now.Year()%100, seq)
}

// NewOrder builds a planned order from a validated request, filling in the
// defaults of the order entry form.
func NewOrder(req models.CreateOrderRequest, seq int, now time.Time) (models.Order, error) {
	if err := ValidateNew(req); err != nil {
		return models.Order{}, err
	}

	now = now.UTC()
	o := models.Order{
		ID:           uuid.NewString(),
		OrderNo:      OrderNumber(now, seq),
		OrderDate:    req.OrderDate,
		CustomerInfo: req.CustomerInfo,
		Status:       models.StatusPlanned,
		Progress:     0,
		Priority:     req.Priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if o.OrderDate == "" {
		o.OrderDate = now.Format("2006-01-02")
	}
	if o.Priority == "" {
		o.Priority = models.PriorityMedium
	}

	ti := models.TechnicalInfo{
		Voltage:        "36kV",
		Current:        "630A",
		ShortCircuit:   "16kA",
		ControlVoltage: "24 VDC",
	}
	if req.TechnicalInfo != nil {
		ti = *req.TechnicalInfo
	}
	o.TechnicalInfo = &ti

	o.Cells = make([]models.Cell, len(req.Cells))
	for i, c := range req.Cells {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.ProductTypeCode == "" {
			c.ProductTypeCode = defaultProductType
		}
		if c.TechnicalValues == "" {
			c.TechnicalValues = defaultTechnicalValues
		}
		if c.Quantity == 0 {
			c.Quantity = 1
		}
		if c.SerialNumber == "" {
			c.SerialNumber = SerialNumber(now, i+1)
		}
		o.Cells[i] = c
	}

	return o, nil
}

// NextSequence returns one more than the highest sequence found in the
// order numbers of list, so new numbers never repeat existing ones.
func NextSequence(list []models.Order) int {
	highest := 0
	for _, o := range list {
		i := strings.LastIndexByte(o.OrderNo, '-')
		if i < 0 {
			continue
		}
		n, err := strconv.Atoi(o.OrderNo[i+1:])
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}
