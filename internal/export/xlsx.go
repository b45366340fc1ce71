package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"mets-backend/internal/models"
	"mets-backend/internal/orders"
)

const (
	SheetName   = "Siparişler"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var Headers = []string{
	"order_no", "order_date", "customer", "document_no",
	"status", "status_text", "priority", "risk_level", "progress",
	"cell_types", "total_quantity", "earliest_delivery",
}

// OrdersToXLSX writes one row per order, in the given order, below a
// header row.
func OrdersToXLSX(list []models.Order) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, SheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	sheet = SheetName

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, o := range list {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, o.OrderNo)
		set(2, o.OrderDate)
		set(3, o.CustomerInfo.Name)
		set(4, o.CustomerInfo.DocumentNo)
		set(5, string(o.Status))
		set(6, orders.StatusText(o.Status))
		set(7, string(o.Priority))
		set(8, string(o.RiskLevel))
		set(9, o.Progress)
		set(10, strings.Join(cellTypes(o), ", "))
		set(11, totalQuantity(o))
		set(12, earliestDelivery(o))
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header row: %w", err)
	}

	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func cellTypes(o models.Order) []string {
	seen := make(map[string]bool, len(o.Cells))
	var out []string
	for _, c := range o.Cells {
		if c.ProductTypeCode == "" || seen[c.ProductTypeCode] {
			continue
		}
		seen[c.ProductTypeCode] = true
		out = append(out, c.ProductTypeCode)
	}
	return out
}

func totalQuantity(o models.Order) int {
	n := 0
	for _, c := range o.Cells {
		n += c.Quantity
	}
	return n
}

// earliestDelivery compares the YYYY-MM-DD strings directly.
func earliestDelivery(o models.Order) string {
	earliest := ""
	for _, c := range o.Cells {
		if c.DeliveryDate == "" {
			continue
		}
		if earliest == "" || c.DeliveryDate < earliest {
			earliest = c.DeliveryDate
		}
	}
	return earliest
}
