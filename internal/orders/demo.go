package orders

import (
	"context"
	"time"

	"mets-backend/internal/models"
)

const (
	techCB = "36kV 630A 16kA Kesicili ÇIKIŞ Hücresi"
	techLB = "36kV 630A 16kA Yük Ayırıcılı Giriş Hücresi"
	techFL = "36kV 200A 16kA Sigortalı Yük Ayırıcılı TR.Koruma Hücresi"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// DemoOrders returns the fallback dataset shown when no order source is
// configured or loading fails. Two of the seven orders are delayed.
func DemoOrders() []models.Order {
	return []models.Order{
		{
			ID:           "order-001",
			OrderNo:      "#0424-1251",
			OrderDate:    "2024-04-01",
			CustomerInfo: models.CustomerInfo{Name: "AYEDAŞ", DocumentNo: "PO-2024-A156", ContactPerson: "Ahmet Yılmaz"},
			Cells: []models.Cell{
				{ProductTypeCode: "RM 36 CB", TechnicalValues: techCB, Quantity: 1, DeliveryDate: "2024-11-15"},
			},
			Status:    models.StatusDelayed,
			Progress:  65,
			Priority:  models.PriorityHigh,
			CreatedAt: day("2024-04-01"),
			UpdatedAt: day("2024-04-15"),
		},
		{
			ID:           "order-002",
			OrderNo:      "#0424-1245",
			OrderDate:    "2024-04-05",
			CustomerInfo: models.CustomerInfo{Name: "BEDAŞ", DocumentNo: "PO-2024-B789", ContactPerson: "Mehmet Demir"},
			Cells: []models.Cell{
				{ProductTypeCode: "RM 36 LB", TechnicalValues: techLB, Quantity: 2, DeliveryDate: "2024-11-20"},
				{ProductTypeCode: "RM 36 CB", TechnicalValues: techCB, Quantity: 3, DeliveryDate: "2024-11-20"},
			},
			Status:    models.StatusInProgress,
			Progress:  35,
			Priority:  models.PriorityMedium,
			CreatedAt: day("2024-04-05"),
			UpdatedAt: day("2024-04-10"),
		},
		{
			ID:           "order-003",
			OrderNo:      "#0424-1239",
			OrderDate:    "2024-04-08",
			CustomerInfo: models.CustomerInfo{Name: "TOROSLAR EDAŞ", DocumentNo: "PO-2024-T321", ContactPerson: "Zeynep Kaya"},
			Cells: []models.Cell{
				{ProductTypeCode: "RM 36 FL", TechnicalValues: techFL, Quantity: 2, DeliveryDate: "2024-12-05"},
			},
			Status:    models.StatusPlanned,
			Progress:  10,
			Priority:  models.PriorityLow,
			CreatedAt: day("2024-04-08"),
			UpdatedAt: day("2024-04-08"),
		},
		{
			ID:           "order-004",
			OrderNo:      "#0424-1233",
			OrderDate:    "2024-03-25",
			CustomerInfo: models.CustomerInfo{Name: "ENERJİSA", DocumentNo: "PO-2024-E456", ContactPerson: "Can Demir"},
			Cells: []models.Cell{
				{ProductTypeCode: "RM 36 LB", TechnicalValues: techLB, Quantity: 1, DeliveryDate: "2024-12-05"},
			},
			Status:    models.StatusCompleted,
			Progress:  100,
			Priority:  models.PriorityMedium,
			CreatedAt: day("2024-03-25"),
			UpdatedAt: day("2024-04-17"),
		},
		{
			ID:           "order-005",
			OrderNo:      "#0424-1220",
			OrderDate:    "2024-03-15",
			CustomerInfo: models.CustomerInfo{Name: "OSMANİYE ELEKTRİK", DocumentNo: "PO-2024-O789", ContactPerson: "Ali Yıldız"},
			Cells: []models.Cell{
				{ProductTypeCode: "RM 36 FL", TechnicalValues: techFL, Quantity: 1, DeliveryDate: "2024-10-30"},
			},
			Status:    models.StatusPlanned,
			Progress:  5,
			Priority:  models.PriorityLow,
			CreatedAt: day("2024-03-15"),
			UpdatedAt: day("2024-03-15"),
		},
		{
			ID:           "order-006",
			OrderNo:      "#0424-1219",
			OrderDate:    "2024-03-14",
			CustomerInfo: models.CustomerInfo{Name: "AYEDAŞ", DocumentNo: "PO-2024-A157", ContactPerson: "Ahmet Yılmaz"},
			Cells: []models.Cell{
				{ProductTypeCode: "RM 36 CB", TechnicalValues: techCB, Quantity: 2, DeliveryDate: "2024-10-20"},
				{ProductTypeCode: "RM 36 FL", TechnicalValues: techFL, Quantity: 1, DeliveryDate: "2024-10-20"},
			},
			Status:    models.StatusInProgress,
			Progress:  75,
			Priority:  models.PriorityHigh,
			CreatedAt: day("2024-03-14"),
			UpdatedAt: day("2024-04-20"),
		},
		{
			ID:           "order-007",
			OrderNo:      "#0424-1215",
			OrderDate:    "2024-03-10",
			CustomerInfo: models.CustomerInfo{Name: "ÇORUH EDAŞ", DocumentNo: "PO-2024-C123", ContactPerson: "Selin Çelik"},
			Cells: []models.Cell{
				{ProductTypeCode: "RM 36 LB", TechnicalValues: techLB, Quantity: 3, DeliveryDate: "2024-09-30"},
			},
			Status:    models.StatusDelayed,
			Progress:  45,
			Priority:  models.PriorityMedium,
			CreatedAt: day("2024-03-10"),
			UpdatedAt: day("2024-04-18"),
		},
	}
}

// DemoSource serves DemoOrders.
type DemoSource struct{}

func (DemoSource) Load(context.Context) ([]models.Order, error) {
	return DemoOrders(), nil
}
