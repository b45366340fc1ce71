package models

import "time"

type OrderStatus string

const (
	StatusPlanned    OrderStatus = "planned"
	StatusInProgress OrderStatus = "in_progress"
	StatusDelayed    OrderStatus = "delayed"
	StatusCompleted  OrderStatus = "completed"
	StatusCanceled   OrderStatus = "canceled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusDelayed, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Order is one customer purchase order for switchgear cells. OrderDate and
// cell delivery dates keep the YYYY-MM-DD form they are entered in.
type Order struct {
	ID            string         `json:"id"`
	OrderNo       string         `json:"orderNo"`
	OrderDate     string         `json:"orderDate"`
	CustomerInfo  CustomerInfo   `json:"customerInfo"`
	TechnicalInfo *TechnicalInfo `json:"technicalInfo,omitempty"`
	Cells         []Cell         `json:"cells"`
	Status        OrderStatus    `json:"status"`
	Progress      int            `json:"progress"`
	Priority      Priority       `json:"priority"`
	RiskLevel     RiskLevel      `json:"riskLevel,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type CustomerInfo struct {
	Name          string `json:"name"`
	DocumentNo    string `json:"documentNo"`
	ContactPerson string `json:"contactPerson,omitempty"`
	ContactEmail  string `json:"contactEmail,omitempty"`
	ContactPhone  string `json:"contactPhone,omitempty"`
	ProjectName   string `json:"projectName,omitempty"`
	ContractNo    string `json:"contractNo,omitempty"`
}

type Cell struct {
	ID              string `json:"id,omitempty"`
	ProductTypeCode string `json:"productTypeCode"`
	TechnicalValues string `json:"technicalValues"`
	Quantity        int    `json:"quantity"`
	DeliveryDate    string `json:"deliveryDate"`
	SerialNumber    string `json:"serialNumber,omitempty"`
	FacilityName    string `json:"facilityName,omitempty"`
}

type TechnicalInfo struct {
	Voltage             string `json:"voltage"`
	Current             string `json:"current"`
	ShortCircuit        string `json:"shortCircuit"`
	ControlVoltage      string `json:"controlVoltage"`
	SpecialRequirements string `json:"specialRequirements,omitempty"`
	LockingRequired     bool   `json:"lockingRequired"`
	Comments            string `json:"comments,omitempty"`
}

// Clone returns a deep copy so callers can mutate cells without touching
// the shared snapshot.
func (o Order) Clone() Order {
	c := o
	if o.Cells != nil {
		c.Cells = make([]Cell, len(o.Cells))
		copy(c.Cells, o.Cells)
	}
	if o.TechnicalInfo != nil {
		ti := *o.TechnicalInfo
		c.TechnicalInfo = &ti
	}
	return c
}
