package models

import (
	"time"

	"gorm.io/gorm"
)

// OutboundHistory rows are immutable ledger entries; name and unit price are
// snapshots taken when the movement is recorded.
type OutboundHistory struct {
	gorm.Model
	ConsumableID       uint      `json:"consumable_id" gorm:"index"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Quantity           int       `json:"quantity"`
	EmployeeName       string    `json:"employee_name"`
	EmployeeDepartment string    `json:"employee_department"`
	UnitPrice          float64   `json:"unit_price"`
	TotalAmount        float64   `json:"total_amount"`
	Note               string    `json:"note"`
	OutboundDate       time.Time `json:"outbound_date"`
}

type InboundHistory struct {
	gorm.Model
	ConsumableID       uint      `json:"consumable_id" gorm:"index"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Quantity           int       `json:"quantity"`
	EmployeeName       string    `json:"employee_name"`
	EmployeeDepartment string    `json:"employee_department"`
	UnitPrice          float64   `json:"unit_price"`
	TotalAmount        float64   `json:"total_amount"`
	Note               string    `json:"note"`
	InboundType        string    `json:"inbound_type"`
	InboundDate        time.Time `json:"inbound_date"`
}
