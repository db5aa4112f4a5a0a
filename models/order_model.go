package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a purchase request. Code, name, unit and unit price are snapshots of
// the consumable at creation time and are never re-joined live.
type Order struct {
	gorm.Model
	ConsumableID  uint        `json:"consumable_id"`
	Code          string      `json:"code"`
	OrderCode     string      `json:"order_code"`
	Name          string      `json:"name"`
	Quantity      int         `json:"quantity"`
	Unit          string      `json:"unit"`
	UnitPrice     float64     `json:"unit_price"`
	TotalAmount   float64     `json:"total_amount"`
	Deadline      string      `json:"deadline"`
	RequesterName string      `json:"requester_name"`
	SupplierID    *uint       `json:"supplier_id"`
	Note          string      `json:"note"`
	Status        OrderStatus `json:"status"`
	OrderType     OrderType   `json:"order_type"`
	RequestedDate time.Time   `json:"requested_date"`
	OrderedDate   *time.Time  `json:"ordered_date"`
}
