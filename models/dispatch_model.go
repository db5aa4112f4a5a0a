package models

import (
	"time"

	"gorm.io/gorm"
)

// DispatchOrder is a supplier-facing purchase order consolidating prepared
// requests. SupplierName is a denormalized snapshot.
type DispatchOrder struct {
	gorm.Model
	OrderNumber  string         `json:"order_number" gorm:"unique"`
	SupplierID   uint           `json:"supplier_id"`
	SupplierName string         `json:"supplier_name"`
	TotalItems   int            `json:"total_items"`
	TotalAmount  float64        `json:"total_amount"`
	Status       DispatchStatus `json:"status" gorm:"default:'未送信'"`
	CreatedBy    string         `json:"created_by"`
	SentAt       *time.Time     `json:"sent_at"`
	SentEmail    string         `json:"sent_email"`
	Note         string         `json:"note"`
	PDFPath      *string        `json:"pdf_path"`
}

// DispatchOrderItem is a write-once snapshot of one request at consolidation
// time. Never mutated after insert.
type DispatchOrderItem struct {
	gorm.Model
	DispatchOrderID uint    `json:"dispatch_order_id" gorm:"index"`
	ConsumableID    *uint   `json:"consumable_id"`
	Code            string  `json:"code"`
	OrderCode       string  `json:"order_code"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	Unit            string  `json:"unit"`
	UnitPrice       float64 `json:"unit_price"`
	TotalAmount     float64 `json:"total_amount"`
	Deadline        string  `json:"deadline"`
	Note            string  `json:"note"`
	OriginalOrderID uint    `json:"original_order_id"`
}

// OrderSequence backs PO number generation with one row per day, bumped via an
// upsert inside the consolidation transaction. The sequence spans all suppliers.
type OrderSequence struct {
	ID      uint   `gorm:"primaryKey"`
	SeqDate string `gorm:"uniqueIndex;size:8"`
	LastSeq int
}
