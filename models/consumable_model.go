package models

import "gorm.io/gorm"

type Consumable struct {
	gorm.Model
	Code            string                `json:"code" gorm:"unique"`
	OrderCode       string                `json:"order_code"`
	Name            string                `json:"name"`
	Category        string                `json:"category"`
	Unit            string                `json:"unit"`
	StockQuantity   int                   `json:"stock_quantity" gorm:"default:0"`
	SafetyStock     int                   `json:"safety_stock" gorm:"default:0"`
	UnitPrice       float64               `json:"unit_price" gorm:"default:0"`
	OrderUnit       int                   `json:"order_unit" gorm:"default:1"`
	SupplierID      *uint                 `json:"supplier_id"`
	Supplier        *Supplier             `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	StorageLocation string                `json:"storage_location"`
	OrderStatus     ConsumableOrderStatus `json:"order_status" gorm:"default:'未発注'"`
	ShortageStatus  ShortageStatus        `json:"shortage_status"`
	ImagePath       string                `json:"image_path"`
	Note            string                `json:"note"`
}
