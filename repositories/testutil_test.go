package repositories

import (
	"testing"

	"consumable-app/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Supplier{},
		&models.Consumable{},
		&models.Order{},
		&models.DispatchOrder{},
		&models.DispatchOrderItem{},
		&models.OrderSequence{},
		&models.InboundHistory{},
		&models.OutboundHistory{},
	))
	return db
}

func createSupplier(t *testing.T, db *gorm.DB, name string) *models.Supplier {
	t.Helper()
	supplier := &models.Supplier{
		Name:    name,
		Contact: "田中",
		Email:   name + "@example.co.jp",
	}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

func createConsumable(t *testing.T, db *gorm.DB, code string, stock, safety int, supplierID *uint) *models.Consumable {
	t.Helper()
	item := &models.Consumable{
		Code:          code,
		OrderCode:     "ORD-" + code,
		Name:          "テスト品目" + code,
		Unit:          "個",
		StockQuantity: stock,
		SafetyStock:   safety,
		UnitPrice:     100,
		OrderUnit:     1,
		SupplierID:    supplierID,
		OrderStatus:   models.ConsumableNotOrdered,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
