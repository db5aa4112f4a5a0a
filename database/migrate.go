// database/migrate.go
package database

import (
	"consumable-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.RoleOverride{},
		&models.Employee{},
		&models.Supplier{},
		&models.Consumable{},
		&models.Order{},
		&models.DispatchOrder{},
		&models.DispatchOrderItem{},
		&models.OrderSequence{},
		&models.InboundHistory{},
		&models.OutboundHistory{},
	)
}
