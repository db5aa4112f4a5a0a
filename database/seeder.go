package database

import (
	"log"

	"consumable-app/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var roleLadder = []models.Role{
	{RoleName: "一般", Priority: 1},
	{RoleName: "リーダ", Priority: 2},
	{RoleName: "班長", Priority: 3},
	{RoleName: "係長", Priority: 4},
	{RoleName: "課長", Priority: 5},
	{RoleName: "部長", Priority: 6},
	{RoleName: "システム管理者", Priority: 7},
}

// Seed creates the role ladder and the initial admin account when the tables
// are empty.
func Seed(db *gorm.DB) {
	for _, role := range roleLadder {
		var existing models.Role
		if err := db.Where("role_name = ?", role.RoleName).First(&existing).Error; err != nil {
			if err := db.Create(&role).Error; err != nil {
				log.Println("Failed to seed role:", role.RoleName, err)
			}
		}
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Failed to hash default password:", err)
		return
	}

	var adminRole models.Role
	db.Where("role_name = ?", "システム管理者").First(&adminRole)

	admin := models.User{
		Username: "admin",
		Password: string(hashed),
		FullName: "管理者",
		IsActive: true,
		Roles:    []models.Role{adminRole},
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Println("Failed to seed admin user:", err)
	}
}
