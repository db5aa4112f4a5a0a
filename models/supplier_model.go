package models

import "gorm.io/gorm"

type Supplier struct {
	gorm.Model
	Name    string `json:"name" gorm:"unique"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Note    string `json:"note"`
}
