package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"unique"`
	Password string `json:"-"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
	Roles    []Role `json:"roles" gorm:"many2many:user_roles;"`
}

// Role priority is a fixed total order used for "role >= X" checks:
// 一般(1) < リーダ(2) < 班長(3) < 係長(4) < 課長(5) < 部長(6) < システム管理者(7).
type Role struct {
	gorm.Model
	RoleName string `json:"role_name" gorm:"unique"`
	Priority int    `json:"priority"`
}

// RoleOverride grants a single capability to a single user regardless of role
// priority. Replaces the hardcoded username special case.
type RoleOverride struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"index"`
	Capability string `json:"capability"`
}

type Employee struct {
	gorm.Model
	Name       string `json:"name"`
	Department string `json:"department"`
	IsActive   bool   `json:"is_active" gorm:"default:true"`
}
