// Package services holds domain logic that sits between controllers and
// repositories.
package services

import (
	"consumable-app/models"

	"gorm.io/gorm"
)

// Capabilities grantable per user via role_overrides, independent of the role
// ladder.
const (
	CapApproveDispatch = "approve_dispatch"
)

type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

func (s *PermissionService) GetUserRoles(userID uint) ([]models.Role, error) {
	var user models.User
	if err := s.db.Preload("Roles").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return user.Roles, nil
}

// MaxPriority returns the highest priority among the user's roles, 0 when the
// user has none.
func (s *PermissionService) MaxPriority(userID uint) (int, error) {
	roles, err := s.GetUserRoles(userID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, role := range roles {
		if role.Priority > max {
			max = role.Priority
		}
	}
	return max, nil
}

func (s *PermissionService) HasMinRole(userID uint, minPriority int) (bool, error) {
	priority, err := s.MaxPriority(userID)
	if err != nil {
		return false, err
	}
	return priority >= minPriority, nil
}

func (s *PermissionService) hasOverride(userID uint, capability string) (bool, error) {
	var count int64
	err := s.db.Model(&models.RoleOverride{}).
		Where("user_id = ? AND capability = ?", userID, capability).
		Count(&count).Error
	return count > 0, err
}

// CanCreateDispatchOrder requires 班長 or above.
func (s *PermissionService) CanCreateDispatchOrder(userID uint) (bool, error) {
	return s.HasMinRole(userID, 3)
}

// CanReviewDispatchOrder requires 係長 or above.
func (s *PermissionService) CanReviewDispatchOrder(userID uint) (bool, error) {
	return s.HasMinRole(userID, 4)
}

// CanApproveDispatchOrder requires 課長 or above, or an approve_dispatch
// override.
func (s *PermissionService) CanApproveDispatchOrder(userID uint) (bool, error) {
	ok, err := s.HasMinRole(userID, 5)
	if err != nil || ok {
		return ok, err
	}
	return s.hasOverride(userID, CapApproveDispatch)
}

// ApprovalName returns the name printed in approval blocks. Users approving
// through an override rather than rank get a 代理 suffix.
func (s *PermissionService) ApprovalName(userID uint, fullName string) (string, error) {
	byRank, err := s.HasMinRole(userID, 5)
	if err != nil {
		return fullName, err
	}
	if byRank {
		return fullName, nil
	}
	byOverride, err := s.hasOverride(userID, CapApproveDispatch)
	if err != nil {
		return fullName, err
	}
	if byOverride {
		return fullName + "（代）", nil
	}
	return fullName, nil
}
