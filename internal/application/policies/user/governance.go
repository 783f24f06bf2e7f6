package policies

import (
	"errors"

	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/constants"

	"gorm.io/gorm"
)

type ValidateRoleAssignmentParams struct {
	ActorUserID  uint
	ActorRole    string
	TargetUserID uint // zero when the account is being created
	TargetRole   string
}

// ValidateRoleAssignment returns nil when the actor may give TargetRole to the target.
func ValidateRoleAssignment(db *gorm.DB, params ValidateRoleAssignmentParams) error {
	if !constants.IsValidRole(params.TargetRole) {
		return ErrInvalidRole
	}
	if params.TargetRole == constants.SuperAdmin && params.ActorRole != constants.SuperAdmin {
		return ErrOnlySuperAdminsCanAssignSuperAdmin
	}
	if params.TargetUserID == 0 {
		return nil
	}
	target, err := findTarget(db, params.TargetUserID)
	if err != nil {
		return err
	}
	if target.Role == params.TargetRole {
		return nil
	}
	if params.ActorUserID == params.TargetUserID {
		return ErrUsersCannotModifyTheirOwnRole
	}
	if target.Role == constants.SuperAdmin && target.IsActive {
		return requireAnotherSuperAdmin(db, target.ID)
	}
	return nil
}

type ValidateDeactivationParams struct {
	ActorUserID  uint
	TargetUserID uint
}

// ValidateDeactivation returns the target when the actor may deactivate it.
func ValidateDeactivation(db *gorm.DB, params ValidateDeactivationParams) (*domain.AdminUser, error) {
	if params.ActorUserID == params.TargetUserID {
		return nil, ErrUsersCannotDeactivateThemselves
	}
	target, err := findTarget(db, params.TargetUserID)
	if err != nil {
		return nil, err
	}
	if target.Role == constants.SuperAdmin && target.IsActive {
		if err := requireAnotherSuperAdmin(db, target.ID); err != nil {
			return nil, err
		}
	}
	return target, nil
}

func findTarget(db *gorm.DB, id uint) (*domain.AdminUser, error) {
	var target domain.AdminUser
	if err := db.First(&target, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetUserNotFound
		}
		return nil, apperr.Storage(err)
	}
	return &target, nil
}

func requireAnotherSuperAdmin(db *gorm.DB, exceptID uint) error {
	var count int64
	err := db.Model(&domain.AdminUser{}).
		Where("role = ? AND is_active = ? AND id <> ?", constants.SuperAdmin, true, exceptID).
		Count(&count).Error
	if err != nil {
		return apperr.Storage(err)
	}
	if count == 0 {
		return ErrMustKeepOneSuperAdmin
	}
	return nil
}
