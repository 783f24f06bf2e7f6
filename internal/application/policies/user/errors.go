package policies

import "wedding-invitation/internal/pkg/apperr"

var (
	ErrInvalidRole                        = apperr.ValidationField("role", "Invalid role")
	ErrOnlySuperAdminsCanAssignSuperAdmin = apperr.Forbidden("Only super admins can assign the super_admin role")
	ErrTargetUserNotFound                 = apperr.NotFound("User not found")
	ErrUsersCannotModifyTheirOwnRole      = apperr.Forbidden("Users cannot modify their own role")
	ErrUsersCannotDeactivateThemselves    = apperr.Validation("Cannot delete your own account")
	ErrMustKeepOneSuperAdmin              = apperr.Conflict("At least one active super admin is required")
)
