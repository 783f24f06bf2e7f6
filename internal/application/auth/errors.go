package auth

import "wedding-invitation/internal/pkg/apperr"

var (
	ErrCredentialsRequired = apperr.Validation("Username and password are required")
	ErrInvalidCredentials  = apperr.Unauthorized("Invalid username or password")
	ErrNotAuthenticated    = apperr.Unauthorized("Not authenticated")
)
