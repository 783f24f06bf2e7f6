package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /auth/me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Service authenticates admin users.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login checks the credentials of an active admin and stamps last_login.
// Unknown usernames, inactive accounts and wrong passwords share one error.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.AdminUser, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}
	var u domain.AdminUser
	err := s.DB.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Storage(err)
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	now := s.now()
	if err := s.DB.WithContext(ctx).Model(&u).Update("last_login", now).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	u.LastLogin = &now
	return &u, nil
}

// VerifyUser validates the session user and returns the shape for /auth/me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		Username: str(m["username"]),
		FullName: str(m["full_name"]),
		Role:     str(m["role"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
