// Package user manages dashboard accounts and password resets.
package user

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"wedding-invitation/internal/application/emails"
	policies "wedding-invitation/internal/application/policies/user"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/constants"
	"wedding-invitation/internal/pkg/validation"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ResetTokenTTL    = time.Hour
	resetTokenLength = 32
	bcryptCost       = 10
)

var ErrInvalidResetToken = apperr.Validation("Invalid or expired reset token")

// Service holds DB and Redis for user operations.
type Service struct {
	DB      *gorm.DB
	Rdb     *redis.Client
	Mailer  emails.Sender
	SiteURL string
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Actor is the logged-in user performing a change.
type Actor struct {
	ID   uint
	Role string
}

type CreateInput struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email"`
	Role     string  `json:"role"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// List returns every account, active or not.
func (s *Service) List(ctx context.Context) ([]domain.AdminUser, error) {
	var users []domain.AdminUser
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return users, nil
}

// Create adds an active account. Role defaults to admin.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*domain.AdminUser, error) {
	username := strings.TrimSpace(in.Username)
	fullName := normalizeName(in.FullName)
	if username == "" || in.Password == "" || fullName == "" {
		return nil, apperr.Validation("Username, password, and full name are required")
	}
	if !validation.IsValidUsername(username) {
		return nil, apperr.ValidationField("username", "Username must be 3-32 letters, digits, dots, dashes or underscores")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, apperr.ValidationField("password", "Password must be at least 8 characters")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = constants.Admin
	}
	if err := policies.ValidateRoleAssignment(s.DB.WithContext(ctx), policies.ValidateRoleAssignmentParams{
		ActorUserID: actor.ID,
		ActorRole:   actor.Role,
		TargetRole:  role,
	}); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Email:        email,
		Role:         role,
		IsActive:     true,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.ValidationField("username", "Username already exists")
		}
		return nil, apperr.Storage(err)
	}
	log.Info().Uint("user_id", u.ID).Str("username", u.Username).Str("role", u.Role).Msg("admin user created")
	return u, nil
}

// Update applies a partial change. Role changes, deactivation and password
// changes log the target out of every session.
func (s *Service) Update(ctx context.Context, actor Actor, id uint, in UpdateInput) (*domain.AdminUser, error) {
	db := s.DB.WithContext(ctx)
	var u domain.AdminUser
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policies.ErrTargetUserNotFound
		}
		return nil, apperr.Storage(err)
	}

	upd := map[string]interface{}{}
	revoke := false
	if in.FullName != nil {
		name := normalizeName(*in.FullName)
		if name == "" {
			return nil, apperr.ValidationField("full_name", "Full name must be a non-empty string")
		}
		upd["full_name"] = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		upd["email"] = email
	}
	if in.Role != nil && *in.Role != u.Role {
		if err := policies.ValidateRoleAssignment(db, policies.ValidateRoleAssignmentParams{
			ActorUserID:  actor.ID,
			ActorRole:    actor.Role,
			TargetUserID: id,
			TargetRole:   *in.Role,
		}); err != nil {
			return nil, err
		}
		upd["role"] = *in.Role
		revoke = true
	}
	if in.IsActive != nil && *in.IsActive != u.IsActive {
		if !*in.IsActive {
			if _, err := policies.ValidateDeactivation(db, policies.ValidateDeactivationParams{
				ActorUserID:  actor.ID,
				TargetUserID: id,
			}); err != nil {
				return nil, err
			}
			revoke = true
		}
		upd["is_active"] = *in.IsActive
	}
	if in.Password != nil {
		if !validation.IsValidPassword(*in.Password) {
			return nil, apperr.ValidationField("password", "Password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		upd["password_hash"] = string(hash)
		revoke = true
	}
	if len(upd) == 0 {
		return &u, nil
	}

	if err := db.Model(&u).Updates(upd).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	if err := db.First(&u, id).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	if revoke {
		policies.DestroyUserSessions(ctx, s.Rdb, strconv.FormatUint(uint64(id), 10))
	}
	return &u, nil
}

// Delete deactivates an account; the row is kept. A user cannot delete themself.
func (s *Service) Delete(ctx context.Context, actor Actor, id uint) error {
	db := s.DB.WithContext(ctx)
	target, err := policies.ValidateDeactivation(db, policies.ValidateDeactivationParams{
		ActorUserID:  actor.ID,
		TargetUserID: id,
	})
	if err != nil {
		return err
	}
	if err := db.Model(target).Update("is_active", false).Error; err != nil {
		return apperr.Storage(err)
	}
	policies.DestroyUserSessions(ctx, s.Rdb, strconv.FormatUint(uint64(id), 10))
	log.Info().Uint("user_id", id).Uint("actor_id", actor.ID).Msg("admin user deactivated")
	return nil
}

// RequestReset mails a single-use reset link when email belongs to an active
// account. Unknown addresses succeed silently.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.ValidationField("email", "Email is required")
	}
	var u domain.AdminUser
	err := s.DB.WithContext(ctx).Where("LOWER(email) = ? AND is_active = ?", email, true).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Storage(err)
	}

	token, err := gonanoid.New(resetTokenLength)
	if err != nil {
		return err
	}
	row := domain.PasswordResetToken{UserID: u.ID, Token: token, ExpiresAt: s.now().Add(ResetTokenTTL)}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return apperr.Storage(err)
	}
	if s.Mailer == nil {
		log.Warn().Uint("user_id", u.ID).Msg("password reset requested but mail is not configured")
		return nil
	}
	link := strings.TrimRight(s.SiteURL, "/") + "/admin/reset-password?token=" + token
	if err := s.Mailer.SendPasswordReset(ctx, email, u.Username, link); err != nil {
		log.Error().Err(err).Uint("user_id", u.ID).Msg("password reset mail failed")
	}
	return nil
}

// ResetPassword consumes token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperr.Validation("Token and new password are required")
	}
	if !validation.IsValidPassword(newPassword) {
		return apperr.ValidationField("newPassword", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}

	var userID uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.PasswordResetToken
		err := tx.Where("token = ? AND used = ? AND expires_at > ?", token, false, s.now()).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		if err != nil {
			return apperr.Storage(err)
		}
		res := tx.Model(&domain.PasswordResetToken{}).Where("id = ? AND used = ?", row.ID, false).Update("used", true)
		if res.Error != nil {
			return apperr.Storage(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidResetToken
		}
		if err := tx.Model(&domain.AdminUser{}).Where("id = ?", row.UserID).Update("password_hash", string(hash)).Error; err != nil {
			return apperr.Storage(err)
		}
		userID = row.UserID
		return nil
	})
	if err != nil {
		return err
	}
	policies.DestroyUserSessions(ctx, s.Rdb, strconv.FormatUint(uint64(userID), 10))
	return nil
}

// EnsureAdmin creates a super admin named username unless one already exists.
// It reports whether a row was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, fullName string) (*domain.AdminUser, bool, error) {
	var existing domain.AdminUser
	err := s.DB.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperr.Storage(err)
	}
	if fullName == "" {
		fullName = "Administrator"
	}
	u, err := s.Create(ctx, Actor{Role: constants.SuperAdmin}, CreateInput{
		Username: username,
		Password: password,
		FullName: fullName,
		Role:     constants.SuperAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func normalizeEmail(email *string) (*string, error) {
	if email == nil {
		return nil, nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil, nil
	}
	if !validation.IsValidEmail(e) {
		return nil, apperr.ValidationField("email", "Invalid email format")
	}
	return &e, nil
}

// normalizeName trims and collapses inner whitespace.
func normalizeName(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteRune(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
