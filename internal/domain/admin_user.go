package domain

import "time"

// AdminUser is a dashboard operator. Deletion deactivates instead of removing the row.
type AdminUser struct {
	ID           uint       `gorm:"column:id;primaryKey" json:"id"`
	Username     string     `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	FullName     string     `gorm:"column:full_name" json:"full_name"`
	Email        *string    `gorm:"column:email;index" json:"email"`
	Role         string     `gorm:"column:role;not null;default:'admin'" json:"role"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	LastLogin    *time.Time `gorm:"column:last_login" json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// PasswordResetToken is a single-use token mailed to an admin.
type PasswordResetToken struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Token     string    `gorm:"column:token;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	Used      bool      `gorm:"column:used;not null;default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
