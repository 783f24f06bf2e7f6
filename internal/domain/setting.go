package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is one key/value pair of site configuration shown to guests.
type Setting struct {
	Key       string    `gorm:"column:setting_key;primaryKey" json:"key"`
	Value     string    `gorm:"column:setting_value" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Setting) TableName() string {
	return "site_settings"
}

// Backup history values.
const (
	BackupActionBackup  = "BACKUP"
	BackupActionRestore = "RESTORE"
	BackupStatusSuccess = "SUCCESS"
	BackupStatusFailed  = "FAILED"
)

type BackupHistory struct {
	ID         uint           `gorm:"column:id;primaryKey" json:"id"`
	ActionType string         `gorm:"column:action_type;not null" json:"action_type"`
	Filename   string         `gorm:"column:filename" json:"filename"`
	Status     string         `gorm:"column:status;not null" json:"status"`
	Details    datatypes.JSON `gorm:"column:details" json:"details"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (BackupHistory) TableName() string {
	return "backup_history"
}
