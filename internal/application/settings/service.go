// Package settings stores the free-form key/value bag shown on the public site.
package settings

import (
	"context"
	"strings"
	"time"

	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known keys read by the backend itself. Everything else is opaque.
const (
	KeyBrideName = "bride.name"
	KeyGroomName = "groom.name"
	KeyVenueName = "venue.name"
	KeyDate      = "resepsi.date"
)

type Service struct {
	DB *gorm.DB
}

// All returns every setting.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	var rows []domain.Setting
	if err := s.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Get returns the value under key, or def when unset.
func (s *Service) Get(ctx context.Context, key, def string) (string, error) {
	var r domain.Setting
	err := s.DB.WithContext(ctx).Where("setting_key = ?", key).Limit(1).Find(&r).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	if r.Key == "" {
		return def, nil
	}
	return r.Value, nil
}

func rowsFrom(values map[string]string, now time.Time) ([]domain.Setting, error) {
	rows := make([]domain.Setting, 0, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, apperr.ValidationField("key", "Setting key must not be empty")
		}
		rows = append(rows, domain.Setting{Key: k, Value: v, UpdatedAt: now})
	}
	return rows, nil
}

// Upsert writes all values in one transaction, overwriting existing keys.
func (s *Service) Upsert(ctx context.Context, values map[string]string) error {
	rows, err := rowsFrom(values, time.Now())
	if err != nil || len(rows) == 0 {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// SeedDefaults inserts values whose keys are not set yet; existing keys are untouched.
func (s *Service) SeedDefaults(ctx context.Context, values map[string]string) error {
	rows, err := rowsFrom(values, time.Now())
	if err != nil || len(rows) == 0 {
		return err
	}
	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}
