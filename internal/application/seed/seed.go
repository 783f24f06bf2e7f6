// Package seed loads a YAML guest list and default settings into an empty or existing database.
package seed

import (
	"context"
	"fmt"
	"io"

	"wedding-invitation/internal/application/guests"
	"wedding-invitation/internal/application/settings"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// File is the seed document.
//
//	settings:
//	  bride.name: Ayu
//	guests:
//	  - name: Keluarga Pak RT
//	    category: family
//	    max_guests: 4
type File struct {
	Settings map[string]string `yaml:"settings"`
	Guests   []Guest           `yaml:"guests"`
}

type Guest struct {
	Name      string  `yaml:"name"`
	Phone     *string `yaml:"phone"`
	Email     *string `yaml:"email"`
	Category  string  `yaml:"category"`
	MaxGuests *int    `yaml:"max_guests"`
	Notes     *string `yaml:"notes"`
}

// Result counts what Apply did.
type Result struct {
	Settings int `json:"settings"`
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

type Service struct {
	DB       *gorm.DB
	Guests   *guests.Service
	Settings *settings.Service
}

// Apply writes settings without overwriting existing keys, then creates each
// guest whose exact name is not already in the directory. It stops at the first invalid guest.
func (s *Service) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}
	if len(f.Settings) > 0 {
		if err := s.Settings.SeedDefaults(ctx, f.Settings); err != nil {
			return res, err
		}
		res.Settings = len(f.Settings)
	}
	for i, g := range f.Guests {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&domain.Guest{}).Where("guest_name = ?", g.Name).Count(&n).Error; err != nil {
			return res, apperr.Storage(err)
		}
		if n > 0 {
			res.Skipped++
			continue
		}
		created, err := s.Guests.Create(ctx, guests.CreateInput{
			GuestName: g.Name,
			Phone:     g.Phone,
			Email:     g.Email,
			Category:  g.Category,
			MaxGuests: g.MaxGuests,
			Notes:     g.Notes,
		})
		if err != nil {
			return res, fmt.Errorf("guest #%d (%q): %w", i+1, g.Name, err)
		}
		log.Debug().Str("slug", created.GuestSlug).Msg("seeded guest")
		res.Created++
	}
	return res, nil
}
