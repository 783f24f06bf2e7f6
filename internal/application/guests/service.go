// Package guests is the authoritative record of invited parties and their open/check-in telemetry.
package guests

import (
	"context"
	"errors"
	"strings"
	"time"

	"wedding-invitation/internal/application/slug"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000

	// DefaultCheckInBy is recorded when the operator does not name themself.
	DefaultCheckInBy = "Admin"

	slugAttempts = 5
)

// Service manages guest rows.
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

// CreateInput is the payload for a new guest. MaxGuests nil means the default party size.
type CreateInput struct {
	GuestName string  `json:"guest_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Category  string  `json:"guest_category"`
	MaxGuests *int    `json:"max_guests"`
	Notes     *string `json:"notes"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	GuestName *string `json:"guest_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Category  *string `json:"guest_category"`
	MaxGuests *int    `json:"max_guests"`
	Notes     *string `json:"notes"`
}

// Filter narrows List. Nil pointers mean "any".
type Filter struct {
	Category string
	HasRSVP  *bool
	IsOpened *bool
	Search   string
	Limit    int
	Offset   int
}

// Page is one page of List results with the total matching count.
type Page struct {
	Guests []domain.Guest `json:"guests"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func validateMaxGuests(n int) error {
	if n < domain.MinMaxGuests || n > domain.MaxMaxGuests {
		return apperr.ValidationField("max_guests", "max_guests must be between 1 and 20")
	}
	return nil
}

func validateContact(phone, email *string) error {
	if phone != nil && *phone != "" && !validation.IsValidPhone(*phone) {
		return apperr.ValidationField("phone", "Invalid phone number")
	}
	if email != nil && *email != "" && !validation.IsValidEmail(*email) {
		return apperr.ValidationField("email", "Invalid email address")
	}
	return nil
}

// likeEscaper makes user search text match literally inside LIKE ... ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// blankToNil stores empty optional strings as NULL.
func blankToNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// Create validates in and inserts a guest with a unique slug derived from its name.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Guest, error) {
	name := strings.TrimSpace(in.GuestName)
	if name == "" {
		return nil, apperr.ValidationField("guest_name", "Guest name is required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.IsValidCategory(category) {
		return nil, apperr.ValidationField("guest_category", "Invalid guest category")
	}
	maxGuests := domain.DefaultMaxGuests
	if in.MaxGuests != nil {
		maxGuests = *in.MaxGuests
	}
	if err := validateMaxGuests(maxGuests); err != nil {
		return nil, err
	}
	if err := validateContact(in.Phone, in.Email); err != nil {
		return nil, err
	}
	base := slug.Generate(name)
	if base == "" {
		return nil, apperr.ValidationField("guest_name", "Guest name must contain letters or digits")
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		existing, err := s.Slugs(ctx, 0)
		if err != nil {
			return nil, err
		}
		g := &domain.Guest{
			GuestName: name,
			GuestSlug: slug.EnsureUnique(base, slug.Set(existing)),
			Phone:     blankToNil(in.Phone),
			Email:     blankToNil(in.Email),
			Category:  category,
			MaxGuests: maxGuests,
			Notes:     blankToNil(in.Notes),
		}
		err = s.DB.WithContext(ctx).Create(g).Error
		if err == nil {
			return g, nil
		}
		if !database.IsDuplicateKey(err) {
			return nil, apperr.Storage(err)
		}
		log.Debug().Str("slug", g.GuestSlug).Int("attempt", attempt+1).Msg("slug taken concurrently, retrying")
	}
	return nil, apperr.Conflict("Could not allocate a unique slug").With("field", "guest_slug")
}

// Get returns the guest with id.
func (s *Service) Get(ctx context.Context, id uint) (*domain.Guest, error) {
	var g domain.Guest
	if err := s.DB.WithContext(ctx).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Guest not found")
		}
		return nil, apperr.Storage(err)
	}
	return &g, nil
}

// GetBySlug returns the guest owning slug without touching open tracking.
func (s *Service) GetBySlug(ctx context.Context, guestSlug string) (*domain.Guest, error) {
	var g domain.Guest
	if err := s.DB.WithContext(ctx).Where("guest_slug = ?", guestSlug).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Guest not found")
		}
		return nil, apperr.Storage(err)
	}
	return &g, nil
}

// Slugs returns every slug except the one owned by excludeID (0 excludes nothing).
func (s *Service) Slugs(ctx context.Context, excludeID uint) ([]string, error) {
	var out []string
	q := s.DB.WithContext(ctx).Model(&domain.Guest{})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("guest_slug", &out).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

// Rename changes the display name and regenerates the slug against all other guests.
// A name equal to the current one is a no-op.
func (s *Service) Rename(ctx context.Context, id uint, newName string) (*domain.Guest, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		return nil, apperr.ValidationField("guest_name", "Guest name is required")
	}
	if name == g.GuestName {
		return g, nil
	}
	base := slug.Generate(name)
	if base == "" {
		return nil, apperr.ValidationField("guest_name", "Guest name must contain letters or digits")
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		others, err := s.Slugs(ctx, id)
		if err != nil {
			return nil, err
		}
		newSlug := slug.EnsureUnique(base, slug.Set(others))
		err = s.DB.WithContext(ctx).Model(&domain.Guest{}).Where("id = ?", id).
			Updates(map[string]interface{}{"guest_name": name, "guest_slug": newSlug}).Error
		if err == nil {
			return s.Get(ctx, id)
		}
		if !database.IsDuplicateKey(err) {
			return nil, apperr.Storage(err)
		}
	}
	return nil, apperr.Conflict("Could not allocate a unique slug").With("field", "guest_slug")
}

// Update applies a partial update. A changed name goes through Rename.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*domain.Guest, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if !domain.IsValidCategory(c) {
			return nil, apperr.ValidationField("guest_category", "Invalid guest category")
		}
		updates["guest_category"] = c
	}
	if in.MaxGuests != nil {
		if err := validateMaxGuests(*in.MaxGuests); err != nil {
			return nil, err
		}
		updates["max_guests"] = *in.MaxGuests
	}
	if err := validateContact(in.Phone, in.Email); err != nil {
		return nil, err
	}
	if in.Phone != nil {
		updates["phone"] = blankToNil(in.Phone)
	}
	if in.Email != nil {
		updates["email"] = blankToNil(in.Email)
	}
	if in.Notes != nil {
		updates["notes"] = blankToNil(in.Notes)
	}

	if in.GuestName != nil {
		if _, err := s.Rename(ctx, id, *in.GuestName); err != nil {
			return nil, err
		}
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&domain.Guest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, apperr.Storage(err)
		}
	}
	return s.Get(ctx, id)
}

// RecordOpen counts one resolution of the guest's invitation link.
// The increment and timestamps happen in a single UPDATE so concurrent opens are never lost.
func (s *Service) RecordOpen(ctx context.Context, guestSlug string) (*domain.Guest, error) {
	now := s.now()
	res := s.DB.WithContext(ctx).Model(&domain.Guest{}).
		Where("guest_slug = ?", guestSlug).
		Updates(map[string]interface{}{
			"open_count":      gorm.Expr("open_count + 1"),
			"last_opened_at":  now,
			"first_opened_at": gorm.Expr("COALESCE(first_opened_at, ?)", now),
		})
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Guest not found")
	}
	return s.GetBySlug(ctx, guestSlug)
}

// CheckIn marks the guest as arrived. The first check-in wins; later attempts
// fail with Conflict carrying the original checked_in_at.
func (s *Service) CheckIn(ctx context.Context, id uint, by, notes string) (*domain.Guest, error) {
	by = strings.TrimSpace(by)
	if by == "" {
		by = DefaultCheckInBy
	}
	now := s.now()
	res := s.DB.WithContext(ctx).Model(&domain.Guest{}).
		Where("id = ? AND checked_in_at IS NULL", id).
		Updates(map[string]interface{}{
			"checked_in_at":  now,
			"checked_in_by":  by,
			"check_in_notes": strings.TrimSpace(notes),
		})
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		g, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		e := apperr.Conflict("Guest already checked in").With("checked_in_at", g.CheckedInAt)
		if g.CheckedInBy != nil {
			e = e.With("checked_in_by", *g.CheckedInBy)
		}
		return nil, e.With("guest", g)
	}
	return s.Get(ctx, id)
}

// MarkSent records that the invitation was delivered, e.g. via "whatsapp".
func (s *Service) MarkSent(ctx context.Context, id uint, via string) (*domain.Guest, error) {
	updates := map[string]interface{}{
		"is_sent":  true,
		"sent_at":  s.now(),
		"sent_via": blankToNil(&via),
	}
	res := s.DB.WithContext(ctx).Model(&domain.Guest{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Guest not found")
	}
	return s.Get(ctx, id)
}

// Delete removes the guest. A linked RSVP is left in place.
func (s *Service) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&domain.Guest{}, id)
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Guest not found")
	}
	return nil
}

// List returns one page of guests, newest first, with the total matching f.
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	filtered := func() *gorm.DB {
		q := s.DB.WithContext(ctx).Model(&domain.Guest{})
		if f.Category != "" {
			q = q.Where("guest_category = ?", f.Category)
		}
		if f.HasRSVP != nil {
			q = q.Where("has_rsvp = ?", *f.HasRSVP)
		}
		if f.IsOpened != nil {
			if *f.IsOpened {
				q = q.Where("open_count > 0")
			} else {
				q = q.Where("open_count = 0")
			}
		}
		if term := strings.TrimSpace(f.Search); term != "" {
			like := "%" + likeEscaper.Replace(term) + "%"
			q = q.Where(`(guest_name LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`, like, like, like)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	guests := []domain.Guest{}
	if err := filtered().Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&guests).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return &Page{Guests: guests, Total: total, Limit: limit, Offset: offset}, nil
}

// All returns every guest, optionally restricted to a category, in creation order.
func (s *Service) All(ctx context.Context, category string) ([]domain.Guest, error) {
	var out []domain.Guest
	q := s.DB.WithContext(ctx)
	if category != "" {
		q = q.Where("guest_category = ?", category)
	}
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}
