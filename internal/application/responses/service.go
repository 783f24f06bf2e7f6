// Package responses records RSVPs and wishes, upserting by submitted name.
package responses

import (
	"context"
	"errors"
	"strings"
	"time"

	"wedding-invitation/internal/application/notify"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/infrastructure/database"
	"wedding-invitation/internal/pkg/apperr"
	"wedding-invitation/internal/pkg/ratelimit"
	"wedding-invitation/internal/pkg/validation"

	"gorm.io/gorm"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"

	// A losing concurrent first insert under the same name retries once as an update.
	upsertAttempts = 2
)

// Service handles public submissions and their admin moderation.
type Service struct {
	DB       *gorm.DB
	Limiter  ratelimit.Limiter
	Notifier *notify.Dispatcher
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RSVPInput is the public RSVP payload. GuestSlug optionally ties it to an invitation.
type RSVPInput struct {
	GuestName  string `json:"guest_name"`
	Phone      string `json:"phone"`
	Attendance string `json:"attendance"`
	GuestCount int    `json:"guest_count"`
	Message    string `json:"message"`
	GuestSlug  string `json:"guest_slug"`
}

// WishInput is the public wish payload.
type WishInput struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RSVPUpdate is an admin correction of a stored RSVP. All fields are replaced.
type RSVPUpdate struct {
	GuestName  string `json:"guest_name"`
	Attendance string `json:"attendance"`
	GuestCount int    `json:"guest_count"`
	Message    string `json:"message"`
}

// WishUpdate is an admin correction of a stored wish.
type WishUpdate struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Result reports which row was written and whether it was new.
type Result struct {
	ID     uint   `json:"id"`
	Action string `json:"action"`
}

func (s *Service) allow(source string) error {
	if s.Limiter != nil && !s.Limiter.Allow(source) {
		return apperr.RateLimited("Too many requests. Please try again later.")
	}
	return nil
}

// normalizeRSVP validates the shared RSVP fields and returns the escaped name and the
// stored guest count, which is zero unless the guest is attending.
func normalizeRSVP(guestName, attendance string, guestCount int) (string, int, error) {
	name := validation.EscapeHTML(strings.TrimSpace(guestName))
	if name == "" {
		return "", 0, apperr.ValidationField("guest_name", "Name is required")
	}
	if !domain.IsValidAttendance(attendance) {
		return "", 0, apperr.ValidationField("attendance", "attendance must be attending, not_attending or undecided")
	}
	if guestCount < 0 {
		return "", 0, apperr.ValidationField("guest_count", "guest_count must not be negative")
	}
	if attendance != domain.AttendanceAttending {
		guestCount = 0
	}
	return name, guestCount, nil
}

func normalizeWish(name, message string) (string, string, error) {
	name = validation.EscapeHTML(strings.TrimSpace(name))
	if name == "" {
		return "", "", apperr.ValidationField("name", "Name is required")
	}
	message = validation.EscapeHTML(strings.TrimSpace(message))
	if message == "" {
		return "", "", apperr.ValidationField("message", "Message is required")
	}
	return name, message, nil
}

// SubmitRSVP creates or overwrites the RSVP stored under the same (escaped) name.
func (s *Service) SubmitRSVP(ctx context.Context, source string, in RSVPInput) (*Result, error) {
	if err := s.allow(source); err != nil {
		return nil, err
	}

	name, count, err := normalizeRSVP(in.GuestName, in.Attendance, in.GuestCount)
	if err != nil {
		return nil, err
	}
	var phone *string
	if p := validation.EscapeHTML(strings.TrimSpace(in.Phone)); p != "" {
		phone = &p
	}
	r := domain.RSVP{
		GuestName:  name,
		Phone:      phone,
		Attendance: in.Attendance,
		GuestCount: count,
		Message:    validation.EscapeHTML(strings.TrimSpace(in.Message)),
		CreatedAt:  s.now(),
	}
	guestSlug := strings.TrimSpace(in.GuestSlug)

	var action string
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		r.ID = 0
		action, err = s.upsertRSVP(ctx, &r, guestSlug)
		if err == nil || !database.IsDuplicateKey(err) {
			break
		}
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}

	s.Notifier.Dispatch(notify.RenderRSVP(r, action))
	return &Result{ID: r.ID, Action: action}, nil
}

func (s *Service) upsertRSVP(ctx context.Context, r *domain.RSVP, guestSlug string) (string, error) {
	action := ActionCreated
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.RSVP
		err := tx.Where("guest_name = ?", r.GuestName).First(&existing).Error
		switch {
		case err == nil:
			action = ActionUpdated
			r.ID = existing.ID
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"phone":       r.Phone,
				"attendance":  r.Attendance,
				"guest_count": r.GuestCount,
				"message":     r.Message,
				"created_at":  r.CreatedAt,
			}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(r).Error; err != nil {
				return err
			}
		default:
			return err
		}

		if guestSlug != "" {
			// Unknown slugs are ignored: the RSVP stands on its own.
			return tx.Model(&domain.Guest{}).Where("guest_slug = ?", guestSlug).
				Updates(map[string]interface{}{"has_rsvp": true, "rsvp_id": r.ID}).Error
		}
		return nil
	})
	return action, err
}

// SubmitWish creates or overwrites the wish stored under the same (escaped) name.
func (s *Service) SubmitWish(ctx context.Context, source string, in WishInput) (*Result, error) {
	if err := s.allow(source); err != nil {
		return nil, err
	}

	name, message, err := normalizeWish(in.Name, in.Message)
	if err != nil {
		return nil, err
	}
	w := domain.Wish{Name: name, Message: message, CreatedAt: s.now()}

	var action string
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		w.ID = 0
		action, err = s.upsertWish(ctx, &w)
		if err == nil || !database.IsDuplicateKey(err) {
			break
		}
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}

	s.Notifier.Dispatch(notify.RenderWish(w, action))
	return &Result{ID: w.ID, Action: action}, nil
}

func (s *Service) upsertWish(ctx context.Context, w *domain.Wish) (string, error) {
	action := ActionCreated
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Wish
		err := tx.Where("name = ?", w.Name).First(&existing).Error
		switch {
		case err == nil:
			action = ActionUpdated
			w.ID = existing.ID
			return tx.Model(&existing).Updates(map[string]interface{}{
				"message":    w.Message,
				"created_at": w.CreatedAt,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(w).Error
		default:
			return err
		}
	})
	return action, err
}

// UpdateRSVP applies an admin correction. The submission time is kept and no
// notification is sent. Renaming onto another RSVP's name is a Conflict.
func (s *Service) UpdateRSVP(ctx context.Context, id uint, in RSVPUpdate) (*domain.RSVP, error) {
	name, count, err := normalizeRSVP(in.GuestName, in.Attendance, in.GuestCount)
	if err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&domain.RSVP{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"guest_name":  name,
			"attendance":  in.Attendance,
			"guest_count": count,
			"message":     validation.EscapeHTML(strings.TrimSpace(in.Message)),
		})
	if res.Error != nil {
		if database.IsDuplicateKey(res.Error) {
			return nil, apperr.Conflict("Another RSVP already uses this name").With("field", "guest_name")
		}
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("RSVP not found")
	}
	var r domain.RSVP
	if err := s.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return &r, nil
}

// UpdateWish applies an admin correction to a wish.
func (s *Service) UpdateWish(ctx context.Context, id uint, in WishUpdate) (*domain.Wish, error) {
	name, message, err := normalizeWish(in.Name, in.Message)
	if err != nil {
		return nil, err
	}
	res := s.DB.WithContext(ctx).Model(&domain.Wish{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "message": message})
	if res.Error != nil {
		if database.IsDuplicateKey(res.Error) {
			return nil, apperr.Conflict("Another wish already uses this name").With("field", "name")
		}
		return nil, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Wish not found")
	}
	var w domain.Wish
	if err := s.DB.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return &w, nil
}

// ListRSVPs returns all RSVPs, most recent submission first.
func (s *Service) ListRSVPs(ctx context.Context) ([]domain.RSVP, error) {
	out := []domain.RSVP{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

// ListWishes returns all wishes, most recent first.
func (s *Service) ListWishes(ctx context.Context) ([]domain.Wish, error) {
	out := []domain.Wish{}
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return out, nil
}

// DeleteRSVP removes an RSVP and clears any guest backlink to it.
func (s *Service) DeleteRSVP(ctx context.Context, id uint) error {
	_, err := s.DeleteRSVPs(ctx, []uint{id})
	return err
}

// DeleteRSVPs removes the given RSVPs and clears guest backlinks to them in one
// transaction. Unknown ids are skipped; NotFound only when none existed.
func (s *Service) DeleteRSVPs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.ValidationField("ids", "No valid ID provided")
	}
	var affected int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Guest{}).Where("rsvp_id IN ?", ids).
			Updates(map[string]interface{}{"has_rsvp": false, "rsvp_id": nil}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&domain.RSVP{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, apperr.Storage(err)
	}
	if affected == 0 {
		return 0, apperr.NotFound("RSVP not found")
	}
	return affected, nil
}

// DeleteWish removes a wish.
func (s *Service) DeleteWish(ctx context.Context, id uint) error {
	_, err := s.DeleteWishes(ctx, []uint{id})
	return err
}

// DeleteWishes removes the given wishes. NotFound only when none existed.
func (s *Service) DeleteWishes(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.ValidationField("ids", "No valid ID provided")
	}
	res := s.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Wish{})
	if res.Error != nil {
		return 0, apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, apperr.NotFound("Wish not found")
	}
	return res.RowsAffected, nil
}
