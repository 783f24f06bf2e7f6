// Package checkin turns scanned or typed tokens into guest arrivals.
package checkin

import (
	"context"
	"math"
	"net/url"
	"strings"
	"time"

	"wedding-invitation/internal/application/guests"
	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"

	"gorm.io/gorm"
)

const (
	DefaultQueryParam = "to"

	ScannerBy    = "QR Scanner"
	ScannerNotes = "Check-in via QR code scan"
	ManualBy     = "Manual Entry"

	recentLimit = 10
)

// Service resolves payloads and delegates the arrival transition to the guest directory.
type Service struct {
	DB         *gorm.DB
	Guests     *guests.Service
	QueryParam string
}

// Outcome is a successful check-in.
type Outcome struct {
	Slug  string        `json:"slug"`
	Guest *domain.Guest `json:"guest"`
}

// ResolvePayload extracts the slug from a scanned payload. Absolute URLs yield the
// value of param (possibly empty); anything else is taken as the slug itself.
func ResolvePayload(payload, param string) string {
	payload = strings.TrimSpace(payload)
	if param == "" {
		param = DefaultQueryParam
	}
	if u, err := url.Parse(payload); err == nil && u.Scheme != "" && u.Host != "" {
		return strings.TrimSpace(u.Query().Get(param))
	}
	return payload
}

// Scan checks in the guest encoded in payload. Unresolvable payloads fail with
// NotFound and write nothing.
func (s *Service) Scan(ctx context.Context, payload, by, notes string) (*Outcome, error) {
	slug := ResolvePayload(payload, s.QueryParam)
	if slug == "" {
		return nil, apperr.NotFound("Guest not found").With("reason", "QR code does not contain a guest")
	}
	g, err := s.Guests.GetBySlug(ctx, slug)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Guest not found").With("slug", slug)
		}
		return nil, err
	}
	if g.CheckedInAt != nil {
		e := apperr.Conflict(g.GuestName+" already checked in").With("checked_in_at", g.CheckedInAt)
		if g.CheckedInBy != nil {
			e = e.With("checked_in_by", *g.CheckedInBy)
		}
		return nil, e.With("guest", g)
	}
	if strings.TrimSpace(by) == "" {
		by = ScannerBy
	}
	if strings.TrimSpace(notes) == "" {
		notes = ScannerNotes
	}
	// CheckIn re-checks arrival atomically, so a concurrent scan still gets Conflict.
	updated, err := s.Guests.CheckIn(ctx, g.ID, by, notes)
	if err != nil {
		return nil, err
	}
	return &Outcome{Slug: slug, Guest: updated}, nil
}

// Manual checks in a guest picked from the list by id.
func (s *Service) Manual(ctx context.Context, id uint, notes string) (*domain.Guest, error) {
	return s.Guests.CheckIn(ctx, id, ManualBy, notes)
}

// RecentCheckIn is one row of the arrivals feed.
type RecentCheckIn struct {
	ID           uint       `json:"id"`
	GuestName    string     `json:"guest_name"`
	Category     string     `gorm:"column:guest_category" json:"guest_category"`
	CheckedInAt  *time.Time `json:"checked_in_at"`
	CheckedInBy  *string    `json:"checked_in_by"`
	CheckInNotes *string    `json:"check_in_notes"`
}

// Stats is the arrivals dashboard.
type Stats struct {
	TotalGuests    int64           `json:"total_guests"`
	CheckedIn      int64           `json:"checked_in"`
	NotCheckedIn   int64           `json:"not_checked_in"`
	CheckInRate    int             `json:"check_in_rate"`
	RecentCheckIns []RecentCheckIn `json:"recent_check_ins"`
}

// Stats counts arrivals. CheckInRate is a whole percentage, 0 for an empty list.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{RecentCheckIns: []RecentCheckIn{}}
	db := s.DB.WithContext(ctx)
	if err := db.Model(&domain.Guest{}).Count(&st.TotalGuests).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	if err := db.Model(&domain.Guest{}).Where("checked_in_at IS NOT NULL").Count(&st.CheckedIn).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	st.NotCheckedIn = st.TotalGuests - st.CheckedIn
	if st.TotalGuests > 0 {
		st.CheckInRate = int(math.Round(float64(st.CheckedIn) / float64(st.TotalGuests) * 100))
	}
	if err := db.Model(&domain.Guest{}).
		Select("id, guest_name, guest_category, checked_in_at, checked_in_by, check_in_notes").
		Where("checked_in_at IS NOT NULL").
		Order("checked_in_at DESC").
		Limit(recentLimit).
		Scan(&st.RecentCheckIns).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return st, nil
}
