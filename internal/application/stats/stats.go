// Package stats derives dashboard rollups from guest rows on every read.
package stats

import (
	"context"
	"math"
	"time"

	"wedding-invitation/internal/domain"
	"wedding-invitation/internal/pkg/apperr"

	"gorm.io/gorm"
)

const recentActivityLimit = 10

// CategoryStats is the rollup of one guest category.
type CategoryStats struct {
	Category         string  `json:"guest_category"`
	TotalInvitations int     `json:"total_invitations"`
	OpenedCount      int     `json:"opened_count"`
	RSVPCount        int     `json:"rsvp_count"`
	SentCount        int     `json:"sent_count"`
	AvgOpenCount     float64 `json:"avg_open_count"`
}

// Summary is the rollup across all guests.
type Summary struct {
	TotalInvitations int     `json:"total_invitations"`
	TotalOpened      int     `json:"total_opened"`
	TotalRSVP        int     `json:"total_rsvp"`
	TotalSent        int     `json:"total_sent"`
	TotalNotOpened   int     `json:"total_not_opened"`
	OpenedPercentage float64 `json:"opened_percentage"`
	RSVPPercentage   float64 `json:"rsvp_percentage"`
	SentPercentage   float64 `json:"sent_percentage"`
	CheckedIn        int     `json:"checked_in"`
	AvgOpenCount     float64 `json:"avg_open_count"`
}

// Activity is one recently opened invitation.
type Activity struct {
	GuestName    string     `json:"guest_name"`
	GuestSlug    string     `json:"guest_slug"`
	LastOpenedAt *time.Time `json:"last_opened_at"`
	OpenCount    int        `json:"qr_open_count"`
}

// Report is the full dashboard payload.
type Report struct {
	ByCategory     []CategoryStats `json:"by_category"`
	Summary        Summary         `json:"summary"`
	RecentActivity []Activity      `json:"recent_activity"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percent returns part/total as a percentage with two decimals; 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func average(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return round2(float64(sum) / float64(n))
}

// Summarize computes per-category and global rollups. Categories appear in the
// canonical order, followed by any unknown categories in first-seen order; empty ones are omitted.
func Summarize(rows []domain.Guest) Report {
	type acc struct {
		CategoryStats
		openSum int
	}
	byCat := map[string]*acc{}
	var order []string
	var sum Summary
	openSum := 0

	for _, g := range rows {
		a, ok := byCat[g.Category]
		if !ok {
			a = &acc{CategoryStats: CategoryStats{Category: g.Category}}
			byCat[g.Category] = a
			order = append(order, g.Category)
		}
		a.TotalInvitations++
		a.openSum += g.OpenCount
		sum.TotalInvitations++
		openSum += g.OpenCount
		if g.IsOpened() {
			a.OpenedCount++
			sum.TotalOpened++
		}
		if g.HasRSVP {
			a.RSVPCount++
			sum.TotalRSVP++
		}
		if g.IsSent {
			a.SentCount++
			sum.TotalSent++
		}
		if g.CheckedInAt != nil {
			sum.CheckedIn++
		}
	}

	sum.TotalNotOpened = sum.TotalInvitations - sum.TotalOpened
	sum.OpenedPercentage = percent(sum.TotalOpened, sum.TotalInvitations)
	sum.RSVPPercentage = percent(sum.TotalRSVP, sum.TotalInvitations)
	sum.SentPercentage = percent(sum.TotalSent, sum.TotalInvitations)
	sum.AvgOpenCount = average(openSum, sum.TotalInvitations)

	cats := make([]CategoryStats, 0, len(byCat))
	emit := func(c string) {
		a, ok := byCat[c]
		if !ok {
			return
		}
		a.AvgOpenCount = average(a.openSum, a.TotalInvitations)
		cats = append(cats, a.CategoryStats)
		delete(byCat, c)
	}
	for _, c := range domain.ValidCategories {
		emit(c)
	}
	for _, c := range order {
		emit(c)
	}

	return Report{ByCategory: cats, Summary: sum, RecentActivity: []Activity{}}
}

// Service loads guest rows and builds the Report.
type Service struct {
	DB *gorm.DB
}

// Report recomputes the rollups and lists the most recently opened invitations.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	var rows []domain.Guest
	db := s.DB.WithContext(ctx)
	if err := db.Find(&rows).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	r := Summarize(rows)
	if err := db.Model(&domain.Guest{}).
		Select("guest_name, guest_slug, last_opened_at, open_count").
		Where("last_opened_at IS NOT NULL").
		Order("last_opened_at DESC").
		Limit(recentActivityLimit).
		Scan(&r.RecentActivity).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return &r, nil
}
