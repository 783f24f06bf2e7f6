package domain

import "time"

// Guest categories.
const (
	CategoryFamily    = "family"
	CategoryFriend    = "friend"
	CategoryColleague = "colleague"
	CategoryOther     = "other"
)

// Party size bounds for a single invitation.
const (
	MinMaxGuests     = 1
	MaxMaxGuests     = 20
	DefaultMaxGuests = 2
)

// ValidCategories lists every accepted guest category.
var ValidCategories = []string{CategoryFamily, CategoryFriend, CategoryColleague, CategoryOther}

// IsValidCategory reports whether c is one of ValidCategories.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Guest is one invitation: a named party with a unique public slug.
type Guest struct {
	ID            uint       `gorm:"column:id;primaryKey" json:"id"`
	GuestName     string     `gorm:"column:guest_name;not null" json:"guest_name"`
	GuestSlug     string     `gorm:"column:guest_slug;not null;uniqueIndex" json:"guest_slug"`
	Phone         *string    `gorm:"column:phone" json:"phone"`
	Email         *string    `gorm:"column:email" json:"email"`
	Category      string     `gorm:"column:guest_category;not null;default:'other';index" json:"guest_category"`
	MaxGuests     int        `gorm:"column:max_guests;not null;default:2" json:"max_guests"`
	OpenCount     int        `gorm:"column:open_count;not null;default:0" json:"open_count"`
	FirstOpenedAt *time.Time `gorm:"column:first_opened_at" json:"first_opened_at"`
	LastOpenedAt  *time.Time `gorm:"column:last_opened_at" json:"last_opened_at"`
	HasRSVP       bool       `gorm:"column:has_rsvp;not null;default:false" json:"has_rsvp"`
	RSVPID        *uint      `gorm:"column:rsvp_id" json:"rsvp_id"`
	IsSent        bool       `gorm:"column:is_sent;not null;default:false" json:"is_sent"`
	SentAt        *time.Time `gorm:"column:sent_at" json:"sent_at"`
	SentVia       *string    `gorm:"column:sent_via" json:"sent_via"`
	CheckedInAt   *time.Time `gorm:"column:checked_in_at" json:"checked_in_at"`
	CheckedInBy   *string    `gorm:"column:checked_in_by" json:"checked_in_by"`
	CheckInNotes  *string    `gorm:"column:check_in_notes" json:"check_in_notes"`
	Notes         *string    `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Guest) TableName() string {
	return "guest_invitations"
}

// IsOpened reports whether the invitation link was followed at least once.
func (g Guest) IsOpened() bool {
	return g.OpenCount > 0
}
