package domain

import "time"

// Attendance values for an RSVP.
const (
	AttendanceAttending    = "attending"
	AttendanceNotAttending = "not_attending"
	AttendanceUndecided    = "undecided"
)

// IsValidAttendance reports whether a is an accepted attendance value.
func IsValidAttendance(a string) bool {
	switch a {
	case AttendanceAttending, AttendanceNotAttending, AttendanceUndecided:
		return true
	}
	return false
}

// RSVP is an attendance response keyed by guest name.
// CreatedAt doubles as the submission time and is refreshed on resubmission.
type RSVP struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	GuestName  string    `gorm:"column:guest_name;not null;uniqueIndex:uq_rsvps_guest_name" json:"guest_name"`
	Phone      *string   `gorm:"column:phone" json:"phone"`
	Attendance string    `gorm:"column:attendance;not null" json:"attendance"`
	GuestCount int       `gorm:"column:guest_count;not null;default:0" json:"guest_count"`
	Message    string    `gorm:"column:message" json:"message"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (RSVP) TableName() string {
	return "rsvps"
}

// Wish is a public congratulatory message keyed by author name.
type Wish struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:uq_wishes_name" json:"name"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Wish) TableName() string {
	return "wishes"
}
