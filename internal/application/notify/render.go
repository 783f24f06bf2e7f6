package notify

import (
	"fmt"
	"strings"

	"wedding-invitation/internal/domain"
)

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func statusEmoji(attendance string) string {
	switch attendance {
	case domain.AttendanceAttending:
		return "✅"
	case domain.AttendanceUndecided:
		return "🤔"
	default:
		return "❌"
	}
}

// RenderRSVP formats an RSVP submission. Fields are expected to be HTML-escaped already.
func RenderRSVP(r domain.RSVP, action string) Message {
	party := "-"
	if r.Attendance == domain.AttendanceAttending {
		party = fmt.Sprintf("%d people", r.GuestCount)
	}
	phone := ""
	if r.Phone != nil {
		phone = *r.Phone
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>💌 RSVP RECEIVED (%s)</b>\n\n", strings.ToUpper(action))
	fmt.Fprintf(&b, "👤 <b>Name:</b> %s\n", r.GuestName)
	fmt.Fprintf(&b, "%s <b>Status:</b> %s\n", statusEmoji(r.Attendance), strings.ToUpper(r.Attendance))
	fmt.Fprintf(&b, "👥 <b>Party:</b> %s\n", party)
	fmt.Fprintf(&b, "📞 <b>Phone:</b> %s\n\n", dash(phone))
	fmt.Fprintf(&b, "💬 <b>Message:</b>\n<i>\"%s\"</i>", dash(r.Message))
	return Message{
		Subject: fmt.Sprintf("RSVP %s: %s", action, r.GuestName),
		Body:    b.String(),
	}
}

// RenderWish formats a wish submission.
func RenderWish(w domain.Wish, action string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>💐 NEW WISH (%s)</b>\n\n", strings.ToUpper(action))
	fmt.Fprintf(&b, "👤 <b>Name:</b> %s\n\n", w.Name)
	fmt.Fprintf(&b, "💬 <b>Message:</b>\n<i>\"%s\"</i>", dash(w.Message))
	return Message{
		Subject: fmt.Sprintf("Wish %s: %s", action, w.Name),
		Body:    b.String(),
	}
}
