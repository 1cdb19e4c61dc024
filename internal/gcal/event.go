package gcal

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"calsync/internal/domain"
)

// EventFromLesson builds the desired event body for one lesson.
// Reminders: the first lesson of a day gets popups 60 and 10 minutes before,
// every other lesson a single 10-minute popup. The description carries the
// teacher, lesson form and webinar link, plus a volatile "Update:" line that
// the fingerprint ignores.
func EventFromLesson(l domain.NormalizedLesson, key string, tzName string, now time.Time) *Event {
	no := false
	summary := l.Title
	if l.LessonType != "" {
		summary = fmt.Sprintf("%s (%s)", l.Title, l.LessonType)
	}

	ev := &Event{
		Summary:     summary,
		Location:    l.Location,
		Description: buildDescription(l, now),
		Start:       &EventDateTime{DateTime: l.Start.Format(time.RFC3339), TimeZone: tzName},
		End:         &EventDateTime{DateTime: l.End.Format(time.RFC3339), TimeZone: tzName},
		Reminders:   remindersFor(l.IsFirstOfDay),
		GuestsCanInviteOthers:   &no,
		GuestsCanSeeOtherGuests: &no,
	}
	ev.SetLessonKey(key)
	return ev
}

func buildDescription(l domain.NormalizedLesson, now time.Time) string {
	var lines []string
	if l.Teacher != "" {
		lines = append(lines, "Преподаватель: "+l.Teacher)
	}
	if l.LessonType != "" {
		lines = append(lines, "Форма: "+l.LessonType)
	}
	if l.WebinarURL != "" {
		lines = append(lines, "Ссылка: "+l.WebinarURL)
	}
	lines = append(lines, "Update: "+now.Format("01.02")+" в "+now.Format("15:04"))
	return strings.Join(lines, "\n")
}

func remindersFor(firstOfDay bool) *Reminders {
	if firstOfDay {
		return &Reminders{
			UseDefault: false,
			Overrides: []ReminderOverride{
				{Method: "popup", Minutes: 60},
				{Method: "popup", Minutes: 10},
			},
		}
	}
	return &Reminders{
		UseDefault: false,
		Overrides:  []ReminderOverride{{Method: "popup", Minutes: 10}},
	}
}

// Fingerprint hashes the fields whose change should trigger an update:
// summary, location, start/end instants, description (minus the volatile
// Update line) and the reminder spec. Both desired bodies and remote events
// run through the same function, so comparison is recompute-and-equal.
func Fingerprint(e *Event) string {
	pieces := []string{
		e.Summary,
		e.Location,
		edgeInstant(e.Start),
		edgeInstant(e.End),
		descriptionWithoutUpdateLine(e.Description),
		reminderSpec(e.Reminders),
	}
	sum := sha1.Sum([]byte(strings.Join(pieces, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// edgeInstant normalizes a start/end edge to a UTC instant so that offset
// formatting differences between what we send and what the API echoes back
// do not register as content changes.
func edgeInstant(e *EventDateTime) string {
	if e == nil {
		return ""
	}
	if e.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, e.DateTime); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
		return e.DateTime
	}
	return e.Date
}

func descriptionWithoutUpdateLine(desc string) string {
	if desc == "" {
		return ""
	}
	lines := strings.Split(desc, "\n")
	kept := lines[:0]
	for _, ln := range lines {
		if strings.HasPrefix(ln, "Update:") {
			continue
		}
		kept = append(kept, ln)
	}
	return strings.Join(kept, "\n")
}

func reminderSpec(r *Reminders) string {
	if r == nil || r.UseDefault {
		return "default"
	}
	parts := make([]string, 0, len(r.Overrides))
	for _, o := range r.Overrides {
		parts = append(parts, fmt.Sprintf("%s:%d", o.Method, o.Minutes))
	}
	return strings.Join(parts, ",")
}
