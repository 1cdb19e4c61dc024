package domain

import (
	"fmt"
	"strings"
	"time"
)

// RawLesson is one lesson occurrence exactly as the scraper hands it over.
// Field names match the scraper's JSON dump. A fresh list is produced on
// every run; nothing here is ever mutated.
type RawLesson struct {
	// Date is "11.02.2025", possibly prefixed with a weekday name
	// ("Вторник 11.02.2025").
	Date string `json:"date"`
	// TimeRange is "18:30-20:00" (local wall clock).
	TimeRange  string `json:"time_range"`
	Discipline string `json:"discipline"`
	LessonType string `json:"lesson_type"`
	Auditorium string `json:"auditorium"`
	Teacher    string `json:"teacher"`
	// WebinarURL is the explicit link column when the source page has one.
	// The discipline text may also embed a trailing "вебинар: <url>" marker.
	WebinarURL string `json:"webinar_url,omitempty"`
}

const dateLayout = "02.01.2006"

// ParseDate extracts the calendar date from the raw date string. A leading
// weekday name is tolerated and ignored.
func (l RawLesson) ParseDate() (time.Time, error) {
	parts := strings.Fields(strings.TrimSpace(l.Date))
	if len(parts) == 0 {
		return time.Time{}, fmt.Errorf("lesson: empty date")
	}
	d, err := time.Parse(dateLayout, parts[len(parts)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("lesson: bad date %q: %w", l.Date, err)
	}
	return d, nil
}

// SplitTimeRange returns the "HH:MM" start and end of the time range.
func (l RawLesson) SplitTimeRange() (string, string, error) {
	parts := strings.Split(strings.ReplaceAll(l.TimeRange, " ", ""), "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("lesson: bad time range %q", l.TimeRange)
	}
	return parts[0], parts[1], nil
}

// NormalizedLesson is the canonical, immutable view of a RawLesson after
// title cleaning, link and location resolution and time parsing. It is the
// unit the reconciliation engine works with.
type NormalizedLesson struct {
	// Title is the discipline with any trailing webinar marker stripped.
	Title      string `json:"title"`
	LessonType string `json:"lesson_type"`
	Teacher    string `json:"teacher"`
	// Room is the raw auditorium text.
	Room string `json:"room"`
	// WebinarURL is the resolved link: the explicit field when present,
	// otherwise the first URL found inside the raw discipline text.
	WebinarURL string `json:"webinar_url,omitempty"`
	// Location is what goes on the calendar event: the webinar URL when the
	// room names a virtual platform and a URL resolved, else the room text.
	Location string `json:"location"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// IsFirstOfDay is true for the earliest lesson of its date within the
	// desired set (ties broken by input order). Drives reminder overrides.
	IsFirstOfDay bool `json:"is_first_of_day"`
}

// DateKey is the lesson date as "dd.mm.yyyy", the form used in identity keys.
func (l NormalizedLesson) DateKey() string {
	return l.Start.Format(dateLayout)
}

// StartHHMM is the start time truncated to minute granularity.
func (l NormalizedLesson) StartHHMM() string {
	return l.Start.Format("15:04")
}
