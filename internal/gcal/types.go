package gcal

import (
	"time"

	"calsync/internal/schedule"
)

// EventDateTime is the Calendar API start/end edge.
type EventDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type Reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

type ExtendedProperties struct {
	Private map[string]string `json:"private,omitempty"`
}

// Event is the remote calendar representation, limited to the fields this
// engine reads or writes.
type Event struct {
	ID                      string              `json:"id,omitempty"`
	Status                  string              `json:"status,omitempty"`
	Summary                 string              `json:"summary,omitempty"`
	Location                string              `json:"location,omitempty"`
	Description             string              `json:"description,omitempty"`
	Start                   *EventDateTime      `json:"start,omitempty"`
	End                     *EventDateTime      `json:"end,omitempty"`
	Reminders               *Reminders          `json:"reminders,omitempty"`
	ExtendedProperties      *ExtendedProperties `json:"extendedProperties,omitempty"`
	GuestsCanInviteOthers   *bool               `json:"guestsCanInviteOthers,omitempty"`
	GuestsCanSeeOtherGuests *bool               `json:"guestsCanSeeOtherGuests,omitempty"`
}

// LessonKey returns the private lesson_key property, or "" when the event
// has none (foreign event).
func (e *Event) LessonKey() string {
	if e.ExtendedProperties == nil || e.ExtendedProperties.Private == nil {
		return ""
	}
	return e.ExtendedProperties.Private[schedule.PropLessonKey]
}

// SetLessonKey tags the event with an identity key.
func (e *Event) SetLessonKey(key string) {
	if e.ExtendedProperties == nil {
		e.ExtendedProperties = &ExtendedProperties{}
	}
	if e.ExtendedProperties.Private == nil {
		e.ExtendedProperties.Private = map[string]string{}
	}
	e.ExtendedProperties.Private[schedule.PropLessonKey] = key
}

// StartTime parses the event's start instant. All-day events (date only)
// resolve to midnight UTC of that date.
func (e *Event) StartTime() (time.Time, error) {
	if e.Start == nil {
		return time.Time{}, errNoStart
	}
	if e.Start.DateTime != "" {
		return time.Parse(time.RFC3339, e.Start.DateTime)
	}
	return time.Parse("2006-01-02", e.Start.Date)
}

// ListEventsResponse is one page of an events listing.
type ListEventsResponse struct {
	Items         []*Event `json:"items"`
	NextPageToken string   `json:"nextPageToken"`
}
