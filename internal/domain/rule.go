package domain

import (
	"strings"
	"time"
)

// ExclusionRule removes lessons from the desired set before reconciliation.
// Title is required; the other fields are wildcards when empty. A rule
// matches a lesson iff every non-empty field equals the lesson's
// corresponding attribute.
type ExclusionRule struct {
	Title   string `yaml:"title" json:"title"`
	Teacher string `yaml:"teacher,omitempty" json:"teacher,omitempty"`
	// Weekday accepts English ("monday") or Russian ("понедельник") names.
	Weekday string `yaml:"weekday,omitempty" json:"weekday,omitempty"`
	// StartTime is "HH:MM".
	StartTime string `yaml:"start_time,omitempty" json:"start_time,omitempty"`
}

var ruWeekdays = map[string]time.Weekday{
	"воскресенье": time.Sunday,
	"понедельник": time.Monday,
	"вторник":     time.Tuesday,
	"среда":       time.Wednesday,
	"четверг":     time.Thursday,
	"пятница":     time.Friday,
	"суббота":     time.Saturday,
}

// Matches reports whether the rule excludes the given lesson.
func (r ExclusionRule) Matches(l NormalizedLesson) bool {
	if !strings.EqualFold(strings.TrimSpace(r.Title), l.Title) {
		return false
	}
	if t := strings.TrimSpace(r.Teacher); t != "" && !strings.EqualFold(t, l.Teacher) {
		return false
	}
	if w := strings.TrimSpace(r.Weekday); w != "" {
		wd, ok := parseWeekday(w)
		if !ok || wd != l.Start.Weekday() {
			return false
		}
	}
	if st := strings.TrimSpace(r.StartTime); st != "" && st != l.StartHHMM() {
		return false
	}
	return true
}

func parseWeekday(s string) (time.Weekday, bool) {
	low := strings.ToLower(s)
	if wd, ok := ruWeekdays[low]; ok {
		return wd, true
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, true
		}
	}
	return 0, false
}
