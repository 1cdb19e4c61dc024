// Package schedule turns raw scraped lessons into the canonical desired set:
// normalization, exclusion filtering and identity-key derivation.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"calsync/internal/domain"
)

var (
	urlRe = regexp.MustCompile(`(?i)(https?://\S+|[\w.-]+\.[a-z]{2,}/\S+)`)
	// trailing "вебинар: <url>" marker embedded in discipline text
	webinarTailRe = regexp.MustCompile(`(?i)\s*вебинар\s*:?\s*(https?://\S+|[\w.-]+\.[a-z]{2,}/\S+)\s*$`)
)

// virtualRoomMarker flags auditorium text that means "online lesson"; only
// then does the webinar URL take the location slot.
const virtualRoomMarker = "вебинарная платформа"

// CleanTitle strips a trailing webinar marker from a discipline title.
func CleanTitle(s string) string {
	return strings.TrimSpace(webinarTailRe.ReplaceAllString(s, ""))
}

// ExtractWebinarURL finds the first URL-shaped substring in text. Schemeless
// matches are normalized with an https:// prefix. Returns "" when no URL is
// present.
func ExtractWebinarURL(text string) string {
	m := urlRe.FindString(text)
	if m == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(m), "http") {
		m = "https://" + m
	}
	return m
}

// Normalize converts one raw lesson into its canonical form. It fails when
// the date or time range cannot be parsed; such lessons are dropped from the
// desired set by the caller.
func Normalize(raw domain.RawLesson, loc *time.Location) (domain.NormalizedLesson, error) {
	day, err := raw.ParseDate()
	if err != nil {
		return domain.NormalizedLesson{}, err
	}
	startS, endS, err := raw.SplitTimeRange()
	if err != nil {
		return domain.NormalizedLesson{}, err
	}
	start, err := combine(day, startS, loc)
	if err != nil {
		return domain.NormalizedLesson{}, fmt.Errorf("lesson: bad start %q: %w", startS, err)
	}
	end, err := combine(day, endS, loc)
	if err != nil {
		return domain.NormalizedLesson{}, fmt.Errorf("lesson: bad end %q: %w", endS, err)
	}

	url := strings.TrimSpace(raw.WebinarURL)
	if url == "" {
		url = ExtractWebinarURL(raw.Discipline)
	}

	room := strings.TrimSpace(raw.Auditorium)
	location := room
	if url != "" && strings.Contains(strings.ToLower(room), virtualRoomMarker) {
		location = url
	}

	return domain.NormalizedLesson{
		Title:      CleanTitle(raw.Discipline),
		LessonType: strings.TrimSpace(raw.LessonType),
		Teacher:    strings.TrimSpace(raw.Teacher),
		Room:       room,
		WebinarURL: url,
		Location:   location,
		Start:      start,
		End:        end,
	}, nil
}

func combine(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// Exclude returns the subsequence of lessons matching none of the rules,
// preserving input order.
func Exclude(lessons []domain.NormalizedLesson, rules []domain.ExclusionRule) []domain.NormalizedLesson {
	if len(rules) == 0 {
		return lessons
	}
	out := make([]domain.NormalizedLesson, 0, len(lessons))
	for _, l := range lessons {
		excluded := false
		for _, r := range rules {
			if r.Matches(l) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, l)
		}
	}
	return out
}

// MarkFirstOfDay sets IsFirstOfDay on the earliest lesson of each date.
// Ties are broken by input order; the input slice order is not changed.
func MarkFirstOfDay(lessons []domain.NormalizedLesson) {
	type pos struct {
		start time.Time
		idx   int
	}
	earliest := map[string]pos{}
	for i, l := range lessons {
		k := l.DateKey()
		cur, ok := earliest[k]
		if !ok || l.Start.Before(cur.start) {
			earliest[k] = pos{l.Start, i}
		}
	}
	for i := range lessons {
		lessons[i].IsFirstOfDay = false
	}
	for _, p := range earliest {
		lessons[p.idx].IsFirstOfDay = true
	}
}
