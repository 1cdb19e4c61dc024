package sync

import (
	"context"
	"fmt"
	"time"

	"calsync/internal/domain"
	"calsync/internal/gcal"
	"calsync/internal/schedule"
)

// CalendarAPI is the remote-mutator contract the engine drives. gcal.Client
// satisfies it; tests substitute a fake.
type CalendarAPI interface {
	ListPage(ctx context.Context, calendarID string, timeMin, timeMax time.Time, pageToken string) (*gcal.ListEventsResponse, error)
	Insert(ctx context.Context, calendarID string, ev *gcal.Event) (*gcal.Event, error)
	Update(ctx context.Context, calendarID, eventID string, ev *gcal.Event) (*gcal.Event, error)
	Delete(ctx context.Context, calendarID, eventID string) error
}

type timeTitle struct {
	start   int64
	summary string
}

// RemoteState indexes the remote events of the covering window: by identity
// key for managed events, and by (start instant, summary) for events without
// a versioned key (foreign or legacy-tagged), which are adoption candidates.
type RemoteState struct {
	ByKey       map[string]*gcal.Event
	byTimeTitle map[timeTitle]*gcal.Event
}

// Adoptable returns an untagged/legacy event matching (start, summary) and
// consumes it, so two desired lessons can never adopt the same remote event.
func (s *RemoteState) Adoptable(start time.Time, summary string) *gcal.Event {
	k := timeTitle{start.Unix(), summary}
	ev := s.byTimeTitle[k]
	if ev != nil {
		delete(s.byTimeTitle, k)
	}
	return ev
}

// Window is the listing bound: the span of the desired set, or now+horizon
// when the desired set is empty.
func Window(desired []domain.NormalizedLesson, now time.Time, horizon time.Duration) (time.Time, time.Time) {
	if len(desired) == 0 {
		return now, now.Add(horizon)
	}
	min := desired[0].Start
	max := desired[0].End
	for _, l := range desired[1:] {
		if l.Start.Before(min) {
			min = l.Start
		}
		if l.End.After(max) {
			max = l.End
		}
	}
	return min, max
}

// FetchRemoteState reads every event in the window, following continuation
// tokens to the end. A partial read would cause spurious inserts and deletes,
// so any page failure fails the whole read.
func FetchRemoteState(ctx context.Context, api CalendarAPI, calendarID string, timeMin, timeMax time.Time) (*RemoteState, error) {
	state := &RemoteState{
		ByKey:       map[string]*gcal.Event{},
		byTimeTitle: map[timeTitle]*gcal.Event{},
	}

	pageToken := ""
	for page := 1; ; page++ {
		resp, err := api.ListPage(ctx, calendarID, timeMin, timeMax, pageToken)
		if err != nil {
			return nil, fmt.Errorf("sync: list page %d: %w", page, err)
		}
		for _, ev := range resp.Items {
			if ev.Status == "cancelled" {
				continue
			}
			if key := ev.LessonKey(); schedule.IsManagedKey(key) {
				// First one wins; duplicates from earlier partial runs stay
				// adoptable rather than shadowing the indexed event.
				if _, exists := state.ByKey[key]; !exists {
					state.ByKey[key] = ev
					continue
				}
			}
			start, err := ev.StartTime()
			if err != nil {
				continue
			}
			tt := timeTitle{start.Unix(), ev.Summary}
			if _, exists := state.byTimeTitle[tt]; !exists {
				state.byTimeTitle[tt] = ev
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return state, nil
}
