package sync

import (
	"context"
	"testing"
	"time"

	"calsync/internal/domain"
	"calsync/internal/gcal"
)

func TestWindow(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 10, 19, 9, 0, 0, 0, loc)

	// Empty desired set: now..now+horizon.
	min, max := Window(nil, now, 180*24*time.Hour)
	if !min.Equal(now) {
		t.Errorf("Expected window to start at now, got %v", min)
	}
	if !max.Equal(now.Add(180 * 24 * time.Hour)) {
		t.Errorf("Expected horizon end, got %v", max)
	}

	// Non-empty: span of the desired lessons.
	mk := func(day string, h1, h2 int) domain.NormalizedLesson {
		d, _ := time.ParseInLocation("02.01.2006", day, loc)
		return domain.NormalizedLesson{
			Start: d.Add(time.Duration(h1) * time.Hour),
			End:   d.Add(time.Duration(h2) * time.Hour),
		}
	}
	desired := []domain.NormalizedLesson{
		mk("22.10.2025", 18, 20),
		mk("20.10.2025", 9, 10),
		mk("21.10.2025", 11, 12),
	}
	min, max = Window(desired, now, time.Hour)
	if min.Day() != 20 || min.Hour() != 9 {
		t.Errorf("Expected min = 20.10 09:00, got %v", min)
	}
	if max.Day() != 22 || max.Hour() != 20 {
		t.Errorf("Expected max = 22.10 20:00, got %v", max)
	}
}

func TestFetchRemoteStatePaginates(t *testing.T) {
	fake := &fakeAPI{pageSize: 1}
	for _, id := range []string{"a", "b", "c"} {
		ev := &gcal.Event{
			ID:      id,
			Summary: "S" + id,
			Start:   &gcal.EventDateTime{DateTime: "2025-10-20T10:00:00Z"},
		}
		ev.SetLessonKey("v1:" + id)
		fake.events = append(fake.events, ev)
	}

	state, err := FetchRemoteState(context.Background(), fake, testCal,
		time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(state.ByKey) != 3 {
		t.Errorf("Expected all 3 events across pages, got %d", len(state.ByKey))
	}
	if fake.listCalls != 3 {
		t.Errorf("Expected 3 page fetches, got %d", fake.listCalls)
	}
}

func TestFetchRemoteStateIndexes(t *testing.T) {
	fake := &fakeAPI{}

	managed := &gcal.Event{ID: "m1", Summary: "Алгебра (лекция)", Start: &gcal.EventDateTime{DateTime: "2025-10-20T18:30:00+10:00"}}
	managed.SetLessonKey("v1:managed")

	// Legacy tag from a pre-versioning deployment: adoptable, not managed.
	legacy := &gcal.Event{ID: "l1", Summary: "История (лекция)", Start: &gcal.EventDateTime{DateTime: "2025-10-20T10:00:00+10:00"}}
	legacy.SetLessonKey("20.10.2025_10:00-11:30_История_Иванов")

	foreign := &gcal.Event{ID: "f1", Summary: "Прием у врача", Start: &gcal.EventDateTime{DateTime: "2025-10-21T15:00:00+10:00"}}

	cancelled := &gcal.Event{ID: "c1", Status: "cancelled", Summary: "x", Start: &gcal.EventDateTime{DateTime: "2025-10-21T16:00:00+10:00"}}

	fake.events = append(fake.events, managed, legacy, foreign, cancelled)

	state, err := FetchRemoteState(context.Background(), fake, testCal, time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if state.ByKey["v1:managed"] == nil || state.ByKey["v1:managed"].ID != "m1" {
		t.Error("Expected managed event in the key index")
	}
	if len(state.ByKey) != 1 {
		t.Errorf("Expected only versioned keys in the key index, got %d", len(state.ByKey))
	}

	legacyStart, _ := legacy.StartTime()
	if ev := state.Adoptable(legacyStart, legacy.Summary); ev == nil || ev.ID != "l1" {
		t.Error("Expected legacy-tagged event to be adoptable")
	}
	foreignStart, _ := foreign.StartTime()
	if ev := state.Adoptable(foreignStart, foreign.Summary); ev == nil || ev.ID != "f1" {
		t.Error("Expected foreign event to be adoptable")
	}
	// Adoption consumes the slot.
	if ev := state.Adoptable(foreignStart, foreign.Summary); ev != nil {
		t.Error("Expected adoptable lookup to consume the event")
	}

	cancelledStart, _ := cancelled.StartTime()
	if ev := state.Adoptable(cancelledStart, cancelled.Summary); ev != nil {
		t.Error("Expected cancelled events to be ignored")
	}
}

func TestBuildPlanBuckets(t *testing.T) {
	now := time.Date(2025, 10, 19, 9, 0, 0, 0, time.UTC)

	mkBody := func(key, summary, start string) *gcal.Event {
		ev := &gcal.Event{Summary: summary, Start: &gcal.EventDateTime{DateTime: start}}
		ev.SetLessonKey(key)
		return ev
	}

	unchangedRemote := mkBody("v1:same", "Same (лекция)", "2025-10-20T09:00:00Z")
	unchangedRemote.ID = "same1"
	changedRemote := mkBody("v1:changed", "Changed OLD (лекция)", "2025-10-20T11:00:00Z")
	changedRemote.ID = "changed1"
	staleFuture := mkBody("v1:stale-future", "Stale (лекция)", "2025-10-25T11:00:00Z")
	staleFuture.ID = "stale1"
	stalePast := mkBody("v1:stale-past", "Stale (лекция)", "2024-01-10T09:00:00Z")
	stalePast.ID = "stale2"
	staleBroken := mkBody("v1:stale-broken", "Stale (лекция)", "")
	staleBroken.Start = nil
	staleBroken.ID = "stale3"

	adoptee := &gcal.Event{ID: "adoptee1", Summary: "Foreign (лекция)", Start: &gcal.EventDateTime{DateTime: "2025-10-20T13:00:00Z"}}
	adopteeStart, _ := adoptee.StartTime()

	remote := &RemoteState{
		ByKey: map[string]*gcal.Event{
			unchangedRemote.LessonKey(): unchangedRemote,
			changedRemote.LessonKey():   changedRemote,
			staleFuture.LessonKey():     staleFuture,
			stalePast.LessonKey():       stalePast,
			staleBroken.LessonKey():     staleBroken,
		},
		byTimeTitle: map[timeTitle]*gcal.Event{
			{adopteeStart.Unix(), adoptee.Summary}: adoptee,
		},
	}

	desired := []DesiredItem{
		{Key: "v1:same", Body: mkBody("v1:same", "Same (лекция)", "2025-10-20T09:00:00Z")},
		{Key: "v1:changed", Body: mkBody("v1:changed", "Changed NEW (лекция)", "2025-10-20T11:00:00Z")},
		{Key: "v1:adopt", Body: mkBody("v1:adopt", "Foreign (лекция)", "2025-10-20T13:00:00Z")},
		{Key: "v1:new", Body: mkBody("v1:new", "Brand New (лекция)", "2025-10-20T15:00:00Z")},
	}

	plan := BuildPlan(desired, remote, now)

	if len(plan.Unchanged) != 1 || plan.Unchanged[0] != "v1:same" {
		t.Errorf("Unexpected unchanged bucket: %v", plan.Unchanged)
	}
	if len(plan.Update) != 1 || plan.Update[0].RemoteID != "changed1" {
		t.Errorf("Unexpected update bucket: %+v", plan.Update)
	}
	if len(plan.Adopt) != 1 || plan.Adopt[0].RemoteID != "adoptee1" {
		t.Errorf("Unexpected adopt bucket: %+v", plan.Adopt)
	}
	if len(plan.Insert) != 1 || plan.Insert[0].Key != "v1:new" {
		t.Errorf("Unexpected insert bucket: %+v", plan.Insert)
	}
	if len(plan.Delete) != 1 || plan.Delete[0].ID != "stale1" {
		t.Errorf("Expected only the future stale event in delete, got %+v", plan.Delete)
	}
	if len(plan.SkippedPast) != 2 {
		t.Errorf("Expected past and broken-start events skipped, got %v", plan.SkippedPast)
	}
}
