// Package sync is the reconciliation core: it derives the desired event set
// from freshly scraped lessons, reads the actual remote state over the
// covering window, and applies the minimal create/update/delete plan.
// The remote calendar is the single source of truth for "what exists"; no
// local snapshot of a previous run is ever trusted.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	gosync "sync"
	"time"

	"calsync/internal/domain"
	"calsync/internal/gcal"
	"calsync/internal/schedule"
)

// ErrSyncInFlight is returned when a reconciliation for the same calendar is
// already running. Callers treat it as a coalesced no-op.
var ErrSyncInFlight = errors.New("sync: reconciliation already in flight for this calendar")

type Engine struct {
	api     CalendarAPI
	loc     *time.Location
	tzName  string
	horizon time.Duration

	// now is replaceable in tests.
	now func() time.Time

	mu     gosync.Mutex
	active map[string]bool
}

func NewEngine(api CalendarAPI, loc *time.Location, tzName string, horizonDays int) *Engine {
	if horizonDays <= 0 {
		horizonDays = 180
	}
	return &Engine{
		api:     api,
		loc:     loc,
		tzName:  tzName,
		horizon: time.Duration(horizonDays) * 24 * time.Hour,
		now:     func() time.Time { return time.Now().In(loc) },
		active:  map[string]bool{},
	}
}

// BuildDesired normalizes raw lessons, applies exclusion rules and marks the
// first lesson of each day. Lessons with unparseable dates or time ranges
// are dropped and returned as errors; the run continues without them.
func BuildDesired(raws []domain.RawLesson, rules []domain.ExclusionRule, loc *time.Location) ([]domain.NormalizedLesson, []error) {
	var srcErrs []error
	lessons := make([]domain.NormalizedLesson, 0, len(raws))
	for _, raw := range raws {
		l, err := schedule.Normalize(raw, loc)
		if err != nil {
			srcErrs = append(srcErrs, err)
			continue
		}
		lessons = append(lessons, l)
	}
	lessons = schedule.Exclude(lessons, rules)
	schedule.MarkFirstOfDay(lessons)
	return lessons, srcErrs
}

// Reconcile runs one full reconciliation for a calendar: desired-set
// derivation, remote-state read, diff, apply. At most one run per calendar
// is in flight at a time; overlapping triggers get ErrSyncInFlight.
//
// A failed remote read aborts before any mutation. Per-item apply failures
// are counted in Summary.Failed and corrected on the next run.
func (e *Engine) Reconcile(ctx context.Context, calendarID string, raws []domain.RawLesson, rules []domain.ExclusionRule) (Summary, error) {
	if calendarID == "" {
		return Summary{}, fmt.Errorf("sync: empty calendar id")
	}
	if !e.tryAcquire(calendarID) {
		return Summary{}, ErrSyncInFlight
	}
	defer e.release(calendarID)

	desired, srcErrs := BuildDesired(raws, rules, e.loc)
	for _, err := range srcErrs {
		log.Printf("sync: dropping malformed lesson: %v", err)
	}

	now := e.now()
	items := e.desiredItems(desired, now)

	timeMin, timeMax := Window(desired, now, e.horizon)
	remote, err := FetchRemoteState(ctx, e.api, calendarID, timeMin, timeMax)
	if err != nil {
		return Summary{Failed: len(srcErrs)}, fmt.Errorf("sync: remote read: %w", err)
	}

	plan := BuildPlan(items, remote, now)
	sum, err := Apply(ctx, e.api, calendarID, plan, remote)
	sum.Failed += len(srcErrs)
	return sum, err
}

// desiredItems derives keys and event bodies in input order. A duplicated
// occurrence in the source (same key twice) keeps its first appearance.
func (e *Engine) desiredItems(desired []domain.NormalizedLesson, now time.Time) []DesiredItem {
	items := make([]DesiredItem, 0, len(desired))
	seen := make(map[string]bool, len(desired))
	for _, l := range desired {
		key := schedule.IdentityKey(l)
		if seen[key] {
			log.Printf("sync: duplicate occurrence in source, keeping first key=%s", key)
			continue
		}
		seen[key] = true
		items = append(items, DesiredItem{Key: key, Body: gcal.EventFromLesson(l, key, e.tzName, now)})
	}
	return items
}

func (e *Engine) tryAcquire(calendarID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active[calendarID] {
		return false
	}
	e.active[calendarID] = true
	return true
}

func (e *Engine) release(calendarID string) {
	e.mu.Lock()
	delete(e.active, calendarID)
	e.mu.Unlock()
}
