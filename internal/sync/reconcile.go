package sync

import (
	"context"
	"log"
	"time"

	"calsync/internal/gcal"
)

// BuildPlan classifies every desired item and every managed-but-undesired
// remote event. Pure; drives no API calls.
//
// Desired items: keyed match → unchanged or update by fingerprint; otherwise
// an adoptable (start, summary) match → adopt; otherwise insert.
//
// Managed remote events absent from the desired key set: delete when the
// start is still in the future, skip when it has already passed. History is
// never deleted or modified.
func BuildPlan(desired []DesiredItem, remote *RemoteState, now time.Time) Plan {
	var plan Plan

	desiredKeys := make(map[string]bool, len(desired))
	for _, it := range desired {
		desiredKeys[it.Key] = true
	}

	for _, it := range desired {
		if ex := remote.ByKey[it.Key]; ex != nil {
			if gcal.Fingerprint(ex) == gcal.Fingerprint(it.Body) {
				plan.Unchanged = append(plan.Unchanged, it.Key)
			} else {
				plan.Update = append(plan.Update, PlanItem{Key: it.Key, Body: it.Body, RemoteID: ex.ID})
			}
			continue
		}

		start, err := it.Body.StartTime()
		if err == nil {
			if ex := remote.Adoptable(start, it.Body.Summary); ex != nil {
				plan.Adopt = append(plan.Adopt, PlanItem{Key: it.Key, Body: it.Body, RemoteID: ex.ID})
				continue
			}
		}

		plan.Insert = append(plan.Insert, PlanItem{Key: it.Key, Body: it.Body})
	}

	for key, ev := range remote.ByKey {
		if desiredKeys[key] {
			continue
		}
		start, err := ev.StartTime()
		if err != nil || start.Before(now) {
			// Unparseable starts are treated as past: never delete what we
			// cannot place in time.
			plan.SkippedPast = append(plan.SkippedPast, key)
			continue
		}
		plan.Delete = append(plan.Delete, ev)
	}

	return plan
}

// Apply drives the remote mutator over a plan. Each call is isolated: one
// failure is counted and logged, and the run continues. The context is
// checked before each mutating call but never between the parts of a single
// item, so a cancelled run leaves no half-written event.
func Apply(ctx context.Context, api CalendarAPI, calendarID string, plan Plan, remote *RemoteState) (Summary, error) {
	sum := Summary{Unchanged: len(plan.Unchanged), SkippedPast: len(plan.SkippedPast)}

	for _, it := range plan.Insert {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if _, err := api.Insert(ctx, calendarID, it.Body); err != nil {
			if gcal.IsConflict(err) {
				// The event already exists remotely (e.g. created by a prior
				// run whose response was lost). Re-resolve its id and update
				// in place instead of re-sending the create.
				if id := conflictTarget(it, remote); id != "" {
					if _, uerr := api.Update(ctx, calendarID, id, it.Body); uerr == nil {
						sum.Updated++
						continue
					} else {
						log.Printf("sync: conflict fallback update failed key=%s: %v", it.Key, uerr)
						sum.Failed++
						continue
					}
				}
			}
			log.Printf("sync: insert failed key=%s: %v", it.Key, err)
			sum.Failed++
			continue
		}
		sum.Inserted++
	}

	for _, it := range plan.Adopt {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if _, err := api.Update(ctx, calendarID, it.RemoteID, it.Body); err != nil {
			log.Printf("sync: adopt failed key=%s event=%s: %v", it.Key, it.RemoteID, err)
			sum.Failed++
			continue
		}
		sum.Adopted++
	}

	for _, it := range plan.Update {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if _, err := api.Update(ctx, calendarID, it.RemoteID, it.Body); err != nil {
			log.Printf("sync: update failed key=%s event=%s: %v", it.Key, it.RemoteID, err)
			sum.Failed++
			continue
		}
		sum.Updated++
	}

	for _, ev := range plan.Delete {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := api.Delete(ctx, calendarID, ev.ID); err != nil {
			log.Printf("sync: delete failed key=%s event=%s: %v", ev.LessonKey(), ev.ID, err)
			sum.Failed++
			continue
		}
		sum.DeletedFuture++
	}

	return sum, nil
}

// conflictTarget finds the remote id an insert conflicted with: a keyed
// event read after the plan was built, or an event sitting on the same
// (start, summary) slot.
func conflictTarget(it PlanItem, remote *RemoteState) string {
	if ex := remote.ByKey[it.Key]; ex != nil {
		return ex.ID
	}
	start, err := it.Body.StartTime()
	if err != nil {
		return ""
	}
	if ex := remote.Adoptable(start, it.Body.Summary); ex != nil {
		return ex.ID
	}
	return ""
}
