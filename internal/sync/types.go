package sync

import (
	"fmt"

	"calsync/internal/gcal"
)

// DesiredItem is one lesson of the desired set with its derived identity and
// the event body that should exist remotely.
type DesiredItem struct {
	Key  string
	Body *gcal.Event
}

// PlanItem is one pending mutation. RemoteID is set for adopt/update items.
type PlanItem struct {
	Key      string
	Body     *gcal.Event
	RemoteID string
}

// Plan is the output of the diff step: disjoint buckets over identity keys.
type Plan struct {
	// Insert: desired, no keyed match, no adoptable match.
	Insert []PlanItem
	// Adopt: desired, matched an untagged/legacy event by (start, summary);
	// apply tags it with the key and reconciles content.
	Adopt []PlanItem
	// Update: keyed match with a differing content fingerprint.
	Update []PlanItem
	// Unchanged: keyed match, identical fingerprint. No call.
	Unchanged []string
	// Delete: managed remotely, absent from the desired set, starts in the
	// future.
	Delete []*gcal.Event
	// SkippedPast: managed remotely, absent from the desired set, already
	// started. Historical; never touched.
	SkippedPast []string
}

// Summary is the only externally observable result of a run.
type Summary struct {
	Inserted     int `json:"inserted"`
	Adopted      int `json:"adopted"`
	Updated      int `json:"updated"`
	Unchanged    int `json:"unchanged"`
	DeletedFuture int `json:"deleted_future"`
	SkippedPast  int `json:"skipped_past"`
	Failed       int `json:"failed"`
}

func (s Summary) String() string {
	return fmt.Sprintf("inserted=%d adopted=%d updated=%d unchanged=%d deleted_future=%d skipped_past=%d failed=%d",
		s.Inserted, s.Adopted, s.Updated, s.Unchanged, s.DeletedFuture, s.SkippedPast, s.Failed)
}

// Mutations is the number of calls a run actually made (or would make).
func (s Summary) Mutations() int {
	return s.Inserted + s.Adopted + s.Updated + s.DeletedFuture
}
