package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"calsync/internal/sync"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Expected store to open, got %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	t0 := time.Date(2025, 10, 19, 9, 0, 0, 0, time.UTC)

	first := sync.Summary{Inserted: 3, Unchanged: 10}
	if err := store.Record(ctx, "cal@test", t0, t0.Add(time.Minute), first, nil); err != nil {
		t.Fatalf("Expected record to succeed, got %v", err)
	}
	second := sync.Summary{Failed: 1}
	if err := store.Record(ctx, "cal@test", t0.Add(time.Hour), t0.Add(time.Hour), second, errors.New("remote read: boom")); err != nil {
		t.Fatal(err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Expected query to succeed, got %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	// Most recent first.
	if runs[0].Summary != second || runs[0].Error == "" {
		t.Errorf("Unexpected newest run: %+v", runs[0])
	}
	if runs[1].Summary != first || runs[1].Error != "" {
		t.Errorf("Unexpected older run: %+v", runs[1])
	}
	if !runs[1].StartedAt.Equal(t0) {
		t.Errorf("Expected started_at preserved, got %v", runs[1].StartedAt)
	}
}
