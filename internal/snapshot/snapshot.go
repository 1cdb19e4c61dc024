// Package snapshot persists the desired schedule of a run as a compressed
// JSON artifact. It is an audit trail and a manual-recovery fallback only:
// the reconciler always diffs against live remote state and never reads a
// snapshot back during a run.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andybalholm/brotli"

	"calsync/internal/domain"
)

// Document is the on-disk shape of one snapshot.
type Document struct {
	TakenAt  time.Time                 `json:"taken_at"`
	Calendar string                    `json:"calendar"`
	Lessons  []domain.NormalizedLesson `json:"lessons"`
}

// Write dumps the desired set to path, brotli-compressed. The conventional
// extension is .json.br.
func Write(path, calendarID string, takenAt time.Time, lessons []domain.NormalizedLesson) error {
	doc := Document{TakenAt: takenAt, Calendar: calendarID, Lessons: lessons}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	defer f.Close()

	bw := brotli.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("snapshot: flush %s: %w", path, err)
	}
	return nil
}

// Read loads a snapshot back. Used by recovery tooling and tests, never by
// the reconciler.
func Read(path string) (Document, error) {
	var doc Document
	f, err := os.Open(path)
	if err != nil {
		return doc, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(brotli.NewReader(f))
	if err != nil {
		return doc, fmt.Errorf("snapshot: decompress %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}
	return doc, nil
}
