package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"calsync/internal/domain"
)

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.json.br")

	loc := time.UTC
	lessons := []domain.NormalizedLesson{
		{
			Title:      "Алгебра",
			LessonType: "лекция",
			Teacher:    "Иванов",
			Location:   "1501",
			Start:      time.Date(2025, 10, 20, 18, 30, 0, 0, loc),
			End:        time.Date(2025, 10, 20, 20, 0, 0, 0, loc),
		},
	}
	takenAt := time.Date(2025, 10, 19, 9, 0, 0, 0, loc)

	if err := Write(path, "cal@test", takenAt, lessons); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	doc, err := Read(path)
	if err != nil {
		t.Fatalf("Expected readable snapshot, got %v", err)
	}
	if doc.Calendar != "cal@test" {
		t.Errorf("Expected calendar id back, got %q", doc.Calendar)
	}
	if !doc.TakenAt.Equal(takenAt) {
		t.Errorf("Expected taken_at back, got %v", doc.TakenAt)
	}
	if len(doc.Lessons) != 1 || doc.Lessons[0].Title != "Алгебра" {
		t.Errorf("Unexpected lessons: %+v", doc.Lessons)
	}
	if !doc.Lessons[0].Start.Equal(lessons[0].Start) {
		t.Errorf("Expected start instant preserved, got %v", doc.Lessons[0].Start)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.json.br")); err == nil {
		t.Error("Expected error for missing snapshot")
	}
}
