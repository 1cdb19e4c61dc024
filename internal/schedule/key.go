package schedule

import (
	"strings"

	"calsync/internal/domain"
)

// KeyPrefix versions the identity-key scheme. Remote events whose lesson_key
// property starts with this prefix are managed by this engine; anything else
// (legacy or foreign) is only ever adopted, never deleted.
const KeyPrefix = "v1:"

// PropLessonKey is the private extended-property name carrying the key on
// remote events.
const PropLessonKey = "lesson_key"

// IdentityKey derives the stable cross-run identity of a lesson from
// (date, start minute, cleaned title, lesson type). Teacher, room and link
// changes do not move the key; the same occurrence always maps to the same
// remote event.
func IdentityKey(l domain.NormalizedLesson) string {
	base := strings.Join([]string{l.DateKey(), l.StartHHMM(), l.Title, l.LessonType}, "|")
	return KeyPrefix + strings.ToLower(base)
}

// IsManagedKey reports whether a lesson_key value was written by this engine.
func IsManagedKey(k string) bool {
	return strings.HasPrefix(k, KeyPrefix)
}
