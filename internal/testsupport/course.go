package testsupport

import (
	"testing"

	"coursepack/internal/course"
)

// SampleCourseJSON is a small course touching every page kind, media on two
// topics sharing img-1, narration audio and captions, and one question of
// each variant.
const SampleCourseJSON = `{
  "title": "Gas Safety",
  "description": "Handling common industrial gases",
  "welcome": {"title": "Welcome", "body": "<p>Welcome aboard</p>", "start_button_text": "Begin"},
  "objectives": {"title": "Objectives", "objectives": ["Identify hydrocarbons", "Store cylinders safely"]},
  "topics": [
    {
      "title": "Hydrocarbons",
      "body": "<p>CH<sub>4</sub> is methane.</p><script>alert(1)</script>",
      "narration": "Methane is the simplest hydrocarbon.",
      "audio_file": "audio-1",
      "caption_file": "caption-1",
      "media": [
        {"id": "img-1", "kind": "image", "locator": {"storage_id": "img-1"}, "title": "Molecule"},
        {"id": "vid-1", "locator": {"external_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}}
      ],
      "knowledge_check": {"questions": [
        {"type": "multiple-choice", "text": "Which is methane?", "options": ["CH4", "C3H8"], "correct_index": 0}
      ]}
    },
    {
      "title": "Storage",
      "body": "<p>Keep cylinders upright.</p>",
      "media": [{"id": "img-1", "kind": "image", "locator": {"storage_id": "img-1"}}]
    }
  ],
  "assessment": {"title": "Assessment", "questions": [
    {"type": "true-false", "text": "Methane is lighter than air.", "correct": true},
    {"type": "fill-in-the-blank", "text": "CH4 is called ____.", "correct_text": "methane"}
  ]}
}`

// SampleDocument parses SampleCourseJSON.
func SampleDocument(t testing.TB) *course.Document {
	t.Helper()

	doc, err := course.Parse([]byte(SampleCourseJSON), course.FormatJSON)
	if err != nil {
		t.Fatalf("parse sample course: %v", err)
	}
	return doc
}
