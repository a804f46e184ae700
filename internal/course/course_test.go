package course_test

import (
	"errors"
	"strings"
	"testing"

	"coursepack/internal/course"
	"coursepack/internal/failures"
)

const sampleJSON = `{
  "title": "Gas Safety",
  "welcome": {"title": "Welcome", "body": "<p>Hi</p>", "audio_file": "audio-0"},
  "objectives": {"title": "Objectives", "objectives": ["Identify gases"]},
  "topics": [
    {
      "title": "Hydrocarbons",
      "body": "<p>CH4</p>",
      "media": [{"id": "img-1", "kind": "image", "locator": {"storage_id": "img-1"}}],
      "knowledge_check": {"questions": [
        {"type": "multiple-choice", "text": "Pick A", "options": ["A", "B"], "correct_index": 0}
      ]}
    },
    {
      "id": "t2",
      "title": "Reuse",
      "media": [{"id": "img-1", "kind": "image", "locator": {"storage_id": "img-1"}}]
    }
  ],
  "assessment": {"title": "Assessment", "questions": [
    {"type": "true-false", "text": "Methane is a gas", "correct_answer": "true"},
    {"type": "fill-in-the-blank", "text": "CH4 is ____", "correct_answer": "methane",
     "feedback": {"correct": "Yes", "incorrect": "No"}}
  ]}
}`

func TestParseJSONNormalizesIDs(t *testing.T) {
	doc, err := course.Parse([]byte(sampleJSON), course.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"welcome", "objectives", "topic-1", "t2", "assessment"}
	if got := doc.PageIDs(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected page ids %v", got)
	}
	if doc.Language != "en" {
		t.Fatalf("expected default language, got %q", doc.Language)
	}
	qs := doc.AssessmentQuestions()
	if len(qs) != 2 {
		t.Fatalf("expected two assessment questions, got %d", len(qs))
	}
	tf, ok := qs[0].(*course.TrueFalse)
	if !ok || !tf.Correct || tf.ID != "assessment-q1" {
		t.Fatalf("unexpected true-false question %#v", qs[0])
	}
	fill, ok := qs[1].(*course.FillInBlank)
	if !ok || fill.CorrectText != "methane" || fill.Feedback.Incorrect != "No" {
		t.Fatalf("unexpected fill-in question %#v", qs[1])
	}
	kc := doc.Topics[0].KnowledgeCheck.Questions[0].(*course.MultipleChoice)
	if kc.ID != "topic-1-kc1" || kc.CorrectIndex != 0 {
		t.Fatalf("unexpected knowledge check %#v", kc)
	}
}

func TestParseYAMLMatchesJSON(t *testing.T) {
	yamlDoc := `
title: Gas Safety
topics:
  - title: Hydrocarbons
    media:
      - id: vid-1
        locator:
          external_url: https://youtu.be/dQw4w9WgXcQ
    knowledge_check:
      questions:
        - type: multiple-choice
          text: Pick B
          options: [A, B]
          correct_answer: B
`
	doc, err := course.Parse([]byte(yamlDoc), course.FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	mc := doc.Topics[0].KnowledgeCheck.Questions[0].(*course.MultipleChoice)
	if mc.CorrectIndex != 1 {
		t.Fatalf("expected correct_answer to map to index 1, got %d", mc.CorrectIndex)
	}
	if doc.Topics[0].Media[0].Kind != course.KindUnknown {
		t.Fatalf("expected ambiguous kind to stay unknown")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	bad := `{
  "title": "",
  "topics": [
    {"title": "T", "media": [
      {"id": "m1", "locator": {"storage_id": "a", "external_url": "https://x/y.png"}},
      {"id": "m2", "kind": "hologram", "locator": {"storage_id": "b"}}
    ]},
    {"title": "U", "media": [{"id": "m2", "kind": "image", "locator": {"storage_id": "c"}}],
     "knowledge_check": {"questions": [{"type": "multiple-choice", "text": "?", "options": ["only"], "correct_index": 3}]}}
  ]
}`
	_, err := course.Parse([]byte(bad), course.FormatJSON)
	if !errors.Is(err, failures.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, fragment := range []string{"title is required", "exactly one of", "unsupported kind", "different resources", "at least two options"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestValidateRejectsNarrationKindConflicts(t *testing.T) {
	bad := `{
  "title": "x",
  "topics": [
    {"title": "T", "audio_file": "img-1", "caption_file": "shared",
     "media": [{"id": "img-1", "kind": "image", "locator": {"storage_id": "img-1"}}]},
    {"title": "U", "audio_file": "shared"}
  ]
}`
	_, err := course.Parse([]byte(bad), course.FormatJSON)
	if !errors.Is(err, failures.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, fragment := range []string{`audio file "img-1" is also referenced as image media`, `"shared" is used as both narration audio and captions`} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("expected %q in %q", fragment, err.Error())
		}
	}

	ok := `{"title": "x", "topics": [{"title": "T", "audio_file": "aud-1",
  "media": [{"id": "aud-1", "kind": "audio", "locator": {"storage_id": "aud-1"}}]}]}`
	if _, err := course.Parse([]byte(ok), course.FormatJSON); err != nil {
		t.Fatalf("matching kinds must validate: %v", err)
	}
}

func TestUnknownQuestionTypeRejected(t *testing.T) {
	doc := `{"title": "x", "topics": [{"title": "t", "knowledge_check": {"questions": [{"type": "essay", "text": "?"}]}}]}`
	if _, err := course.Parse([]byte(doc), course.FormatJSON); err == nil || !strings.Contains(err.Error(), "essay") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc, err := course.Parse([]byte(sampleJSON), course.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	clone := doc.Clone()
	clone.Topics[0].Media[0].ID = "changed"
	clone.Topics[0].KnowledgeCheck.Questions[0].(*course.MultipleChoice).Options[0] = "Z"
	clone.Welcome.Title = "Other"

	if doc.Topics[0].Media[0].ID != "img-1" {
		t.Fatal("clone shares media slice")
	}
	if doc.Topics[0].KnowledgeCheck.Questions[0].(*course.MultipleChoice).Options[0] != "A" {
		t.Fatal("clone shares question options")
	}
	if doc.Welcome.Title != "Welcome" {
		t.Fatal("clone shares welcome page")
	}
}

func TestMarshalRoundTripKeepsVariants(t *testing.T) {
	doc, err := course.Parse([]byte(sampleJSON), course.FormatJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := course.Marshal(doc, course.FormatYAML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := course.Parse(data, course.FormatYAML)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if _, ok := again.AssessmentQuestions()[1].(*course.FillInBlank); !ok {
		t.Fatalf("expected fill-in variant after round trip, got %T", again.AssessmentQuestions()[1])
	}
}
