package stage_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"coursepack/internal/stage"
	"coursepack/internal/testsupport"
)

func TestParseRoundTrip(t *testing.T) {
	for _, s := range stage.All() {
		parsed, err := stage.Parse(" " + s.String() + " ")
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if parsed != s {
			t.Fatalf("Parse(%q) = %v", s, parsed)
		}
	}
	if _, err := stage.Parse("final"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
	if got, _ := stage.Parse("SCORM"); got != stage.SCORM {
		t.Fatalf("expected case-insensitive parse, got %v", got)
	}
}

func TestStagesOrdered(t *testing.T) {
	all := stage.All()
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Fatalf("stages out of order: %v >= %v", all[i-1], all[i])
		}
	}
}

func TestProjectVisibility(t *testing.T) {
	doc := testsupport.SampleDocument(t)

	tests := []struct {
		stage          stage.Stage
		media          bool
		audio          bool
		narration      bool
		knowledgeCheck bool
		assessment     bool
	}{
		{stage.Seed, false, false, false, false, false},
		{stage.Prompt, false, false, false, false, false},
		{stage.JSON, false, false, true, true, false},
		{stage.Media, true, false, true, true, false},
		{stage.Audio, true, true, true, true, false},
		{stage.SCORM, true, true, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			got := stage.Project(doc, tt.stage)
			topic := got.Topics[0]
			if (len(topic.Media) > 0) != tt.media {
				t.Errorf("media visible = %v", len(topic.Media) > 0)
			}
			if (topic.AudioFile != "" && topic.CaptionFile != "") != tt.audio {
				t.Errorf("audio visible = %v", topic.AudioFile != "")
			}
			if (topic.Narration != "") != tt.narration {
				t.Errorf("narration visible = %v", topic.Narration != "")
			}
			if (topic.KnowledgeCheck != nil) != tt.knowledgeCheck {
				t.Errorf("knowledge check visible = %v", topic.KnowledgeCheck != nil)
			}
			if (len(got.AssessmentQuestions()) > 0) != tt.assessment {
				t.Errorf("assessment visible = %v", len(got.AssessmentQuestions()) > 0)
			}
			if !cmp.Equal(got.PageIDs(), doc.PageIDs()) {
				t.Errorf("page ids changed: %v", got.PageIDs())
			}
			if got.Objectives == nil || len(got.Objectives.Objectives) != 2 {
				t.Errorf("objectives list must survive every stage")
			}
		})
	}
}

func TestProjectIsIdempotentAndPure(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	before := doc.Clone()

	for _, s := range stage.All() {
		once := stage.Project(doc, s)
		twice := stage.Project(once, s)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("projection at %s not idempotent (-once +twice):\n%s", s, diff)
		}
	}
	if diff := cmp.Diff(before, doc); diff != "" {
		t.Fatalf("Project mutated its input:\n%s", diff)
	}
}

func TestProjectDoesNotAlias(t *testing.T) {
	doc := testsupport.SampleDocument(t)
	projected := stage.Project(doc, stage.SCORM)
	projected.Topics[0].Media[0].ID = "changed"
	if doc.Topics[0].Media[0].ID != "img-1" {
		t.Fatal("projection shares media slices with the input")
	}
}
