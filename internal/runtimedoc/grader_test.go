package runtimedoc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"coursepack/internal/course"
)

func TestGradeMultipleChoiceCorrectLocks(t *testing.T) {
	g := NewGrader(course.QuestionList{
		&course.MultipleChoice{ID: "q1", Prompt: "Pick", Options: []string{"A", "B"}, CorrectIndex: 0},
	})

	first, err := g.Submit("q1", ChoiceAnswer(0))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !first.Correct || first.Visual != VisualCorrect || !first.Disabled || first.Feedback != DefaultCorrectFeedback {
		t.Fatalf("unexpected state %+v", first)
	}

	again, err := g.Submit("q1", ChoiceAnswer(1))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("resubmission changed state (-first +again):\n%s", diff)
	}
}

func TestGradeFillInBlankWrongRevealsAnswer(t *testing.T) {
	g := NewGrader(course.QuestionList{
		&course.FillInBlank{ID: "q1", Prompt: "CH4 is ____", CorrectText: "methane"},
	})

	first, err := g.Submit("q1", TextAnswer("Propane"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := QuestionState{
		QuestionID:    "q1",
		Submitted:     true,
		Disabled:      true,
		Visual:        VisualIncorrect,
		Feedback:      DefaultIncorrectFeedback,
		SelectedIndex: -1,
		RevealedIndex: -1,
		DisplayValue:  "methane",
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("unexpected state (-want +got):\n%s", diff)
	}

	again, _ := g.Submit("q1", TextAnswer("methane"))
	if diff := cmp.Diff(first, again); diff != "" {
		t.Fatalf("resubmission changed state:\n%s", diff)
	}
}

func TestGradeFillInBlankNormalizes(t *testing.T) {
	g := NewGrader(course.QuestionList{
		&course.FillInBlank{ID: "q1", CorrectText: "methane", Feedback: course.Feedback{Correct: "Nice"}},
	})
	state, _ := g.Submit("q1", TextAnswer("  MeThAne "))
	if !state.Correct || state.Feedback != "Nice" || state.DisplayValue != "  MeThAne " {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestGradeTrueFalseAndWrongChoice(t *testing.T) {
	g := NewGrader(course.QuestionList{
		&course.TrueFalse{ID: "tf", Correct: false, Feedback: course.Feedback{Incorrect: "Nope"}},
		&course.MultipleChoice{ID: "mc", Options: []string{"A", "B", "C"}, CorrectIndex: 2},
	})
	tf, _ := g.Submit("tf", BoolAnswer(true))
	if tf.Correct || tf.Feedback != "Nope" || tf.RevealedIndex != 1 {
		t.Fatalf("unexpected true-false state %+v", tf)
	}
	mc, _ := g.Submit("mc", ChoiceAnswer(0))
	if mc.Correct || mc.RevealedIndex != 2 || mc.SelectedIndex != 0 {
		t.Fatalf("unexpected choice state %+v", mc)
	}
	if correct, total := g.Score(); correct != 0 || total != 2 {
		t.Fatalf("unexpected score %d/%d", correct, total)
	}
}

func TestGradeRejectsMismatchedAnswer(t *testing.T) {
	g := NewGrader(course.QuestionList{&course.TrueFalse{ID: "tf", Correct: true}})
	if _, err := g.Submit("tf", TextAnswer("true")); !errors.Is(err, ErrAnswerType) {
		t.Fatalf("expected ErrAnswerType, got %v", err)
	}
	if state, _ := g.State("tf"); state.Submitted {
		t.Fatal("mismatched answer must not lock the question")
	}
	if _, err := g.Submit("missing", BoolAnswer(true)); err == nil {
		t.Fatal("expected error for unknown question")
	}
}

func TestPassedUsesPercentOfTotal(t *testing.T) {
	qs := course.QuestionList{
		&course.TrueFalse{ID: "a", Correct: true},
		&course.TrueFalse{ID: "b", Correct: true},
		&course.TrueFalse{ID: "c", Correct: true},
		&course.TrueFalse{ID: "d", Correct: true},
		&course.TrueFalse{ID: "e", Correct: true},
	}
	g := NewGrader(qs)
	for _, id := range []string{"a", "b", "c", "d"} {
		_, _ = g.Submit(id, BoolAnswer(true))
	}
	_, _ = g.Submit("e", BoolAnswer(false))
	if !g.Passed(80) {
		t.Fatalf("4/5 should pass 80, got %.1f%%", g.Percent())
	}
	if g.Passed(81) {
		t.Fatal("4/5 should not pass 81")
	}
	g.Reset()
	if g.Complete() {
		t.Fatal("reset should clear submissions")
	}
}
