package runtimedoc

import (
	"errors"
	"fmt"
	"strings"

	"coursepack/internal/course"
)

const (
	DefaultCorrectFeedback   = "Correct!"
	DefaultIncorrectFeedback = "Incorrect."
)

// ErrAnswerType is returned when an answer does not match the question type.
var ErrAnswerType = errors.New("answer does not match question type")

// Visual is the feedback styling applied to a graded question.
type Visual string

const (
	VisualNone      Visual = ""
	VisualCorrect   Visual = "correct"
	VisualIncorrect Visual = "incorrect"
)

// Answer is a learner response. Set the field matching the question type.
type Answer struct {
	Choice *int
	Bool   *bool
	Text   *string
}

// ChoiceAnswer answers a multiple-choice question.
func ChoiceAnswer(i int) Answer { return Answer{Choice: &i} }

// BoolAnswer answers a true-false question.
func BoolAnswer(b bool) Answer { return Answer{Bool: &b} }

// TextAnswer answers a fill-in-the-blank question.
func TextAnswer(s string) Answer { return Answer{Text: &s} }

// QuestionState is what the learner sees for one question.
type QuestionState struct {
	QuestionID string
	Submitted  bool
	Correct    bool
	Disabled   bool
	Visual     Visual
	Feedback   string

	// SelectedIndex is the chosen option for choice questions, -1 otherwise.
	SelectedIndex int
	// RevealedIndex marks the correct option after a wrong choice, -1 otherwise.
	RevealedIndex int
	// DisplayValue is the text shown in a fill-in input.
	DisplayValue string
}

// Grader grades questions. The first submission of a question locks it and
// later submissions leave its state untouched.
type Grader struct {
	order     []string
	questions map[string]course.Question
	states    map[string]*QuestionState
}

// NewGrader tracks the given questions.
func NewGrader(questions course.QuestionList) *Grader {
	g := &Grader{
		questions: make(map[string]course.Question, len(questions)),
		states:    make(map[string]*QuestionState, len(questions)),
	}
	for _, q := range questions {
		g.order = append(g.order, q.QuestionID())
		g.questions[q.QuestionID()] = q
		g.states[q.QuestionID()] = &QuestionState{QuestionID: q.QuestionID(), SelectedIndex: -1, RevealedIndex: -1}
	}
	return g
}

// Submit grades answer for question id.
func (g *Grader) Submit(id string, answer Answer) (QuestionState, error) {
	q, ok := g.questions[id]
	if !ok {
		return QuestionState{}, fmt.Errorf("unknown question %q", id)
	}
	state := g.states[id]
	if state.Submitted {
		return *state, nil
	}

	var correct bool
	switch v := q.(type) {
	case *course.MultipleChoice:
		if answer.Choice == nil {
			return *state, fmt.Errorf("%w: %s wants a choice", ErrAnswerType, id)
		}
		state.SelectedIndex = *answer.Choice
		correct = *answer.Choice == v.CorrectIndex
		if !correct {
			state.RevealedIndex = v.CorrectIndex
		}
	case *course.TrueFalse:
		if answer.Bool == nil {
			return *state, fmt.Errorf("%w: %s wants true or false", ErrAnswerType, id)
		}
		choice := 1
		if *answer.Bool {
			choice = 0
		}
		state.SelectedIndex = choice
		correct = *answer.Bool == v.Correct
		if !correct {
			state.RevealedIndex = 1 - choice
		}
	case *course.FillInBlank:
		if answer.Text == nil {
			return *state, fmt.Errorf("%w: %s wants text", ErrAnswerType, id)
		}
		correct = MatchesBlank(*answer.Text, v.CorrectText)
		state.DisplayValue = *answer.Text
		if !correct {
			state.DisplayValue = v.CorrectText
		}
	default:
		return *state, fmt.Errorf("unsupported question %T", q)
	}

	state.Submitted = true
	state.Disabled = true
	state.Correct = correct
	state.Visual = VisualIncorrect
	if correct {
		state.Visual = VisualCorrect
	}
	state.Feedback = FeedbackText(q.AuthoredFeedback(), correct)
	return *state, nil
}

// MatchesBlank compares a fill-in answer with the expected text, trimmed and
// case-insensitive.
func MatchesBlank(answer, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(expected))
}

// FeedbackText returns the authored feedback or the default text.
func FeedbackText(fb course.Feedback, correct bool) string {
	if correct {
		if fb.Correct != "" {
			return fb.Correct
		}
		return DefaultCorrectFeedback
	}
	if fb.Incorrect != "" {
		return fb.Incorrect
	}
	return DefaultIncorrectFeedback
}

// State returns the current state of question id.
func (g *Grader) State(id string) (QuestionState, bool) {
	s, ok := g.states[id]
	if !ok {
		return QuestionState{}, false
	}
	return *s, true
}

// Answered reports whether every question in ids has been submitted.
func (g *Grader) Answered(ids ...string) bool {
	for _, id := range ids {
		if s, ok := g.states[id]; ok && !s.Submitted {
			return false
		}
	}
	return true
}

// Score returns correct and total counts over every tracked question.
func (g *Grader) Score() (correct, total int) {
	for _, id := range g.order {
		if g.states[id].Correct {
			correct++
		}
	}
	return correct, len(g.order)
}

// Percent returns correct / total * 100, or zero with no questions.
func (g *Grader) Percent() float64 {
	correct, total := g.Score()
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Passed reports whether the score meets passMark.
func (g *Grader) Passed(passMark int) bool {
	_, total := g.Score()
	if total == 0 {
		return true
	}
	return g.Percent() >= float64(passMark)
}

// Reset clears every question state, allowing a retake.
func (g *Grader) Reset() {
	for id := range g.states {
		g.states[id] = &QuestionState{QuestionID: id, SelectedIndex: -1, RevealedIndex: -1}
	}
}

// Complete reports whether every tracked question was submitted.
func (g *Grader) Complete() bool {
	return g.Answered(g.order...)
}
