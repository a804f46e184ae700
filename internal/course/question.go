package course

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QuestionType is the discriminator of the question union.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypeTrueFalse      QuestionType = "true-false"
	TypeFillInBlank    QuestionType = "fill-in-the-blank"
)

// Feedback is the optional authored text shown after grading.
type Feedback struct {
	Correct   string `json:"correct,omitempty"`
	Incorrect string `json:"incorrect,omitempty"`
}

// Question is the closed union of assessment question variants. Only the
// types in this package implement it.
type Question interface {
	QuestionID() string
	Type() QuestionType
	Text() string
	AuthoredFeedback() Feedback
	isQuestion()
}

// MultipleChoice asks the learner to pick one option.
type MultipleChoice struct {
	ID           string
	Prompt       string
	Options      []string
	CorrectIndex int
	Feedback     Feedback
}

// TrueFalse asks for a boolean answer.
type TrueFalse struct {
	ID       string
	Prompt   string
	Correct  bool
	Feedback Feedback
}

// FillInBlank asks for free text compared case-insensitively after trimming.
type FillInBlank struct {
	ID          string
	Prompt      string
	CorrectText string
	Feedback    Feedback
}

func (q *MultipleChoice) QuestionID() string         { return q.ID }
func (q *MultipleChoice) Type() QuestionType         { return TypeMultipleChoice }
func (q *MultipleChoice) Text() string               { return q.Prompt }
func (q *MultipleChoice) AuthoredFeedback() Feedback { return q.Feedback }
func (*MultipleChoice) isQuestion()                  {}

func (q *TrueFalse) QuestionID() string         { return q.ID }
func (q *TrueFalse) Type() QuestionType         { return TypeTrueFalse }
func (q *TrueFalse) Text() string               { return q.Prompt }
func (q *TrueFalse) AuthoredFeedback() Feedback { return q.Feedback }
func (*TrueFalse) isQuestion()                  {}

func (q *FillInBlank) QuestionID() string         { return q.ID }
func (q *FillInBlank) Type() QuestionType         { return TypeFillInBlank }
func (q *FillInBlank) Text() string               { return q.Prompt }
func (q *FillInBlank) AuthoredFeedback() Feedback { return q.Feedback }
func (*FillInBlank) isQuestion()                  {}

// QuestionList is an ordered list of questions with discriminated JSON
// encoding.
type QuestionList []Question

// Clone deep-copies the list.
func (l QuestionList) Clone() QuestionList {
	if l == nil {
		return nil
	}
	out := make(QuestionList, len(l))
	for i, q := range l {
		switch v := q.(type) {
		case *MultipleChoice:
			cp := *v
			cp.Options = append([]string(nil), v.Options...)
			out[i] = &cp
		case *TrueFalse:
			cp := *v
			out[i] = &cp
		case *FillInBlank:
			cp := *v
			out[i] = &cp
		}
	}
	return out
}

func (l QuestionList) assignIDs(prefix string) {
	for i, q := range l {
		id := fmt.Sprintf("%s%d", prefix, i+1)
		switch v := q.(type) {
		case *MultipleChoice:
			if v.ID = strings.TrimSpace(v.ID); v.ID == "" {
				v.ID = id
			}
		case *TrueFalse:
			if v.ID = strings.TrimSpace(v.ID); v.ID == "" {
				v.ID = id
			}
		case *FillInBlank:
			if v.ID = strings.TrimSpace(v.ID); v.ID == "" {
				v.ID = id
			}
		}
	}
}

type questionWire struct {
	Type              QuestionType `json:"type"`
	ID                string       `json:"id,omitempty"`
	Text              string       `json:"text"`
	Options           []string     `json:"options,omitempty"`
	CorrectIndex      *int         `json:"correct_index,omitempty"`
	Correct           *bool        `json:"correct,omitempty"`
	CorrectText       string       `json:"correct_text,omitempty"`
	CorrectAnswer     string       `json:"correct_answer,omitempty"`
	Feedback          *Feedback    `json:"feedback,omitempty"`
	CorrectFeedback   string       `json:"correct_feedback,omitempty"`
	IncorrectFeedback string       `json:"incorrect_feedback,omitempty"`
}

// MarshalJSON encodes each question with its type discriminator.
func (l QuestionList) MarshalJSON() ([]byte, error) {
	wires := make([]questionWire, 0, len(l))
	for _, q := range l {
		w := questionWire{Type: q.Type(), ID: q.QuestionID(), Text: q.Text()}
		if fb := q.AuthoredFeedback(); fb != (Feedback{}) {
			w.Feedback = &fb
		}
		switch v := q.(type) {
		case *MultipleChoice:
			idx := v.CorrectIndex
			w.Options = v.Options
			w.CorrectIndex = &idx
		case *TrueFalse:
			correct := v.Correct
			w.Correct = &correct
		case *FillInBlank:
			w.CorrectText = v.CorrectText
		default:
			return nil, fmt.Errorf("question %q: unsupported variant %T", q.QuestionID(), q)
		}
		wires = append(wires, w)
	}
	return json.Marshal(wires)
}

// UnmarshalJSON decodes discriminated questions. It accepts the legacy
// correct_answer field for every variant.
func (l *QuestionList) UnmarshalJSON(data []byte) error {
	var wires []questionWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return err
	}
	out := make(QuestionList, 0, len(wires))
	for i, w := range wires {
		q, err := w.decode()
		if err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		out = append(out, q)
	}
	*l = out
	return nil
}

func (w questionWire) decode() (Question, error) {
	feedback := Feedback{Correct: w.CorrectFeedback, Incorrect: w.IncorrectFeedback}
	if w.Feedback != nil {
		feedback = *w.Feedback
	}
	answer := strings.TrimSpace(w.CorrectAnswer)

	switch QuestionType(strings.ToLower(strings.TrimSpace(string(w.Type)))) {
	case TypeMultipleChoice:
		q := &MultipleChoice{ID: w.ID, Prompt: w.Text, Options: w.Options, Feedback: feedback, CorrectIndex: -1}
		switch {
		case w.CorrectIndex != nil:
			q.CorrectIndex = *w.CorrectIndex
		case answer != "":
			for i, opt := range w.Options {
				if strings.EqualFold(strings.TrimSpace(opt), answer) {
					q.CorrectIndex = i
					break
				}
			}
		}
		return q, nil
	case TypeTrueFalse:
		q := &TrueFalse{ID: w.ID, Prompt: w.Text, Feedback: feedback}
		switch {
		case w.Correct != nil:
			q.Correct = *w.Correct
		case answer != "":
			parsed, err := strconv.ParseBool(strings.ToLower(answer))
			if err != nil {
				return nil, fmt.Errorf("true-false answer %q is not a boolean", answer)
			}
			q.Correct = parsed
		default:
			return nil, fmt.Errorf("true-false question %q has no answer", w.ID)
		}
		return q, nil
	case TypeFillInBlank, "fill-in-blank":
		text := w.CorrectText
		if text == "" {
			text = answer
		}
		return &FillInBlank{ID: w.ID, Prompt: w.Text, CorrectText: text, Feedback: feedback}, nil
	default:
		return nil, fmt.Errorf("unsupported question type %q", w.Type)
	}
}
