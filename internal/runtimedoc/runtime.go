package runtimedoc

import (
	"errors"

	"coursepack/internal/course"
	"coursepack/internal/enhance"
	"coursepack/internal/manifest"
)

// SCORM 1.2 cmi.core.lesson_status values.
const (
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
	StatusPassed     = "passed"
	StatusFailed     = "failed"
)

// ErrRetakeNotAllowed is returned by Retake when the package forbids it.
var ErrRetakeNotAllowed = errors.New("assessment retake not allowed")

// Runtime combines navigation and grading for one learner attempt.
type Runtime struct {
	Nav        *Navigator
	Checks     *Grader
	Assessment *Grader

	opts       manifest.Options
	pageChecks map[string][]string
}

// NewRuntime starts an attempt at doc.
func NewRuntime(doc *enhance.Document, opts manifest.Options) (*Runtime, error) {
	nav, err := NewNavigator(doc.PageIDs(), opts.NavigationMode)
	if err != nil {
		return nil, err
	}
	var checks course.QuestionList
	pageChecks := make(map[string][]string)
	for _, page := range doc.Pages {
		if page.KnowledgeCheck == nil {
			continue
		}
		for _, q := range page.KnowledgeCheck.Questions {
			checks = append(checks, q)
			pageChecks[page.ID] = append(pageChecks[page.ID], q.QuestionID())
		}
	}
	r := &Runtime{
		Nav:        nav,
		Checks:     NewGrader(checks),
		Assessment: NewGrader(doc.Questions),
		opts:       opts,
		pageChecks: pageChecks,
	}
	nav.SetGate(func(pageID string) bool {
		return r.Checks.Answered(r.pageChecks[pageID]...)
	})
	return r, nil
}

// Completed applies the completion criteria.
func (r *Runtime) Completed() bool {
	if r.opts.CompletionCriteria == manifest.CompletionPassAssessment {
		return r.Assessment.Complete() && r.Assessment.Passed(r.opts.PassMark)
	}
	return r.Nav.VisitedAll()
}

// LessonStatus returns the status reported to the LMS.
func (r *Runtime) LessonStatus() string {
	if r.opts.CompletionCriteria == manifest.CompletionPassAssessment {
		if !r.Assessment.Complete() {
			return StatusIncomplete
		}
		if r.Assessment.Passed(r.opts.PassMark) {
			return StatusPassed
		}
		return StatusFailed
	}
	if r.Nav.VisitedAll() {
		return StatusCompleted
	}
	return StatusIncomplete
}

// Retake clears the assessment after a failed attempt.
func (r *Runtime) Retake() error {
	if !r.opts.AllowRetake {
		return ErrRetakeNotAllowed
	}
	r.Assessment.Reset()
	return nil
}
