package manifest

import (
	"fmt"
	"strings"
	"time"

	"coursepack/internal/config"
	"coursepack/internal/failures"
)

// NavigationMode controls how learners move between pages.
type NavigationMode string

const (
	NavigationLinear NavigationMode = "linear"
	NavigationFree   NavigationMode = "free"
)

// CompletionCriteria decides when the course counts as completed.
type CompletionCriteria string

const (
	CompletionViewAll        CompletionCriteria = "view-all"
	CompletionPassAssessment CompletionCriteria = "pass-assessment"
)

// Options configure the runtime behaviour baked into a package.
type Options struct {
	NavigationMode     NavigationMode     `json:"navigation_mode"`
	CompletionCriteria CompletionCriteria `json:"completion_criteria"`
	PassMark           int                `json:"pass_mark"`
	TimeLimit          time.Duration      `json:"time_limit,omitempty"`
	Version            string             `json:"version"`
	AllowRetake        bool               `json:"allow_retake"`
}

// DefaultOptions returns linear navigation, view-all completion and an 80%
// pass mark.
func DefaultOptions() Options {
	return Options{
		NavigationMode:     NavigationLinear,
		CompletionCriteria: CompletionViewAll,
		PassMark:           80,
		Version:            "1.0",
		AllowRetake:        true,
	}
}

// OptionsFromConfig maps the [package] config section to Options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		NavigationMode:     NavigationMode(cfg.Package.NavigationMode),
		CompletionCriteria: CompletionCriteria(cfg.Package.CompletionCriteria),
		PassMark:           cfg.Package.PassMark,
		TimeLimit:          cfg.TimeLimit(),
		Version:            cfg.Package.Version,
		AllowRetake:        cfg.Package.AllowRetake,
	}
}

// Validate reports every invalid field in one InvalidManifestOptions error.
func (o Options) Validate() error {
	var fields []failures.FieldError
	add := func(field, format string, args ...any) {
		fields = append(fields, failures.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch o.NavigationMode {
	case NavigationLinear, NavigationFree:
	default:
		add("navigation_mode", "must be %q or %q, got %q", NavigationLinear, NavigationFree, o.NavigationMode)
	}
	switch o.CompletionCriteria {
	case CompletionViewAll, CompletionPassAssessment:
	default:
		add("completion_criteria", "must be %q or %q, got %q", CompletionViewAll, CompletionPassAssessment, o.CompletionCriteria)
	}
	if o.PassMark < 0 || o.PassMark > 100 {
		add("pass_mark", "must be between 0 and 100, got %d", o.PassMark)
	}
	if o.TimeLimit < 0 {
		add("time_limit", "must not be negative, got %s", o.TimeLimit)
	}
	if strings.TrimSpace(o.Version) == "" {
		add("version", "must not be empty")
	}

	if len(fields) == 0 {
		return nil
	}
	return &failures.InvalidManifestOptions{Fields: fields}
}
