package failures

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrArchive       = errors.New("archive assembly error")
	ErrStore         = errors.New("media store error")
	ErrCanceled      = errors.New("canceled")
	ErrMissing       = errors.New("missing resources")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrStore
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ResourceNotFound reports that the media store holds nothing for ID. It is a
// recoverable outcome: callers decide whether absence is fatal.
type ResourceNotFound struct {
	ID string
}

func (e *ResourceNotFound) Error() string {
	return fmt.Sprintf("resource %q not found", e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *ResourceNotFound) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound constructs a ResourceNotFound error.
func NotFound(id string) error {
	return &ResourceNotFound{ID: id}
}

// MissingResources aggregates every required id left unresolved by a build.
type MissingResources struct {
	IDs []string
}

// NewMissingResources returns a MissingResources error with sorted, unique
// ids, or nil when ids is empty.
func NewMissingResources(ids []string) error {
	unique := SortedUnique(ids)
	if len(unique) == 0 {
		return nil
	}
	return &MissingResources{IDs: unique}
}

func (e *MissingResources) Error() string {
	return fmt.Sprintf("missing %d required resource(s): %s", len(e.IDs), strings.Join(e.IDs, ", "))
}

func (e *MissingResources) Is(target error) bool {
	return target == ErrMissing
}

// FieldError describes one invalid manifest option.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// InvalidManifestOptions lists every malformed manifest option at once.
type InvalidManifestOptions struct {
	Fields []FieldError
}

func (e *InvalidManifestOptions) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "invalid manifest options: " + strings.Join(parts, "; ")
}

func (e *InvalidManifestOptions) Is(target error) bool {
	return target == ErrValidation
}

// FieldNames returns the offending field names in report order.
func (e *InvalidManifestOptions) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

// ArchiveAssemblyFailure wraps any failure raised while serializing the final
// archive buffer.
type ArchiveAssemblyFailure struct {
	Entry string
	Err   error
}

func (e *ArchiveAssemblyFailure) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("archive assembly failed: %v", e.Err)
	}
	return fmt.Sprintf("archive assembly failed at %s: %v", e.Entry, e.Err)
}

func (e *ArchiveAssemblyFailure) Unwrap() error { return e.Err }

func (e *ArchiveAssemblyFailure) Is(target error) bool {
	return target == ErrArchive
}

// IsTerminal reports whether err must abort a package build.
func IsTerminal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrMissing), errors.Is(err, ErrValidation), errors.Is(err, ErrArchive):
		return true
	default:
		return false
	}
}

// SortedUnique returns a sorted copy of values with blanks and duplicates
// removed.
func SortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
