package failures_test

import (
	"errors"
	"strings"
	"testing"

	"coursepack/internal/failures"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failures.Wrap(failures.ErrStore, "mediastore", "fetch", "read blob", base)
	if !errors.Is(err, failures.ErrStore) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	for _, fragment := range []string{"mediastore", "fetch", "read blob"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in error string %q", fragment, err.Error())
		}
	}
}

func TestResourceNotFoundMatchesMarker(t *testing.T) {
	err := failures.Wrap(failures.ErrStore, "resolver", "resolve", "", failures.NotFound("img-1"))
	if !errors.Is(err, failures.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in chain: %v", err)
	}
	var nf *failures.ResourceNotFound
	if !errors.As(err, &nf) || nf.ID != "img-1" {
		t.Fatalf("expected ResourceNotFound for img-1, got %#v", nf)
	}
	if failures.IsTerminal(err) {
		t.Fatal("resource miss must not be terminal")
	}
}

func TestMissingResourcesAggregatesSorted(t *testing.T) {
	err := failures.NewMissingResources([]string{"b", "a", "b", " "})
	var missing *failures.MissingResources
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingResources, got %v", err)
	}
	if got := strings.Join(missing.IDs, ","); got != "a,b" {
		t.Fatalf("unexpected ids %q", got)
	}
	if !failures.IsTerminal(err) {
		t.Fatal("missing resources should be terminal")
	}
	if failures.NewMissingResources(nil) != nil {
		t.Fatal("expected nil for empty id list")
	}
}

func TestInvalidManifestOptionsListsEveryField(t *testing.T) {
	err := &failures.InvalidManifestOptions{Fields: []failures.FieldError{
		{Field: "pass_mark", Message: "must be between 0 and 100"},
		{Field: "navigation_mode", Message: "unsupported value"},
	}}
	if !errors.Is(err, failures.ErrValidation) {
		t.Fatal("expected validation marker")
	}
	msg := err.Error()
	if !strings.Contains(msg, "pass_mark") || !strings.Contains(msg, "navigation_mode") {
		t.Fatalf("expected every field in message, got %q", msg)
	}
}

func TestArchiveAssemblyFailureUnwraps(t *testing.T) {
	base := errors.New("disk full")
	err := &failures.ArchiveAssemblyFailure{Entry: "index.html", Err: base}
	if !errors.Is(err, base) || !errors.Is(err, failures.ErrArchive) {
		t.Fatalf("expected both base and marker in chain: %v", err)
	}
}
