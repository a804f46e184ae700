package manifest_test

import (
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"coursepack/internal/failures"
	"coursepack/internal/manifest"
	"coursepack/internal/testsupport"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := manifest.DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
}

func TestValidateRejectsPassMarkAbove100(t *testing.T) {
	opts := manifest.DefaultOptions()
	opts.PassMark = 150
	err := opts.Validate()
	var invalid *failures.InvalidManifestOptions
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidManifestOptions, got %v", err)
	}
	if diff := cmp.Diff([]string{"pass_mark"}, invalid.FieldNames()); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
	if !errors.Is(err, failures.ErrValidation) {
		t.Fatal("expected validation marker")
	}
}

func TestValidateListsEveryField(t *testing.T) {
	opts := manifest.Options{
		NavigationMode:     "sideways",
		CompletionCriteria: "vibes",
		PassMark:           -1,
		TimeLimit:          -time.Minute,
	}
	var invalid *failures.InvalidManifestOptions
	if !errors.As(opts.Validate(), &invalid) {
		t.Fatal("expected InvalidManifestOptions")
	}
	want := []string{"navigation_mode", "completion_criteria", "pass_mark", "time_limit", "version"}
	if diff := cmp.Diff(want, invalid.FieldNames()); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPassMark(65), testsupport.WithNavigationMode("free"))
	cfg.Package.TimeLimitMinutes = 30
	opts := manifest.OptionsFromConfig(cfg)
	if opts.PassMark != 65 || opts.NavigationMode != manifest.NavigationFree || opts.TimeLimit != 30*time.Minute {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestCourseIdentifierDeterministic(t *testing.T) {
	a := manifest.CourseIdentifier("Gas Safety", "1.0")
	b := manifest.CourseIdentifier(" Gas Safety ", "1.0")
	c := manifest.CourseIdentifier("Gas Safety", "1.1")
	if a != b {
		t.Fatalf("expected identifiers to ignore surrounding whitespace: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("expected version to change identifier")
	}
	if !strings.HasPrefix(a, "course-") {
		t.Fatalf("unexpected identifier %q", a)
	}
}

func TestSCORM12Manifest(t *testing.T) {
	opts := manifest.DefaultOptions()
	opts.CompletionCriteria = manifest.CompletionPassAssessment
	opts.PassMark = 70
	opts.TimeLimit = 90 * time.Minute
	pkg := manifest.New("Gas & Safety", "", "en", opts)

	data, err := manifest.SCORM12(pkg, []string{"course-manifest.json", "index.html", "media/img-1.png"})
	if err != nil {
		t.Fatalf("SCORM12: %v", err)
	}
	text := string(data)
	for _, fragment := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`xmlns="http://www.imsproject.org/xsd/imscp_rootv1p1p2"`,
		`<schemaversion>1.2</schemaversion>`,
		`adlcp:scormtype="sco"`,
		`<adlcp:masteryscore>70</adlcp:masteryscore>`,
		`<adlcp:maxtimeallowed>0001:30:00</adlcp:maxtimeallowed>`,
		`<file href="media/img-1.png"></file>`,
		`Gas &amp; Safety`,
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("manifest missing %q:\n%s", fragment, text)
		}
	}

	var parsed struct {
		Identifier string `xml:"identifier,attr"`
	}
	if err := xml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("manifest is not well formed: %v", err)
	}
	if parsed.Identifier != pkg.Identifier {
		t.Fatalf("identifier mismatch: %q vs %q", parsed.Identifier, pkg.Identifier)
	}
}

func TestSCORM12OmitsMasteryForViewAll(t *testing.T) {
	pkg := manifest.New("Course", "", "en", manifest.DefaultOptions())
	data, err := manifest.SCORM12(pkg, nil)
	if err != nil {
		t.Fatalf("SCORM12: %v", err)
	}
	if strings.Contains(string(data), "masteryscore") || strings.Contains(string(data), "maxtimeallowed") {
		t.Fatalf("unexpected mastery or time limit:\n%s", data)
	}
}

func TestPackageJSONRoundTrip(t *testing.T) {
	pkg := manifest.New("Course", "desc", "en", manifest.DefaultOptions())
	pkg.PageOrder = []string{"welcome", "topic-1"}
	pkg.Resources = []manifest.Resource{{ID: "img-1", Kind: "image", Href: "media/img-1.png", Size: 10}}
	data, err := pkg.MarshalIndented()
	if err != nil {
		t.Fatalf("MarshalIndented: %v", err)
	}
	decoded, err := manifest.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(pkg, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
