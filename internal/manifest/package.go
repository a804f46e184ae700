package manifest

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// SchemaVersion is the version of the coursepack JSON manifest layout.
const SchemaVersion = 1

// SCORMVersion is the SCORM edition every package targets.
const SCORMVersion = "1.2"

// courseNamespace seeds deterministic course identifiers.
var courseNamespace = uuid.MustParse("5f0c2a7e-8a3b-5d6c-9e41-2b7f3c1d8a90")

// CourseIdentifier derives a stable identifier from the course title and
// package version so rebuilding the same course yields the same id.
func CourseIdentifier(title, version string) string {
	name := strings.TrimSpace(title) + "\x00" + strings.TrimSpace(version)
	return "course-" + uuid.NewSHA1(courseNamespace, []byte(name)).String()
}

// Resource is one deduplicated entry of the resource table.
type Resource struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	MimeType    string `json:"mime_type,omitempty"`
	Href        string `json:"href,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// External reports whether the resource is embedded from a host instead of
// packaged.
func (r Resource) External() bool { return r.ExternalURL != "" }

// Page lists the resources one page uses, by id.
type Page struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Title     string   `json:"title"`
	Resources []string `json:"resources"`
}

// Package is the manifest of a built course package.
type Package struct {
	SchemaVersion      int                `json:"schema_version"`
	SCORMVersion       string             `json:"scorm_version"`
	Identifier         string             `json:"identifier"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	Language           string             `json:"language,omitempty"`
	Version            string             `json:"version"`
	NavigationMode     NavigationMode     `json:"navigation_mode"`
	CompletionCriteria CompletionCriteria `json:"completion_criteria"`
	PassMark           int                `json:"pass_mark"`
	TimeLimitSeconds   int64              `json:"time_limit_seconds,omitempty"`
	AllowRetake        bool               `json:"allow_retake"`
	PageOrder          []string           `json:"page_order"`
	Pages              []Page             `json:"pages"`
	Resources          []Resource         `json:"resources"`
}

// New returns an empty manifest carrying the options and course identity.
func New(title, description, language string, opts Options) Package {
	return Package{
		SchemaVersion:      SchemaVersion,
		SCORMVersion:       SCORMVersion,
		Identifier:         CourseIdentifier(title, opts.Version),
		Title:              title,
		Description:        description,
		Language:           language,
		Version:            opts.Version,
		NavigationMode:     opts.NavigationMode,
		CompletionCriteria: opts.CompletionCriteria,
		PassMark:           opts.PassMark,
		TimeLimitSeconds:   int64(opts.TimeLimit.Seconds()),
		AllowRetake:        opts.AllowRetake,
	}
}

// Resource returns the resource with the given id.
func (p *Package) Resource(id string) (Resource, bool) {
	for _, r := range p.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// Hrefs returns the packaged file paths in resource order.
func (p *Package) Hrefs() []string {
	var hrefs []string
	for _, r := range p.Resources {
		if r.Href != "" {
			hrefs = append(hrefs, r.Href)
		}
	}
	return hrefs
}

// MarshalIndented encodes the manifest as indented JSON with a trailing
// newline.
func (p *Package) MarshalIndented() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON manifest.
func Decode(data []byte) (Package, error) {
	var p Package
	err := json.Unmarshal(data, &p)
	return p, err
}
