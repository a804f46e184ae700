package mediastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coursepack/internal/course"
)

// Payload is one stored media resource.
type Payload struct {
	ID           string
	Kind         course.MediaKind
	MimeType     string
	OriginalName string
	SourceURL    string
	Data         []byte
}

// Entry describes a stored payload without its bytes.
type Entry struct {
	ID           string           `json:"id"`
	Kind         course.MediaKind `json:"kind,omitempty"`
	MimeType     string           `json:"mime_type,omitempty"`
	OriginalName string           `json:"original_name,omitempty"`
	SourceURL    string           `json:"source_url,omitempty"`
	Size         int64            `json:"size"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Store fetches payloads by id. A missing id yields an error matching
// failures.ErrNotFound.
type Store interface {
	Fetch(ctx context.Context, id string) (Payload, error)
}

// Catalog is implemented by backends the media CLI can write to.
type Catalog interface {
	Store
	Put(ctx context.Context, payload Payload) error
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

var errInvalidID = errors.New("invalid media id")

// ValidateID rejects ids that cannot be used as storage keys.
func ValidateID(id string) error {
	trimmed := strings.TrimSpace(id)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: empty", errInvalidID)
	case trimmed != id:
		return fmt.Errorf("%w: %q has surrounding whitespace", errInvalidID, id)
	case strings.ContainsAny(id, `/\`) || id == "." || id == "..":
		return fmt.Errorf("%w: %q contains a path element", errInvalidID, id)
	}
	return nil
}

func entryFor(p Payload, created time.Time) Entry {
	return Entry{
		ID:           p.ID,
		Kind:         p.Kind,
		MimeType:     p.MimeType,
		OriginalName: p.OriginalName,
		SourceURL:    p.SourceURL,
		Size:         int64(len(p.Data)),
		CreatedAt:    created,
	}
}
