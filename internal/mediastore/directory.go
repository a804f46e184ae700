package mediastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"coursepack/internal/course"
	"coursepack/internal/failures"
)

const lockFileName = ".coursepack.lock"

// sidecar is the <id>.json metadata written next to each <id>.bin payload.
type sidecar struct {
	PageID       string `json:"page_id,omitempty"`
	Type         string `json:"type"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type,omitempty"`
	Source       string `json:"source,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`
	Title        string `json:"title,omitempty"`
}

// DirectoryStore reads payloads from a flat media directory.
type DirectoryStore struct {
	dir  string
	lock *flock.Flock
}

// OpenDirectory returns a store rooted at dir, creating it when absent.
func OpenDirectory(dir string) (*DirectoryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure media directory: %w", err)
	}
	return &DirectoryStore{dir: dir, lock: flock.New(filepath.Join(dir, lockFileName))}, nil
}

// Dir returns the store root.
func (s *DirectoryStore) Dir() string { return s.dir }

// Close releases nothing; directory stores hold no open handles between calls.
func (s *DirectoryStore) Close() error { return nil }

func (s *DirectoryStore) dataPath(id string) string { return filepath.Join(s.dir, id+".bin") }
func (s *DirectoryStore) metaPath(id string) string { return filepath.Join(s.dir, id+".json") }

// Fetch reads <id>.bin and its sidecar.
func (s *DirectoryStore) Fetch(ctx context.Context, id string) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	if ValidateID(id) != nil {
		return Payload{}, failures.NotFound(id)
	}
	data, err := os.ReadFile(s.dataPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return Payload{}, failures.NotFound(id)
	}
	if err != nil {
		return Payload{}, failures.Wrap(failures.ErrStore, "mediastore", "fetch", id, err)
	}
	meta, err := s.readSidecar(id)
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		ID:           id,
		Kind:         course.MediaKind(strings.ToLower(meta.Type)),
		MimeType:     meta.MimeType,
		OriginalName: meta.OriginalName,
		SourceURL:    meta.Source,
		Data:         data,
	}, nil
}

func (s *DirectoryStore) readSidecar(id string) (sidecar, error) {
	var meta sidecar
	raw, err := os.ReadFile(s.metaPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, failures.Wrap(failures.ErrStore, "mediastore", "read metadata", id, err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, failures.Wrap(failures.ErrStore, "mediastore", "decode metadata", id, err)
	}
	return meta, nil
}

// Put writes the payload and sidecar while holding the directory lock.
func (s *DirectoryStore) Put(ctx context.Context, p Payload) error {
	if err := ValidateID(p.ID); err != nil {
		return failures.Wrap(failures.ErrValidation, "mediastore", "put", "", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return failures.Wrap(failures.ErrStore, "mediastore", "put", "acquire directory lock", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	meta, err := json.MarshalIndent(sidecar{
		Type:         string(p.Kind),
		OriginalName: p.OriginalName,
		MimeType:     p.MimeType,
		Source:       p.SourceURL,
	}, "", "  ")
	if err != nil {
		return failures.Wrap(failures.ErrStore, "mediastore", "put", "encode metadata", err)
	}
	if err := writeFileAtomic(s.dataPath(p.ID), p.Data); err != nil {
		return failures.Wrap(failures.ErrStore, "mediastore", "put", p.ID, err)
	}
	if err := writeFileAtomic(s.metaPath(p.ID), meta); err != nil {
		return failures.Wrap(failures.ErrStore, "mediastore", "put", p.ID, err)
	}
	return nil
}

// List returns entries for every <id>.bin in the directory, ordered by id.
func (s *DirectoryStore) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, failures.Wrap(failures.ErrStore, "mediastore", "list", s.dir, err)
	}
	var entries []Entry
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := de.Name()
		if de.IsDir() || filepath.Ext(name) != ".bin" {
			continue
		}
		id := strings.TrimSuffix(name, ".bin")
		info, err := de.Info()
		if err != nil {
			return nil, failures.Wrap(failures.ErrStore, "mediastore", "list", name, err)
		}
		meta, err := s.readSidecar(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			ID:           id,
			Kind:         course.MediaKind(strings.ToLower(meta.Type)),
			MimeType:     meta.MimeType,
			OriginalName: meta.OriginalName,
			SourceURL:    meta.Source,
			Size:         info.Size(),
			CreatedAt:    info.ModTime().UTC(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
