package mediastore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"coursepack/internal/course"
	"coursepack/internal/failures"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current media database schema version.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SQLiteStore keeps payloads in a single SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the media database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure media db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Fetch loads a payload by id.
func (s *SQLiteStore) Fetch(ctx context.Context, id string) (Payload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, mime_type, original_name, source_url, data FROM media WHERE id = ?`, id)
	var (
		p                                   Payload
		kind, mimeType, origName, sourceURL sql.NullString
	)
	err := row.Scan(&p.ID, &kind, &mimeType, &origName, &sourceURL, &p.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Payload{}, failures.NotFound(id)
	}
	if err != nil {
		return Payload{}, failures.Wrap(failures.ErrStore, "mediastore", "fetch", id, err)
	}
	p.Kind = course.MediaKind(kind.String)
	p.MimeType = mimeType.String
	p.OriginalName = origName.String
	p.SourceURL = sourceURL.String
	return p, nil
}

// Put inserts or replaces a payload.
func (s *SQLiteStore) Put(ctx context.Context, p Payload) error {
	if err := ValidateID(p.ID); err != nil {
		return failures.Wrap(failures.ErrValidation, "mediastore", "put", "", err)
	}
	data := p.Data
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO media (id, kind, mime_type, original_name, source_url, size, data, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             kind = excluded.kind, mime_type = excluded.mime_type,
             original_name = excluded.original_name, source_url = excluded.source_url,
             size = excluded.size, data = excluded.data`,
		p.ID,
		nullableString(string(p.Kind)),
		nullableString(p.MimeType),
		nullableString(p.OriginalName),
		nullableString(p.SourceURL),
		len(data),
		data,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return failures.Wrap(failures.ErrStore, "mediastore", "put", p.ID, err)
	}
	return nil
}

// List returns every stored entry ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, mime_type, original_name, source_url, size, created_at FROM media ORDER BY id`)
	if err != nil {
		return nil, failures.Wrap(failures.ErrStore, "mediastore", "list", "", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                                   Entry
			kind, mimeType, origName, sourceURL sql.NullString
			created                             string
		)
		if err := rows.Scan(&e.ID, &kind, &mimeType, &origName, &sourceURL, &e.Size, &created); err != nil {
			return nil, failures.Wrap(failures.ErrStore, "mediastore", "list", "scan", err)
		}
		e.Kind = course.MediaKind(kind.String)
		e.MimeType = mimeType.String
		e.OriginalName = origName.String
		e.SourceURL = sourceURL.String
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, failures.Wrap(failures.ErrStore, "mediastore", "list", "iterate", err)
	}
	return entries, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: media database has version %d, expected %d (delete %s to rebuild it)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
