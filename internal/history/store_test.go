package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coursepack/internal/history"
	"coursepack/internal/manifest"
	"coursepack/internal/testsupport"
)

func TestAddAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"First", "Second", "Third"} {
		pkg := manifest.New(title, "", "en", manifest.DefaultOptions())
		pkg.PageOrder = []string{"welcome", "topic-1"}
		rec := history.FromManifest(pkg, 1024*(i+1))
		rec.SessionID = "sess"
		rec.OutputPath = "/tmp/" + title + ".zip"
		rec.Duration = 1500 * time.Millisecond
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		added, err := store.Add(ctx, rec)
		if err != nil {
			t.Fatalf("Add %s: %v", title, err)
		}
		if added.ID == 0 {
			t.Fatalf("expected id for %s", title)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Title != "Third" || recent[1].Title != "Second" {
		t.Fatalf("unexpected recent order: %+v", recent)
	}
	got := recent[0]
	if got.PageCount != 2 || got.SizeBytes != 3072 || got.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected record fields: %+v", got)
	}
	if got.Identifier != manifest.CourseIdentifier("Third", "1.0") {
		t.Fatalf("unexpected identifier %q", got.Identifier)
	}
	if got.SourcePath != "" {
		t.Fatalf("expected empty source path, got %q", got.SourcePath)
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.Add(context.Background(), history.Record{SessionID: "s", Identifier: "course-x", Title: "X", Version: "1.0"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(cfg)
	if err != nil {
		if errors.Is(err, history.ErrSchemaMismatch) {
			t.Fatalf("unexpected schema mismatch: %v", err)
		}
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	recs, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 1 || recs[0].Identifier != "course-x" {
		t.Fatalf("unexpected records after reopen: %+v", recs)
	}
}
