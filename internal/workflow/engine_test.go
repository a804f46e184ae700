package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"go.uber.org/goleak"

	"coursepack/internal/config"
	"coursepack/internal/failures"
	"coursepack/internal/history"
	"coursepack/internal/manifest"
	"coursepack/internal/mediastore"
	"coursepack/internal/stage"
	"coursepack/internal/testsupport"
	"coursepack/internal/workflow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func seedStore(t *testing.T, cfg *config.Config) mediastore.Catalog {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	for _, p := range []mediastore.Payload{
		testsupport.Image("img-1"),
		testsupport.Audio("audio-1"),
		testsupport.Caption("caption-1"),
	} {
		if err := store.Put(context.Background(), p); err != nil {
			t.Fatalf("Put %s: %v", p.ID, err)
		}
	}
	return store
}

func TestBuildWritesArchiveAndHistory(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendDirectory} {
		t.Run(backend, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithBackend(backend))
			store := seedStore(t, cfg)
			hist, err := history.Open(cfg)
			if err != nil {
				t.Fatalf("history.Open: %v", err)
			}
			t.Cleanup(func() { _ = hist.Close() })

			engine := workflow.NewEngine(cfg, store, nil, workflow.WithHistory(hist))
			out := filepath.Join(cfg.Paths.OutputDir, "gas-safety.zip")
			res, err := engine.Build(context.Background(), workflow.BuildRequest{
				Document:   testsupport.SampleDocument(t),
				Options:    manifest.OptionsFromConfig(cfg),
				SourcePath: "course.json",
				OutputPath: out,
			})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			written, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("read archive: %v", err)
			}
			if !bytes.Equal(written, res.Package.Buffer) {
				t.Fatal("written archive differs from build buffer")
			}
			if _, err := os.Stat(out + ".lock"); !os.IsNotExist(err) {
				t.Fatalf("expected lock file removed, got %v", err)
			}

			recs, err := hist.Recent(context.Background(), 5)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(recs) != 1 || recs[0].SessionID != res.SessionID || recs[0].OutputPath != out {
				t.Fatalf("unexpected history: %+v", recs)
			}
			if recs[0].ResourceCount != 4 {
				t.Fatalf("expected 4 resources recorded, got %d", recs[0].ResourceCount)
			}
		})
	}
}

func TestBuildSessionsAreIndependent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mediastore.NewMemory(testsupport.Image("img-1"), testsupport.Audio("audio-1"), testsupport.Caption("caption-1"))
	engine := workflow.NewEngine(cfg, store, nil)

	first, err := engine.Build(context.Background(), workflow.BuildRequest{Document: testsupport.SampleDocument(t), Options: manifest.DefaultOptions()})
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := engine.Build(context.Background(), workflow.BuildRequest{Document: testsupport.SampleDocument(t), Options: manifest.DefaultOptions()})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if first.SessionID == second.SessionID {
		t.Fatal("expected distinct session ids")
	}
	if store.Fetches("img-1") != 2 {
		t.Fatalf("expected each session to fetch img-1 once, got %d", store.Fetches("img-1"))
	}
	if !bytes.Equal(first.Package.Buffer, second.Package.Buffer) {
		t.Fatal("expected identical archives across sessions")
	}
}

func TestBuildInvalidOptionsTouchNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mediastore.NewMemory(testsupport.Image("img-1"))
	opts := manifest.DefaultOptions()
	opts.PassMark = -1
	out := filepath.Join(cfg.Paths.OutputDir, "bad.zip")

	_, err := workflow.NewEngine(cfg, store, nil).Build(context.Background(), workflow.BuildRequest{
		Document:   testsupport.SampleDocument(t),
		Options:    opts,
		OutputPath: out,
	})
	if !errors.Is(err, failures.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.TotalFetches() != 0 {
		t.Fatalf("expected no fetches, got %d", store.TotalFetches())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no archive written, got %v", err)
	}
}

func TestPreviewRendersStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := mediastore.NewMemory(testsupport.Image("img-1"))
	res, err := workflow.NewEngine(cfg, store, nil).Preview(context.Background(), testsupport.SampleDocument(t), stage.Media, manifest.DefaultOptions())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if res.Stage != stage.Media {
		t.Fatalf("unexpected stage %s", res.Stage)
	}
	if !strings.Contains(string(res.HTML), "data:image/png;base64,") {
		t.Fatal("expected inlined image in preview")
	}
}

func TestWriteArchiveRefusesConcurrentWriter(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "course.zip")
	holder := flock.New(testsupport.WriteFile(t, out+".lock", nil))
	if err := holder.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer func() { _ = holder.Unlock() }()

	if err := workflow.WriteArchive(out, []byte("zip")); err == nil {
		t.Fatal("expected lock contention error")
	}
}
