package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"coursepack/internal/buildctx"
	"coursepack/internal/config"
	"coursepack/internal/course"
	"coursepack/internal/history"
	"coursepack/internal/logging"
	"coursepack/internal/manifest"
	"coursepack/internal/mediastore"
	"coursepack/internal/packager"
	"coursepack/internal/preview"
	"coursepack/internal/progress"
	"coursepack/internal/resolver"
	"coursepack/internal/stage"
)

// Engine builds and previews courses against one media store.
type Engine struct {
	cfg     *config.Config
	store   mediastore.Store
	history *history.Store
	logger  *slog.Logger
}

// EngineOption configures optional Engine behavior.
type EngineOption func(*Engine)

// WithHistory records successful builds in h.
func WithHistory(h *history.Store) EngineOption {
	return func(e *Engine) { e.history = h }
}

// NewEngine constructs an engine. logger may be nil.
func NewEngine(cfg *config.Config, store mediastore.Store, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{cfg: cfg, store: store, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildRequest describes one package build.
type BuildRequest struct {
	Document *course.Document
	Options  manifest.Options
	// SourcePath is recorded in history when set.
	SourcePath string
	// OutputPath receives the archive when set.
	OutputPath string
	OnProgress progress.Func
}

// BuildResult is a finished build.
type BuildResult struct {
	SessionID  string
	Package    *packager.Result
	OutputPath string
	Elapsed    time.Duration
}

// Build runs a package build in a new session.
func (e *Engine) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	sessionID := uuid.NewString()
	ctx = buildctx.WithSessionID(ctx, sessionID)
	ctx = buildctx.WithStage(ctx, stage.SCORM.String())
	logger := logging.WithContext(ctx, logging.NewComponentLogger(e.logger, "workflow"))

	started := time.Now()
	builder := packager.New(e.store,
		packager.WithLogger(e.logger),
		packager.WithResolverOptions(e.resolverOptions()...),
	)
	res, err := builder.BuildPackage(ctx, req.Document, req.Options, req.OnProgress)
	if err != nil {
		logger.Error("package build failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "build_failed"),
		)
		return nil, err
	}
	out := &BuildResult{SessionID: sessionID, Package: res, Elapsed: time.Since(started)}

	if req.OutputPath != "" {
		if err := WriteArchive(req.OutputPath, res.Buffer); err != nil {
			return nil, err
		}
		out.OutputPath = req.OutputPath
	}
	if e.history != nil {
		rec := history.FromManifest(res.Manifest, len(res.Buffer))
		rec.SessionID = sessionID
		rec.SourcePath = req.SourcePath
		rec.OutputPath = out.OutputPath
		rec.Duration = out.Elapsed
		if _, err := e.history.Add(ctx, rec); err != nil {
			logging.WarnWithContext(ctx, logger, "build history not recorded", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "build succeeded but is missing from history"),
			)
		}
	}
	return out, nil
}

// OpenPreview starts a preview session using the configured preview
// options. The caller must Close it.
func (e *Engine) OpenPreview(opts manifest.Options) *preview.Session {
	return preview.NewSession(e.store,
		preview.WithLogger(e.logger),
		preview.WithManifestOptions(opts),
		preview.WithInlineLimit(e.cfg.Preview.InlineMediaMaxBytes),
		preview.WithResolverOptions(e.resolverOptions()...),
	)
}

// Preview renders doc once at st in a throwaway session.
func (e *Engine) Preview(ctx context.Context, doc *course.Document, st stage.Stage, opts manifest.Options) (*preview.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	session := e.OpenPreview(opts)
	defer func() { _ = session.Close() }()
	return session.Render(ctx, doc, st)
}

func (e *Engine) resolverOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithMaxConcurrentFetches(e.cfg.Resolver.MaxConcurrentFetches),
		resolver.WithFetchTimeout(e.cfg.FetchTimeout()),
	}
}

// WriteArchive writes data to path atomically while holding an exclusive
// lock on path+".lock".
func WriteArchive(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("%s is being written by another build", path)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}
