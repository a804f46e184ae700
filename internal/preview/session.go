package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"coursepack/internal/buildctx"
	"coursepack/internal/course"
	"coursepack/internal/enhance"
	"coursepack/internal/logging"
	"coursepack/internal/manifest"
	"coursepack/internal/mediastore"
	"coursepack/internal/resolver"
	"coursepack/internal/runtimedoc"
	"coursepack/internal/stage"
)

// ErrNothingRendered is returned by Simulate before the first Render.
var ErrNothingRendered = errors.New("preview: nothing rendered yet")

// Result is one rendered preview.
type Result struct {
	Stage        stage.Stage
	HTML         []byte
	Placeholders []string
	// Missing lists required ids that failed to resolve.
	Missing  []string
	Document *enhance.Document
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.baseLogger = logger }
}

// WithManifestOptions sets the navigation and grading options previews and
// simulations use.
func WithManifestOptions(opts manifest.Options) Option {
	return func(s *Session) { s.manifest = opts }
}

// WithInlineLimit caps the size of inlined payloads. Larger media render as
// placeholders.
func WithInlineLimit(maxBytes int64) Option {
	return func(s *Session) { s.inlineMax = maxBytes }
}

// WithResolverOptions forwards options to the session resolver.
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(s *Session) { s.resolverOpts = append(s.resolverOpts, opts...) }
}

// Session is a preview session with a private resolver.
type Session struct {
	id           string
	baseLogger   *slog.Logger
	logger       *slog.Logger
	manifest     manifest.Options
	inlineMax    int64
	resolverOpts []resolver.Option
	resolver     *resolver.Resolver

	mu   sync.Mutex
	last *enhance.Document
}

// NewSession opens a preview session reading media from store.
func NewSession(store mediastore.Store, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		manifest: manifest.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.baseLogger, "preview").With(logging.String(logging.FieldSessionID, s.id))
	s.resolver = resolver.New(store, append([]resolver.Option{resolver.WithLogger(s.baseLogger)}, s.resolverOpts...)...)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Render projects doc to st, resolves its media and renders a standalone
// document. Renders within a session are serialized.
func (s *Session) Render(ctx context.Context, doc *course.Document, st stage.Stage) (*Result, error) {
	if !st.Valid() {
		return nil, fmt.Errorf("preview: unknown stage %d", int(st))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = buildctx.WithSessionID(ctx, s.id)
	ctx = buildctx.WithStage(ctx, st.String())

	projected := stage.Project(doc, st)
	enhanced, err := enhance.New(s.resolver,
		enhance.WithPolicy(enhance.Lenient),
		enhance.WithLogger(s.baseLogger),
	).Enhance(ctx, projected)
	if err != nil {
		return nil, err
	}
	if err := s.bind(enhanced); err != nil {
		return nil, err
	}

	rendered, err := runtimedoc.Generate(enhanced, runtimedoc.Options{
		Manifest:   s.manifest,
		MediaURL:   runtimedoc.InlineLinker(s.inlineMax),
		Preview:    true,
		StageLabel: st.String(),
	})
	if err != nil {
		return nil, err
	}
	s.last = enhanced

	live, revoked := s.resolver.Stats()
	logging.WithContext(ctx, s.logger).Debug("preview rendered",
		logging.Int("pages", len(enhanced.Pages)),
		logging.Int("placeholders", len(rendered.Placeholders)),
		logging.Int("live_handles", live),
		logging.Int("revoked_handles", revoked),
	)
	return &Result{
		Stage:        st,
		HTML:         rendered.HTML,
		Placeholders: rendered.Placeholders,
		Missing:      enhanced.Missing,
		Document:     enhanced,
	}, nil
}

// bind points every render slot at the media it now shows. Slots the new
// render no longer has are cleared, and media no slot shows are released.
func (s *Session) bind(doc *enhance.Document) error {
	next := make(map[string]*resolver.ResolvedMedia)
	for _, page := range doc.Pages {
		for i, m := range page.Media {
			next[slotName(page.ID, "media", strconv.Itoa(i))] = m.Resolved
		}
		_, audio, _, captions := page.Snapshot()
		next[slotName(page.ID, "audio")] = audio
		next[slotName(page.ID, "captions")] = captions
	}
	return s.resolver.Rebind(next)
}

func slotName(pageID string, parts ...string) string {
	name := pageID
	for _, p := range parts {
		name += "/" + p
	}
	return name
}

// Slot returns the media currently bound to the named slot.
func (s *Session) Slot(pageID string, parts ...string) (*resolver.ResolvedMedia, bool) {
	return s.resolver.Slot(slotName(pageID, parts...))
}

// Simulate starts a learner attempt against the latest render.
func (s *Session) Simulate() (*runtimedoc.Runtime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, ErrNothingRendered
	}
	return runtimedoc.NewRuntime(s.last, s.manifest)
}

// Close releases every payload and ends the session.
func (s *Session) Close() error {
	return s.resolver.Close()
}

// Stats reports live and revoked handle counts.
func (s *Session) Stats() (live, revoked int) {
	return s.resolver.Stats()
}
