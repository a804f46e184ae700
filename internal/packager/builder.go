package packager

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"coursepack/internal/course"
	"coursepack/internal/enhance"
	"coursepack/internal/failures"
	"coursepack/internal/logging"
	"coursepack/internal/manifest"
	"coursepack/internal/mediastore"
	"coursepack/internal/progress"
	"coursepack/internal/resolver"
	"coursepack/internal/runtimedoc"
	"coursepack/internal/stage"
)

// Result is a successfully built package.
type Result struct {
	Buffer   []byte
	Manifest manifest.Package
}

// Option customizes a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.baseLogger = logger
		b.logger = logging.NewComponentLogger(logger, "packager")
	}
}

// WithResolverOptions forwards options to each build's resolver.
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(b *Builder) { b.resolverOpts = append(b.resolverOpts, opts...) }
}

// Builder builds packages from a media store.
type Builder struct {
	store        mediastore.Store
	logger       *slog.Logger
	baseLogger   *slog.Logger
	resolverOpts []resolver.Option
}

// New constructs a Builder reading media from store.
func New(store mediastore.Store, opts ...Option) *Builder {
	b := &Builder{
		store:  store,
		logger: logging.NewComponentLogger(nil, "packager"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildPackage builds a package for doc. Options and the document are
// validated before any store access. onProgress may be nil.
func (b *Builder) BuildPackage(ctx context.Context, doc *course.Document, opts manifest.Options, onProgress progress.Func) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, failures.Wrap(failures.ErrValidation, "packager", "build", "course document is required", nil)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	logger := logging.WithContext(ctx, b.logger)
	reporter := progress.NewReporter(onProgress, b.baseLogger)

	r := resolver.New(b.store, append([]resolver.Option{resolver.WithLogger(b.baseLogger)}, b.resolverOpts...)...)
	defer func() { _ = r.Close() }()

	// loading
	if err := reporter.Enter(progress.PhaseLoading, "Loading course"); err != nil {
		return nil, err
	}
	projected := stage.Project(doc, stage.SCORM)
	pages := projected.Pages()
	reporter.Step(len(pages), len(pages), fmt.Sprintf("Loaded %d pages", len(pages)))
	if err := ctx.Err(); err != nil {
		return nil, canceled("load", err)
	}

	// media
	if err := reporter.Enter(progress.PhaseMedia, "Resolving media"); err != nil {
		return nil, err
	}
	enhancer := enhance.New(r,
		enhance.WithPolicy(enhance.RequireAll),
		enhance.WithLogger(b.baseLogger),
		enhance.WithObserver(func(id string, err error, done, total int) {
			reporter.Step(done, total, "Resolved "+id)
		}),
	)
	enhanced, err := enhancer.Enhance(ctx, projected)
	if err != nil {
		return nil, err
	}
	if err := enhanced.MissingError(); err != nil {
		logger.Warn("package build missing required media",
			logging.Strings("missing", enhanced.Missing),
			logging.String(logging.FieldEventType, "missing_resources"),
			logging.String(logging.FieldImpact, "package not produced"),
		)
		return nil, err
	}
	reporter.Step(1, 1, fmt.Sprintf("Resolved %d resources", len(enhanced.Resources)))

	// content
	if err := reporter.Enter(progress.PhaseContent, "Rendering content"); err != nil {
		return nil, err
	}
	table := buildResourceTable(enhanced)
	rendered, err := runtimedoc.Generate(enhanced, runtimedoc.Options{
		Manifest: opts,
		MediaURL: table.link,
	})
	if err != nil {
		return nil, failures.Wrap(failures.ErrArchive, "packager", "render", "runtime document", err)
	}
	if len(rendered.Placeholders) > 0 {
		return nil, failures.NewMissingResources(rendered.Placeholders)
	}
	pkg := manifest.New(enhanced.Title, enhanced.Description, enhanced.Language, opts)
	pkg.PageOrder = enhanced.PageIDs()
	pkg.Pages = pageEntries(enhanced)
	pkg.Resources = table.resources
	reporter.Step(1, 1, "Rendered runtime document")
	if err := ctx.Err(); err != nil {
		return nil, canceled("content", err)
	}

	// finalizing
	if err := reporter.Enter(progress.PhaseFinalizing, "Assembling archive"); err != nil {
		return nil, err
	}
	entries, err := b.entries(pkg, rendered, table)
	if err != nil {
		return nil, err
	}
	buffer, err := writeArchive(ctx, entries, func(done, total int) {
		reporter.Step(done, total, "Writing archive")
	})
	if err != nil {
		return nil, err
	}
	reporter.Finish("Package ready")

	logger.Info("package built",
		logging.String("identifier", pkg.Identifier),
		logging.Int("pages", len(pkg.PageOrder)),
		logging.Int("resources", len(pkg.Resources)),
		logging.Int("bytes", len(buffer)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return &Result{Buffer: buffer, Manifest: pkg}, nil
}

func (b *Builder) entries(pkg manifest.Package, rendered *runtimedoc.Document, table *resourceTable) ([]entry, error) {
	manifestJSON, err := pkg.MarshalIndented()
	if err != nil {
		return nil, &failures.ArchiveAssemblyFailure{Entry: EntryCourseManifest, Err: err}
	}
	entries := []entry{
		{name: EntryCourseManifest, data: manifestJSON},
		{name: EntryIndex, data: rendered.HTML},
	}
	for _, res := range table.resources {
		if res.Href == "" {
			continue
		}
		data, err := table.media[res.ID].Handle.Read()
		if err != nil {
			return nil, &failures.ArchiveAssemblyFailure{Entry: res.Href, Err: err}
		}
		entries = append(entries, entry{name: res.Href, data: data})
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, e.name)
	}
	sort.Strings(files)
	ims, err := manifest.SCORM12(pkg, files)
	if err != nil {
		return nil, &failures.ArchiveAssemblyFailure{Entry: EntryIMSManifest, Err: err}
	}
	return append(entries, entry{name: EntryIMSManifest, data: ims}), nil
}

// resourceTable assigns each resolved id one archive path.
type resourceTable struct {
	resources []manifest.Resource
	media     map[string]*resolver.ResolvedMedia
	hrefs     map[string]string
}

func buildResourceTable(doc *enhance.Document) *resourceTable {
	ids := make([]string, 0, len(doc.Resources))
	for id := range doc.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := &resourceTable{
		media: doc.Resources,
		hrefs: make(map[string]string, len(ids)),
	}
	taken := make(map[string]bool, len(ids))
	for _, id := range ids {
		m := doc.Resources[id]
		res := manifest.Resource{ID: id, Kind: string(m.Kind), MimeType: m.MimeType}
		if m.IsExternal() {
			res.ExternalURL = m.ExternalURL
		} else {
			res.Href = uniqueHref(m.Filename, taken)
			res.Size = int64(m.Handle.Size())
			t.hrefs[id] = res.Href
		}
		t.resources = append(t.resources, res)
	}
	return t
}

func uniqueHref(filename string, taken map[string]bool) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	href := runtimedoc.MediaDir + "/" + filename
	for n := 2; taken[href]; n++ {
		href = fmt.Sprintf("%s/%s-%d%s", runtimedoc.MediaDir, base, n, ext)
	}
	taken[href] = true
	return href
}

func (t *resourceTable) link(media *resolver.ResolvedMedia) (string, error) {
	if media.IsExternal() {
		return media.ExternalURL, nil
	}
	href, ok := t.hrefs[media.ID]
	if !ok {
		return "", failures.NotFound(media.ID)
	}
	return href, nil
}

func pageEntries(doc *enhance.Document) []manifest.Page {
	out := make([]manifest.Page, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		var ids []string
		for _, m := range page.Media {
			ids = append(ids, m.Ref.ID)
		}
		_, audio, _, captions := page.Snapshot()
		if audio != nil {
			ids = append(ids, audio.ID)
		}
		if captions != nil {
			ids = append(ids, captions.ID)
		}
		out = append(out, manifest.Page{
			ID:        page.ID,
			Kind:      string(page.Kind),
			Title:     page.Title,
			Resources: failures.SortedUnique(ids),
		})
	}
	return out
}

func canceled(phase string, err error) error {
	return failures.Wrap(failures.ErrCanceled, "packager", phase, "build canceled", err)
}
