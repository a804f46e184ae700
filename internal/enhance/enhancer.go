package enhance

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"coursepack/internal/course"
	"coursepack/internal/failures"
	"coursepack/internal/logging"
	"coursepack/internal/resolver"
)

// Policy decides which resolution failures are fatal to a package build.
type Policy int

const (
	// Lenient renders placeholders for every failure except references the
	// author marked Required.
	Lenient Policy = iota
	// RequireAll treats every reference as required.
	RequireAll
)

// Resolver resolves a media reference.
type Resolver interface {
	Resolve(ctx context.Context, ref course.MediaReference) (*resolver.ResolvedMedia, error)
}

// Option customizes an Enhancer.
type Option func(*Enhancer)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(e *Enhancer) { e.policy = p }
}

// WithLogger sets the enhancer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enhancer) { e.logger = logging.NewComponentLogger(logger, "enhance") }
}

// WithConcurrency bounds the number of concurrent Resolve calls.
func WithConcurrency(n int) Option {
	return func(e *Enhancer) { e.concurrency = n }
}

// WithObserver registers fn to be called after each distinct id resolves.
// Calls are serialized; done counts resolved ids so far out of total.
func WithObserver(fn Observer) Option {
	return func(e *Enhancer) { e.observer = fn }
}

// Observer receives per-id resolution outcomes.
type Observer func(id string, err error, done, total int)

// Enhancer attaches resolved media to projected documents.
type Enhancer struct {
	resolver    Resolver
	policy      Policy
	logger      *slog.Logger
	concurrency int
	observer    Observer
}

// New constructs an Enhancer.
func New(r Resolver, opts ...Option) *Enhancer {
	e := &Enhancer{
		resolver: r,
		logger:   logging.NewComponentLogger(nil, "enhance"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type request struct {
	ref      course.MediaReference
	required bool
}

type outcome struct {
	media *resolver.ResolvedMedia
	err   error
}

// Enhance resolves every media reference of doc. doc is not modified.
func (e *Enhancer) Enhance(ctx context.Context, doc *course.Document) (*Document, error) {
	out := &Document{
		Title:       doc.Title,
		Description: doc.Description,
		Language:    doc.Language,
		Questions:   doc.AssessmentQuestions().Clone(),
		Resources:   make(map[string]*resolver.ResolvedMedia),
	}
	for _, p := range doc.Pages() {
		out.Pages = append(out.Pages, &Page{Page: *p.Clone()})
	}

	requests, order := e.collect(out.Pages)
	outcomes := make(map[string]outcome, len(requests))
	var mu sync.Mutex

	g := new(errgroup.Group)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for _, id := range order {
		req := requests[id]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			media, err := e.resolver.Resolve(ctx, req.ref)
			mu.Lock()
			defer mu.Unlock()
			outcomes[id] = outcome{media: media, err: err}
			if e.observer != nil {
				e.observer(id, err, len(outcomes), len(order))
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, failures.Wrap(failures.ErrCanceled, "enhance", "enhance", "resolution interrupted", err)
	}

	var missing []string
	fail := func(page *Page, id, role string, err error) {
		logger := logging.WithContext(ctx, e.logger)
		if requests[id].required {
			missing = append(missing, id)
			logger.Debug("required media unresolved",
				logging.String(logging.FieldPageID, page.ID),
				logging.String(logging.FieldMediaID, id),
				logging.String("role", role),
				logging.Error(err),
			)
			return
		}
		logging.WarnWithContext(ctx, e.logger, "media unavailable; rendering placeholder", "media_placeholder",
			logging.String(logging.FieldPageID, page.ID),
			logging.String(logging.FieldMediaID, id),
			logging.String("role", role),
			logging.Error(err),
		)
	}

	for _, page := range out.Pages {
		for _, ref := range page.Page.Media {
			res := outcomes[ref.ID]
			if res.err != nil || res.media == nil {
				fail(page, ref.ID, "media", res.err)
				page.Media = append(page.Media, Media{Ref: ref, Placeholder: true, Reason: reason(res.err)})
				continue
			}
			out.Resources[ref.ID] = res.media
			page.Media = append(page.Media, Media{Ref: ref, Resolved: res.media})
		}
		if id := page.AudioFile; id != "" {
			if res := outcomes[id]; res.err == nil && res.media != nil {
				out.Resources[id] = res.media
				page.attachAudio(res.media)
			} else {
				fail(page, id, "audio", res.err)
			}
		}
		if id := page.CaptionFile; id != "" {
			if res := outcomes[id]; res.err == nil && res.media != nil {
				out.Resources[id] = res.media
				page.attachCaption(res.media)
			} else {
				fail(page, id, "caption", res.err)
			}
		}
	}
	out.Missing = failures.SortedUnique(missing)
	return out, nil
}

// collect returns one request per distinct id in first-seen order.
func (e *Enhancer) collect(pages []*Page) (map[string]*request, []string) {
	requests := make(map[string]*request)
	var order []string
	add := func(ref course.MediaReference) {
		req, ok := requests[ref.ID]
		if !ok {
			req = &request{ref: ref}
			requests[ref.ID] = req
			order = append(order, ref.ID)
		}
		if e.policy == RequireAll || ref.Required {
			req.required = true
		}
	}
	for _, page := range pages {
		for _, ref := range page.Page.Media {
			add(ref)
		}
		if page.AudioFile != "" {
			add(narrationRef(page.AudioFile, course.KindAudio))
		}
		if page.CaptionFile != "" {
			add(narrationRef(page.CaptionFile, course.KindCaption))
		}
	}
	return requests, order
}

func narrationRef(id string, kind course.MediaKind) course.MediaReference {
	return course.MediaReference{ID: id, Kind: kind, Locator: course.Locator{StorageID: id}}
}

func reason(err error) string {
	if err == nil {
		return "unavailable"
	}
	return err.Error()
}
