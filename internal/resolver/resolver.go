package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"coursepack/internal/course"
	"coursepack/internal/failures"
	"coursepack/internal/logging"
	"coursepack/internal/mediastore"
)

// ErrSessionClosed is returned by Resolve once Close has been called.
var ErrSessionClosed = errors.New("resolver session closed")

// ResolvedMedia is a media reference ready for rendering or packaging.
// Exactly one of Handle and ExternalURL is set.
type ResolvedMedia struct {
	ID          string
	Kind        course.MediaKind
	MimeType    string
	Filename    string
	Title       string
	Handle      *Handle
	ExternalURL string
}

// IsExternal reports whether the media is an embeddable hosted reference.
func (m *ResolvedMedia) IsExternal() bool {
	return m != nil && m.Handle == nil && m.ExternalURL != ""
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.NewComponentLogger(logger, "resolver")
	}
}

// WithMaxConcurrentFetches bounds simultaneous store fetches. Zero or less
// leaves fetches bounded only by the number of distinct ids.
func WithMaxConcurrentFetches(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithFetchTimeout caps each store fetch.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.fetchTimeout = d
	}
}

// Resolver resolves media references for one session.
type Resolver struct {
	store        mediastore.Store
	logger       *slog.Logger
	sem          *semaphore.Weighted
	fetchTimeout time.Duration
	arena        *arena
	group        singleflight.Group

	mu     sync.Mutex
	cache  map[string]*ResolvedMedia
	slots  map[string]*ResolvedMedia
	closed bool
}

// New constructs a Resolver reading from store.
func New(store mediastore.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		logger: logging.NewComponentLogger(nil, "resolver"),
		arena:  newArena(),
		cache:  make(map[string]*ResolvedMedia),
		slots:  make(map[string]*ResolvedMedia),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the resolved media for ref. Concurrent and repeated calls
// for the same id share one store fetch and receive the same value until the
// id is released.
func (r *Resolver) Resolve(ctx context.Context, ref course.MediaReference) (*ResolvedMedia, error) {
	if ref.ID == "" {
		return nil, failures.Wrap(failures.ErrValidation, "resolver", "resolve", "media reference without id", nil)
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if cached, ok := r.cache[ref.ID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	ch := r.group.DoChan(ref.ID, func() (any, error) {
		return r.load(context.WithoutCancel(ctx), ref)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ResolvedMedia), nil
	}
}

func (r *Resolver) load(ctx context.Context, ref course.MediaReference) (*ResolvedMedia, error) {
	r.mu.Lock()
	if cached, ok := r.cache[ref.ID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldMediaID, ref.ID))

	if ref.Locator.IsExternal() && (ref.Kind == course.KindUnknown || ref.Kind == course.KindVideo) {
		if embed, ok := HostedVideoEmbed(ref.Locator.ExternalURL); ok {
			media := &ResolvedMedia{
				ID:          ref.ID,
				Kind:        course.KindVideo,
				Title:       ref.Title,
				ExternalURL: embed,
			}
			logger.Debug("hosted video resolved", logging.String("embed_url", embed))
			return r.publish(media, nil)
		}
	}

	payload, err := r.fetch(ctx, ref.StoreKey())
	if err != nil {
		if errors.Is(err, failures.ErrNotFound) {
			logger.Debug("media not in store", logging.String("store_key", ref.StoreKey()))
			return nil, failures.NotFound(ref.ID)
		}
		return nil, err
	}

	kind := Classify(ref.Kind, payload.Kind, ref.Locator.ExternalURL, payload.OriginalName, payload.SourceURL)
	ext, mimeType := canonicalType(kind, payload.Data)
	handle := r.arena.acquire(payload.Data)
	media := &ResolvedMedia{
		ID:       ref.ID,
		Kind:     kind,
		MimeType: mimeType,
		Filename: CanonicalFilename(ref.ID, ext),
		Title:    ref.Title,
		Handle:   handle,
	}
	logger.Debug("media resolved",
		logging.String("kind", string(kind)),
		logging.String("filename", media.Filename),
		logging.Int("bytes", len(payload.Data)),
	)
	return r.publish(media, handle)
}

// publish caches media unless the session closed while it was loading. In
// that case the fresh handle is revoked immediately.
func (r *Resolver) publish(media *ResolvedMedia, handle *Handle) (*ResolvedMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.arena.release(handle)
		return nil, ErrSessionClosed
	}
	r.cache[media.ID] = media
	return media, nil
}

func (r *Resolver) fetch(ctx context.Context, key string) (mediastore.Payload, error) {
	if r.store == nil {
		return mediastore.Payload{}, failures.NotFound(key)
	}
	if r.sem != nil {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return mediastore.Payload{}, err
		}
		defer r.sem.Release(1)
	}
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}
	payload, err := r.store.Fetch(ctx, key)
	if err != nil {
		if errors.Is(err, failures.ErrNotFound) {
			return mediastore.Payload{}, err
		}
		return mediastore.Payload{}, failures.Wrap(failures.ErrStore, "resolver", "fetch", key, err)
	}
	return payload, nil
}

// Release revokes the handle for id and evicts it from the cache and any
// slot it is bound to. Releasing an unknown id is a no-op.
func (r *Resolver) Release(id string) {
	r.mu.Lock()
	media := r.cache[id]
	delete(r.cache, id)
	for slot, bound := range r.slots {
		if bound.ID == id {
			delete(r.slots, slot)
		}
	}
	r.mu.Unlock()
	if media != nil {
		r.arena.release(media.Handle)
	}
}

// ReleaseAll revokes every handle and clears the cache and slots. The
// resolver stays usable.
func (r *Resolver) ReleaseAll() {
	r.mu.Lock()
	r.cache = make(map[string]*ResolvedMedia)
	r.slots = make(map[string]*ResolvedMedia)
	r.mu.Unlock()
	r.arena.releaseAll()
}

// Bind associates media with a render slot. When the slot previously held
// different media that no other slot shows, that media is released.
func (r *Resolver) Bind(slot string, media *ResolvedMedia) error {
	if slot == "" {
		return fmt.Errorf("bind: slot is required")
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrSessionClosed
	}
	prior := r.slots[slot]
	if media == nil {
		delete(r.slots, slot)
	} else {
		r.slots[slot] = media
	}
	superseded := prior != nil && (media == nil || prior.ID != media.ID) && !r.boundLocked(prior)
	r.mu.Unlock()

	if superseded {
		r.Release(prior.ID)
	}
	return nil
}

// Rebind replaces the whole slot table with next. Media that were bound
// before and that no slot in next shows are released after every slot is in
// place. Nil entries leave their slot empty.
func (r *Resolver) Rebind(next map[string]*ResolvedMedia) error {
	slots := make(map[string]*ResolvedMedia, len(next))
	shown := make(map[string]struct{}, len(next))
	for slot, media := range next {
		if slot == "" {
			return fmt.Errorf("bind: slot is required")
		}
		if media == nil {
			continue
		}
		slots[slot] = media
		shown[media.ID] = struct{}{}
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrSessionClosed
	}
	var superseded []string
	for _, prior := range r.slots {
		if _, ok := shown[prior.ID]; ok {
			continue
		}
		shown[prior.ID] = struct{}{}
		superseded = append(superseded, prior.ID)
	}
	r.slots = slots
	r.mu.Unlock()

	sort.Strings(superseded)
	for _, id := range superseded {
		r.Release(id)
	}
	return nil
}

func (r *Resolver) boundLocked(media *ResolvedMedia) bool {
	for _, bound := range r.slots {
		if bound.ID == media.ID {
			return true
		}
	}
	return false
}

// Slot returns the media bound to slot.
func (r *Resolver) Slot(slot string) (*ResolvedMedia, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	media, ok := r.slots[slot]
	return media, ok
}

// Close revokes all handles and rejects further resolution. Fetches already
// in flight complete, but the handles they produce are revoked at once.
func (r *Resolver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.cache = make(map[string]*ResolvedMedia)
	r.slots = make(map[string]*ResolvedMedia)
	r.mu.Unlock()
	r.arena.releaseAll()
	live, revoked := r.arena.stats()
	r.logger.Debug("resolver closed", logging.Int("live_handles", live), logging.Int("revoked_handles", revoked))
	return nil
}

// Stats reports live and revoked handle counts.
func (r *Resolver) Stats() (live, revoked int) {
	return r.arena.stats()
}
