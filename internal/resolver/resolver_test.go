package resolver_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"coursepack/internal/course"
	"coursepack/internal/failures"
	"coursepack/internal/mediastore"
	"coursepack/internal/resolver"
	"coursepack/internal/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func imageRef(id string) course.MediaReference {
	return course.MediaReference{ID: id, Kind: course.KindImage, Locator: course.Locator{StorageID: id}}
}

func waitForFetches(t *testing.T, store *mediastore.MemoryStore, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for store.TotalFetches() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d fetches", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConcurrentResolveFetchesOnce(t *testing.T) {
	store := mediastore.NewMemory(testsupport.Image("img-1"))
	store.Gate = make(chan struct{})
	r := resolver.New(store)
	defer r.Close()

	const callers = 16
	results := make([]*resolver.ResolvedMedia, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = r.Resolve(context.Background(), imageRef("img-1"))
		}()
	}
	waitForFetches(t, store, 1)
	close(store.Gate)
	wg.Wait()

	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d received a different value", i)
		}
	}
	if got := store.Fetches("img-1"); got != 1 {
		t.Fatalf("expected one store fetch, got %d", got)
	}
	if results[0].Filename != "img-1.png" || results[0].MimeType != "image/png" {
		t.Fatalf("unexpected resolved media %+v", results[0])
	}
}

func TestResolveMissingIsTyped(t *testing.T) {
	r := resolver.New(mediastore.NewMemory())
	defer r.Close()

	_, err := r.Resolve(context.Background(), imageRef("img-x"))
	var nf *failures.ResourceNotFound
	if !errors.As(err, &nf) || nf.ID != "img-x" {
		t.Fatalf("expected ResourceNotFound(img-x), got %v", err)
	}
}

func TestHostedVideoSkipsStore(t *testing.T) {
	store := mediastore.NewMemory()
	r := resolver.New(store)
	defer r.Close()

	media, err := r.Resolve(context.Background(), course.MediaReference{
		ID:      "vid-1",
		Locator: course.Locator{ExternalURL: "https://youtu.be/dQw4w9WgXcQ"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !media.IsExternal() || media.Handle != nil || media.Kind != course.KindVideo {
		t.Fatalf("expected external video, got %+v", media)
	}
	if store.TotalFetches() != 0 {
		t.Fatalf("expected no store fetches, got %d", store.TotalFetches())
	}
}

func TestExternalNonHostedURLUsesStoreAndExtension(t *testing.T) {
	payload := testsupport.Audio("aud-1")
	payload.Kind = ""
	store := mediastore.NewMemory(payload)
	r := resolver.New(store)
	defer r.Close()

	media, err := r.Resolve(context.Background(), course.MediaReference{
		ID:      "aud-1",
		Locator: course.Locator{ExternalURL: "https://cdn.example.com/Narration.MP3?x=1"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if media.Kind != course.KindAudio || media.Filename != "aud-1.mp3" {
		t.Fatalf("unexpected media %+v", media)
	}
}

func TestReleaseRevokesOnce(t *testing.T) {
	store := mediastore.NewMemory(testsupport.Image("img-1"))
	r := resolver.New(store)
	defer r.Close()

	media, err := r.Resolve(context.Background(), imageRef("img-1"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := media.Handle.Read(); err != nil {
		t.Fatalf("Read before release: %v", err)
	}
	r.Release("img-1")
	r.Release("img-1")
	if _, err := media.Handle.Read(); !errors.Is(err, resolver.ErrRevoked) {
		t.Fatalf("expected revoked handle, got %v", err)
	}
	if live, revoked := r.Stats(); live != 0 || revoked != 1 {
		t.Fatalf("expected 0 live / 1 revoked, got %d / %d", live, revoked)
	}

	again, err := r.Resolve(context.Background(), imageRef("img-1"))
	if err != nil {
		t.Fatalf("Resolve after release: %v", err)
	}
	if again == media || again.Handle.ID() == media.Handle.ID() {
		t.Fatal("expected a fresh handle after release")
	}
	if store.Fetches("img-1") != 2 {
		t.Fatalf("expected refetch after release, got %d fetches", store.Fetches("img-1"))
	}
}

func TestBindReleasesSupersededMedia(t *testing.T) {
	store := mediastore.NewMemory(testsupport.Image("img-1"), testsupport.Image("img-2"))
	r := resolver.New(store)
	defer r.Close()
	ctx := context.Background()

	first, _ := r.Resolve(ctx, imageRef("img-1"))
	second, _ := r.Resolve(ctx, imageRef("img-2"))

	if err := r.Bind("topic-1/hero", first); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := r.Bind("topic-2/hero", first); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := r.Bind("topic-1/hero", second); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if first.Handle.Revoked() {
		t.Fatal("media still bound to another slot must stay live")
	}
	if err := r.Bind("topic-2/hero", second); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !first.Handle.Revoked() {
		t.Fatal("expected superseded media to be revoked")
	}
	if second.Handle.Revoked() {
		t.Fatal("current slot media must stay live")
	}
}

func TestRebindSwapKeepsMediaLive(t *testing.T) {
	store := mediastore.NewMemory(testsupport.Image("img-a"), testsupport.Image("img-b"), testsupport.Image("img-c"))
	r := resolver.New(store)
	defer r.Close()
	ctx := context.Background()

	a, _ := r.Resolve(ctx, imageRef("img-a"))
	b, _ := r.Resolve(ctx, imageRef("img-b"))
	c, _ := r.Resolve(ctx, imageRef("img-c"))
	if err := r.Rebind(map[string]*resolver.ResolvedMedia{"p/media/0": a, "p/media/1": b, "p/media/2": c}); err != nil {
		t.Fatalf("Rebind: %v", err)
	}
	if err := r.Rebind(map[string]*resolver.ResolvedMedia{"p/media/0": b, "p/media/1": a, "p/media/2": nil}); err != nil {
		t.Fatalf("Rebind: %v", err)
	}
	if a.Handle.Revoked() || b.Handle.Revoked() {
		t.Fatal("swapped media must stay live")
	}
	if !c.Handle.Revoked() {
		t.Fatal("expected media no slot shows to be released")
	}
	if _, revoked := r.Stats(); revoked != 1 {
		t.Fatalf("expected exactly one revoked handle, got %d", revoked)
	}
	if m, ok := r.Slot("p/media/0"); !ok || m != b {
		t.Fatalf("expected img-b in slot 0, got %v %v", m, ok)
	}
	if _, ok := r.Slot("p/media/2"); ok {
		t.Fatal("expected nil entry to clear its slot")
	}
}

func TestHostedURLWithAuthoredImageKindUsesStore(t *testing.T) {
	store := mediastore.NewMemory(testsupport.Image("thumb-1"))
	r := resolver.New(store)
	defer r.Close()

	media, err := r.Resolve(context.Background(), course.MediaReference{
		ID:      "thumb-1",
		Kind:    course.KindImage,
		Locator: course.Locator{ExternalURL: "https://youtu.be/dQw4w9WgXcQ"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if media.IsExternal() || media.Handle == nil || media.Kind != course.KindImage {
		t.Fatalf("expected stored image, got %+v", media)
	}
	if store.Fetches("thumb-1") != 1 {
		t.Fatalf("expected one store fetch by id, got %d", store.Fetches("thumb-1"))
	}
}

func TestCloseRevokesInFlightFetch(t *testing.T) {
	store := mediastore.NewMemory(testsupport.Image("img-1"))
	store.Gate = make(chan struct{})
	r := resolver.New(store)

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), imageRef("img-1"))
		done <- err
	}()
	waitForFetches(t, store, 1)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	close(store.Gate)

	if err := <-done; !errors.Is(err, resolver.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if live, revoked := r.Stats(); live != 0 || revoked != 1 {
		t.Fatalf("expected in-flight handle revoked, got %d live / %d revoked", live, revoked)
	}
	if _, err := r.Resolve(context.Background(), imageRef("img-1")); !errors.Is(err, resolver.ErrSessionClosed) {
		t.Fatalf("expected closed resolver to reject, got %v", err)
	}
}

func TestResolveHonorsCallerCancellation(t *testing.T) {
	store := mediastore.NewMemory(testsupport.Image("img-1"))
	store.Gate = make(chan struct{})
	r := resolver.New(store, resolver.WithMaxConcurrentFetches(1))
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctx, imageRef("img-1"))
		done <- err
	}()
	waitForFetches(t, store, 1)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	close(store.Gate)

	media, err := r.Resolve(context.Background(), imageRef("img-1"))
	if err != nil {
		t.Fatalf("Resolve after cancel: %v", err)
	}
	if media.Handle == nil {
		t.Fatal("expected handle")
	}
}
