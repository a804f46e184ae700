package resolver

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRevoked is returned when reading a handle that has been released.
var ErrRevoked = errors.New("media handle revoked")

// Handle is an opaque reference to resolved bytes owned by a Resolver.
type Handle struct {
	id string

	mu      sync.RWMutex
	data    []byte
	revoked bool
}

// ID returns the handle identifier. It is stable for the handle's lifetime
// and never reused within a session.
func (h *Handle) ID() string { return h.id }

// Read returns the payload bytes. The returned slice must not be modified.
func (h *Handle) Read() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.revoked {
		return nil, fmt.Errorf("%w: %s", ErrRevoked, h.id)
	}
	return h.data, nil
}

// Size reports the payload length, or zero once revoked.
func (h *Handle) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.data)
}

// Revoked reports whether the handle has been released.
func (h *Handle) Revoked() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.revoked
}

// revoke drops the payload. It reports false when the handle was already
// revoked.
func (h *Handle) revoke() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return false
	}
	h.revoked = true
	h.data = nil
	return true
}

// arena tracks live handles so teardown can revoke every one of them.
type arena struct {
	mu      sync.Mutex
	next    uint64
	live    map[string]*Handle
	revokes int
}

func newArena() *arena {
	return &arena{live: make(map[string]*Handle)}
}

func (a *arena) acquire(data []byte) *Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	h := &Handle{id: fmt.Sprintf("h%d", a.next), data: data}
	a.live[h.id] = h
	return h
}

func (a *arena) release(h *Handle) {
	if h == nil {
		return
	}
	a.mu.Lock()
	delete(a.live, h.id)
	a.mu.Unlock()
	if h.revoke() {
		a.mu.Lock()
		a.revokes++
		a.mu.Unlock()
	}
}

func (a *arena) releaseAll() {
	a.mu.Lock()
	handles := make([]*Handle, 0, len(a.live))
	for _, h := range a.live {
		handles = append(handles, h)
	}
	a.mu.Unlock()
	for _, h := range handles {
		a.release(h)
	}
}

func (a *arena) stats() (live, revoked int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live), a.revokes
}
