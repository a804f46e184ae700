package runtimedoc

import (
	"errors"
	"fmt"

	"coursepack/internal/manifest"
)

var (
	// ErrNavigationBlocked is returned when the mode or a pending knowledge
	// check forbids the requested move.
	ErrNavigationBlocked = errors.New("navigation blocked")
	// ErrUnknownPage is returned by JumpTo for ids outside the course.
	ErrUnknownPage = errors.New("unknown page")
	// ErrBoundary is returned when moving past the first or last page.
	ErrBoundary = errors.New("no page in that direction")
)

// Gate reports whether the learner may leave the page going forward.
type Gate func(pageID string) bool

// Navigator is the page state machine. States are page ids; the first page
// is initial and the last page is terminal.
type Navigator struct {
	pages   []string
	index   map[string]int
	mode    manifest.NavigationMode
	current int
	visited map[string]bool
	gate    Gate
}

// NewNavigator starts on the first of pageIDs.
func NewNavigator(pageIDs []string, mode manifest.NavigationMode) (*Navigator, error) {
	if len(pageIDs) == 0 {
		return nil, fmt.Errorf("navigator: course has no pages")
	}
	if mode == "" {
		mode = manifest.NavigationLinear
	}
	n := &Navigator{
		pages:   append([]string(nil), pageIDs...),
		index:   make(map[string]int, len(pageIDs)),
		mode:    mode,
		visited: make(map[string]bool, len(pageIDs)),
	}
	for i, id := range pageIDs {
		if _, dup := n.index[id]; dup {
			return nil, fmt.Errorf("navigator: duplicate page id %q", id)
		}
		n.index[id] = i
	}
	n.visited[pageIDs[0]] = true
	return n, nil
}

// SetGate installs a forward-navigation gate applied in linear mode.
func (n *Navigator) SetGate(g Gate) { n.gate = g }

// Current returns the current page id.
func (n *Navigator) Current() string { return n.pages[n.current] }

// Terminal reports whether the current page is the last one.
func (n *Navigator) Terminal() bool { return n.current == len(n.pages)-1 }

// Next moves forward one page.
func (n *Navigator) Next() (string, error) {
	if n.Terminal() {
		return n.Current(), ErrBoundary
	}
	if n.mode == manifest.NavigationLinear && n.gate != nil && !n.gate(n.Current()) {
		return n.Current(), fmt.Errorf("%w: complete the knowledge check on %s first", ErrNavigationBlocked, n.Current())
	}
	n.moveTo(n.current + 1)
	return n.Current(), nil
}

// Previous moves back one page.
func (n *Navigator) Previous() (string, error) {
	if n.current == 0 {
		return n.Current(), ErrBoundary
	}
	n.moveTo(n.current - 1)
	return n.Current(), nil
}

// CanJumpTo reports whether JumpTo(id) would succeed.
func (n *Navigator) CanJumpTo(id string) bool {
	target, ok := n.index[id]
	if !ok {
		return false
	}
	if n.mode == manifest.NavigationFree {
		return true
	}
	return target == n.current || target == n.current-1
}

// JumpTo moves directly to id. Free navigation allows any page; linear
// navigation allows only the current page and its immediate predecessor.
func (n *Navigator) JumpTo(id string) (string, error) {
	target, ok := n.index[id]
	if !ok {
		return n.Current(), fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	if !n.CanJumpTo(id) {
		return n.Current(), fmt.Errorf("%w: %s is not reachable from %s in linear mode", ErrNavigationBlocked, id, n.Current())
	}
	n.moveTo(target)
	return n.Current(), nil
}

func (n *Navigator) moveTo(i int) {
	n.current = i
	n.visited[n.pages[i]] = true
}

// Visited reports whether id has been shown.
func (n *Navigator) Visited(id string) bool { return n.visited[id] }

// VisitedAll reports whether every page has been shown.
func (n *Navigator) VisitedAll() bool { return len(n.visited) == len(n.pages) }

// Pages returns the page ids in order.
func (n *Navigator) Pages() []string { return append([]string(nil), n.pages...) }
