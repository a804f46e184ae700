// Package resolver turns media references into renderable resources.
//
// A Resolver belongs to one build or preview session. It loads each media id
// from the store at most once, however many pages or goroutines ask for it,
// classifies the payload, picks the canonical file name it is written under,
// and holds the bytes in a handle arena. Consumers only ever see opaque
// Handles; every handle is revoked exactly once, on Release, when its render
// slot is rebound, or when the session is closed.
//
// Hosted video URLs (YouTube, Vimeo) never touch the store and resolve to an
// embeddable player URL without a handle.
package resolver
