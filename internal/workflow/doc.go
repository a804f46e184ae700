// Package workflow wires the media store, resolver, enhancer, runtime
// generator and package builder into build and preview sessions.
//
// Every Build runs in a fresh session with its own identifier and a private
// resolver that is discarded when the build returns; nothing resolved in
// one build leaks into another. Manifest options are validated before the
// store is touched. Successful builds are optionally written to disk under
// an exclusive file lock and recorded in the build history.
//
// Preview sessions are long-lived by comparison: OpenPreview hands back a
// preview.Session the caller renders repeatedly and closes when done.
package workflow
