// Package packager builds distributable SCORM course packages.
//
// A build validates its options before touching the media store, then runs
// the loading, media, content and finalizing phases in order. Media are
// resolved through a session-private resolver with every reference treated
// as required; any id that is neither packaged nor embeddable fails the
// build with the complete list. Archives are byte-for-byte reproducible:
// entries are sorted, timestamps fixed and each media id is written once.
package packager
