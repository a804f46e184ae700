// Package mediastore provides read access to the binary media referenced by
// course documents, keyed by storage id.
//
// Three backends share the Store interface: a SQLite database for the
// default installation, a directory of <id>.bin payloads with <id>.json
// sidecars for projects exported by authoring tools, and an in-memory store
// used by tests. Writes are only performed by the media CLI commands; build
// and preview sessions treat every backend as read-only.
package mediastore
