// Package history records successful package builds in a SQLite database
// under the log directory so `coursepack history` can list recent output.
package history
