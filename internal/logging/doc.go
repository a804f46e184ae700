// Package logging assembles structured slog loggers and formatting helpers used
// across coursepack.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine components tag log
// lines with session ids, authoring stages and build phases. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
