// Package progress models package build progress.
//
// A build moves through four phases in a fixed order, each owning a slice of
// the global 0-100 percent range. Reporter enforces the phase order and keeps
// the reported percent non-decreasing, so callbacks can drive a progress bar
// directly.
package progress
