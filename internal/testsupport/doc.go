// Package testsupport holds shared fixtures for coursepack tests: temp-dir
// backed configs, seeded media stores and small course documents.
package testsupport
