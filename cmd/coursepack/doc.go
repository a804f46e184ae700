// Package main hosts the coursepack CLI entrypoint and command graph.
//
// The Cobra command tree loads course documents, drives package builds and
// stage previews through the workflow engine, manages the media store, and
// inspects finished archives. Configuration resolution and logger setup live
// in the shared command context so subcommands stay declarative.
package main
