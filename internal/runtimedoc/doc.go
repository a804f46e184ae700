// Package runtimedoc renders an enhanced course into the single HTML
// document a learner's browser runs.
//
// The document carries a registry of rendered pages, a JSON data block and
// an embedded script implementing navigation, grading and SCORM 1.2 status
// reporting. Navigator and Grader are the Go counterparts of that script's
// state machines; tests and the preview simulator drive them to check the
// rules the browser enforces.
package runtimedoc
