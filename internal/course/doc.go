// Package course models the authored course document handed to the assembly
// engine: ordered pages (welcome, objectives, topics, assessment), media
// references, knowledge checks and the closed assessment question union.
//
// Documents are loaded from JSON or YAML, normalized (default page and
// question ids) and validated before any engine component touches them. The
// engine treats a loaded document as immutable; transformations work on deep
// copies obtained through Clone.
package course
