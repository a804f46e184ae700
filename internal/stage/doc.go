// Package stage defines the authoring stages a course passes through and the
// projection that shows a document as it looks at a given stage.
//
// Stages are totally ordered: seed, prompt, json, media, audio, scorm.
// Project never mutates its input and projecting twice at the same stage
// yields an equal document.
package stage
