// Package enhance attaches resolved media to a projected course document.
//
// Each distinct media id referenced by the document, including page
// narration audio and captions, is resolved exactly once. Resolution
// failures never abort enhancement: optional media become placeholders and
// required media are collected into the document's Missing list so the
// package builder can fail with the full set. Only context cancellation
// stops Enhance early.
package enhance
