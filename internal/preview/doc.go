// Package preview renders course documents at an authoring stage.
//
// A Session owns one resolver for its lifetime. Each render binds resolved
// media to render slots named after the page and position they appear in;
// media whose slot is rebound or dropped and that no other slot shows are
// released immediately, so a long editing session holds only the payloads
// its latest render displays. Media are inlined as data URIs. Unresolvable
// optional media render as placeholders instead of failing the preview.
package preview
