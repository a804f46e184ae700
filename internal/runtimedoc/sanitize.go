package runtimedoc

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

var bodyPolicy = newBodyPolicy()

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowElements("figure", "figcaption", "mark", "u", "s")
	return p
}

// SanitizeBody strips scripts, event handlers and unsafe URLs from authored
// rich text.
func SanitizeBody(body string) template.HTML {
	return template.HTML(bodyPolicy.Sanitize(body))
}
