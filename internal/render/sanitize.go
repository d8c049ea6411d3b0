package render

import "github.com/microcosm-cc/bluemonday"

// AllowedElements are the only elements that survive Sanitize.
var AllowedElements = []string{
	"p", "br", "strong", "em", "ul", "ol", "li",
	"h1", "h2", "h3", "h4", "blockquote", "code", "pre", "a",
}

// AllowedSchemes are the URL schemes accepted in href attributes.
var AllowedSchemes = []string{"http", "https", "mailto"}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedElements...)
	p.AllowAttrs("href", "title", "rel").OnElements("a")
	p.AllowURLSchemes(AllowedSchemes...)
	p.RequireParseableURLs(true)
	return p
}

// Sanitize strips every element and attribute outside the allowlist. Text of
// stripped elements is kept except for script and style bodies. A link whose
// href was rejected loses the anchor but keeps its text.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}
