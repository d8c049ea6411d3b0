// Package render turns untrusted Markdown into HTML that is safe to embed.
//
// The pipeline has three stages that can be used on their own:
// Parse (Markdown to HTML), Sanitize (allowlist) and Linkify (bare URLs to anchors).
package render

// Markdown runs the full pipeline. It never fails.
func Markdown(md string) string {
	return Linkify(Sanitize(Parse(md)))
}
