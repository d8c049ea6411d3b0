package render

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// engine is safe for concurrent use once built.
var engine = newEngine()

func newEngine() goldmark.Markdown {
	// Raw HTML is emitted as-is; Sanitize strips what is not allowed and keeps the text.
	rendererOptions := []renderer.Option{
		gmhtml.WithUnsafe(),
	}
	return goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

// Parse converts Markdown to unsanitized HTML. Fenced code blocks keep their
// language as a class on the code element.
func Parse(md string) string {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(md), &buf); err != nil {
		return "<p>" + html.EscapeString(md) + "</p>"
	}
	return buf.String()
}
