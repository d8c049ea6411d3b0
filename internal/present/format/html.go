package format

import (
	"html"
	"io"
	"strings"

	"github.com/mithrel/quire/pkg/api"
)

// WriteHTMLEntry writes the sanitized HTML of e under an escaped <h1> title.
func WriteHTMLEntry(w io.Writer, e api.Entry) error {
	var b strings.Builder
	b.WriteString("<article>\n<h1>")
	b.WriteString(html.EscapeString(e.Title))
	b.WriteString("</h1>\n")
	b.WriteString(e.ContentHTML)
	if !strings.HasSuffix(e.ContentHTML, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("</article>\n")
	_, err := io.WriteString(w, b.String())
	return err
}
