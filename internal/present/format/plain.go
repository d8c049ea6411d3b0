package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mithrel/quire/pkg/api"
)

// TSV-like columns: id, title, created, updated
const headerLine = "ID\tTITLE\tCREATED\tUPDATED\n"

const timeLayout = "2006-01-02 15:04"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// WritePlainEntries writes one aligned row per entry.
func WritePlainEntries(w io.Writer, entries []api.Entry, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, esc(e.Title), stamp(e.CreatedAt), stamp(e.UpdatedAt))
	}
	return tw.Flush()
}

// WritePlainEntry writes a header block followed by the raw Markdown.
func WritePlainEntry(w io.Writer, e api.Entry) error {
	_, err := fmt.Fprintf(w, "ID: %d\nTitle: %s\nCreated: %s\nUpdated: %s\n---\n%s\n",
		e.ID, e.Title, stamp(e.CreatedAt), stamp(e.UpdatedAt), strings.TrimRight(e.ContentMD, "\n"))
	return err
}
