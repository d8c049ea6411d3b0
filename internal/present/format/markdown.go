package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/quire/pkg/api"
)

// PrettyStyle is the glamour style used for terminal rendering.
var PrettyStyle = "dracula"

// WritePrettyEntry renders a single entry with markdown formatting using glamour.
func WritePrettyEntry(w io.Writer, e api.Entry) error {
	md := fmt.Sprintf(`# %s

> **ID:** %d | **Created:** %s | **Updated:** %s

---

%s
`, e.Title, e.ID, e.CreatedAt.Local().Format(time.RFC3339), e.UpdatedAt.Local().Format(time.RFC3339), strings.TrimSpace(e.ContentMD))

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(PrettyStyle),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}
