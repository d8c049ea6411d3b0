// Package present writes entries to a terminal or stream in the selected output mode.
package present

import (
	"context"
	"errors"
	"io"

	"github.com/mithrel/quire/internal/present/format"
	"github.com/mithrel/quire/internal/present/tui"
	"github.com/mithrel/quire/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeHTML
	ModeTUI
)

// ErrUnsupported is returned when a mode cannot render the requested shape.
var ErrUnsupported = errors.New("output mode not supported here")

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
	// Delete enables deleting from the TUI.
	Delete tui.DeleteFunc
}

var modeNames = map[string]Mode{
	"plain":  ModePlain,
	"pretty": ModePretty,
	"json":   ModeJSON,
	"ndjson": ModeNDJSON,
	"html":   ModeHTML,
	"tui":    ModeTUI,
}

// ParseMode parses "plain", "pretty", "json", "ndjson", "html" or "tui".
func ParseMode(s string) (Mode, bool) {
	m, ok := modeNames[s]
	return m, ok
}

func (m Mode) String() string {
	for name, v := range modeNames {
		if v == m {
			return name
		}
	}
	return "plain"
}

// RenderEntries renders a list of entries according to options.
func RenderEntries(ctx context.Context, w io.Writer, entries []api.Entry, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONEntries(w, entries, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONEntries(w, entries)
	case ModeTUI:
		return tui.RenderTable(ctx, w, entries, opts.Headers, opts.Delete)
	case ModeHTML:
		for _, e := range entries {
			if err := format.WriteHTMLEntry(w, e); err != nil {
				return err
			}
		}
		return nil
	default:
		// pretty lists fall back to the aligned table
		return format.WritePlainEntries(w, entries, opts.Headers)
	}
}

// RenderEntry renders a single entry according to options.
func RenderEntry(_ context.Context, w io.Writer, e api.Entry, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONEntry(w, e, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONEntries(w, []api.Entry{e})
	case ModePretty:
		return format.WritePrettyEntry(w, e)
	case ModeHTML:
		return format.WriteHTMLEntry(w, e)
	case ModeTUI:
		return ErrUnsupported
	default:
		return format.WritePlainEntry(w, e)
	}
}
