package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/quire/pkg/api"
)

func WriteJSONEntries(w io.Writer, entries []api.Entry, indent bool) error {
	if entries == nil {
		entries = []api.Entry{}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(entries)
}

func WriteJSONEntry(w io.Writer, e api.Entry, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(e)
}

// WriteNDJSONEntries writes entries as newline-delimited JSON objects.
func WriteNDJSONEntries(w io.Writer, entries []api.Entry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
