// Package archive moves journal entries in and out of the store as files.
//
// Export writes one Markdown document per entry with a YAML frontmatter
// header. Import reads those documents back, or a JSON array / NDJSON stream
// of entries. Imported entries are created fresh: ids and timestamps are
// assigned by the journal, never taken from the input.
package archive

import (
	"context"
	"errors"

	"github.com/mithrel/quire/internal/journal"
	"github.com/mithrel/quire/pkg/api"
)

// Lister pages through entries newest first.
type Lister interface {
	List(ctx context.Context, limit, offset int) ([]api.Entry, error)
}

// Creator creates a new entry from a title and Markdown body.
type Creator interface {
	Create(ctx context.Context, title, contentMD string) (api.Entry, error)
}

// Result summarizes an import.
type Result struct {
	Imported int
	Skipped  int
	// Problems holds one message per skipped record.
	Problems []string
}

func (r *Result) add(ctx context.Context, c Creator, source, title, body string) error {
	_, err := c.Create(ctx, title, body)
	switch {
	case err == nil:
		r.Imported++
		return nil
	case errors.Is(err, journal.ErrInvalid):
		r.Skipped++
		r.Problems = append(r.Problems, source+": "+err.Error())
		return nil
	default:
		return err
	}
}

// DefaultPageSize is used by Export when a non-positive page size is given.
const DefaultPageSize = 200

// Entries collects every entry from l, pageSize at a time.
func Entries(ctx context.Context, l Lister, pageSize int) ([]api.Entry, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var all []api.Entry
	for offset := 0; ; offset += pageSize {
		page, err := l.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
