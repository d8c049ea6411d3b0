package api

import "time"

// Entry is a single journal entry. ContentHTML is always derived from ContentMD.
type Entry struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ContentMD   string    `json:"content_md"`
	ContentHTML string    `json:"content_html"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateMode selects how a Patch is interpreted.
type UpdateMode int

const (
	// UpdatePartial changes only the fields present in the patch.
	UpdatePartial UpdateMode = iota
	// UpdateReplace requires every field to be present.
	UpdateReplace
)

func (m UpdateMode) String() string {
	if m == UpdateReplace {
		return "replace"
	}
	return "partial"
}

// Patch carries the fields of an update. A nil field is absent.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	ContentMD *string `json:"content_md,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p Patch) Empty() bool { return p.Title == nil && p.ContentMD == nil }

// Page selects a window of an ordered result set: skip Offset, then take Limit.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Window applies the page to n items and returns the [lo, hi) bounds.
func (p Page) Window(n int) (lo, hi int) {
	lo = p.Offset
	if lo > n {
		lo = n
	}
	hi = lo + p.Limit
	if hi > n || hi < lo {
		hi = n
	}
	return lo, hi
}
