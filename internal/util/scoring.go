package util

import (
	"github.com/sahilm/fuzzy"

	"github.com/mithrel/quire/pkg/api"
)

// ScoreCompletions returns the top n matches for input from candidates, best first.
// An empty input returns the candidates unchanged; n <= 0 means no limit.
func ScoreCompletions(input string, candidates []string, n int) []string {
	if input == "" {
		if n > 0 && len(candidates) > n {
			return candidates[:n]
		}
		return candidates
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) == 0 {
		return nil
	}

	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Str
	}
	return out
}

// entrySource lets fuzzy match against "id title" while keeping the entry.
type entrySource []api.Entry

func (s entrySource) String(i int) string { return api.FormatID(s[i].ID) + " " + s[i].Title }
func (s entrySource) Len() int            { return len(s) }

// CompleteEntries ranks entries by how well input matches their id and title
// and returns shell completions in cobra's "value\tdescription" form.
func CompleteEntries(input string, entries []api.Entry, n int) []string {
	var picked []api.Entry
	if input == "" {
		picked = entries
	} else {
		for _, m := range fuzzy.FindFrom(input, entrySource(entries)) {
			picked = append(picked, entries[m.Index])
		}
	}
	if n > 0 && len(picked) > n {
		picked = picked[:n]
	}
	out := make([]string, len(picked))
	for i, e := range picked {
		out[i] = api.FormatID(e.ID) + "\t" + e.Title
	}
	return out
}
