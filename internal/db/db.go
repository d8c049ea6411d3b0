package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mithrel/quire/pkg/api"
)

// MutateFunc edits an entry in place and reports whether anything changed.
// It runs inside the store's atomic section; returning changed=false skips the write.
type MutateFunc func(e *api.Entry) (changed bool, err error)

// Store persists entries. Every method is atomic with respect to the others.
type Store interface {
	// Insert assigns a new id to e and stores it.
	Insert(ctx context.Context, e api.Entry) (api.Entry, error)
	Get(ctx context.Context, id int64) (api.Entry, error)
	// Update loads the entry, applies fn and persists the result when fn reports a change.
	Update(ctx context.Context, id int64, fn MutateFunc) (api.Entry, error)
	// Delete reports whether an entry was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	// List returns entries ordered by created_at DESC, id DESC.
	List(ctx context.Context, p api.Page) ([]api.Entry, error)
	// Search is List restricted to entries whose title or content contains q, ignoring case.
	Search(ctx context.Context, q string, p api.Page) ([]api.Entry, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Open returns a Store based on a URL: sqlite://path, postgres://..., redis://..., memory://.
// A bare filesystem path is treated as SQLite.
func Open(ctx context.Context, url string) (Store, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return nil, errors.New("database url is empty")
	case strings.HasPrefix(url, "memory:"):
		return newMemStore(), nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "sqlite3://"), !strings.Contains(url, "://"):
		return openSQLite(ctx, url)
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return openPostgres(ctx, url)
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return openRedis(ctx, url)
	}
	return nil, fmt.Errorf("unsupported database url %q", url)
}

// less orders newest first, ties broken by the larger id.
func less(a, b api.Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func matches(e api.Entry, needle string) bool {
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.ContentMD), needle)
}
