// Package journal implements entry semantics on top of a db.Store: bounds
// validation, rendering on content change and update reconciliation.
package journal

import (
	"context"
	"strings"
	"time"

	"github.com/mithrel/quire/internal/db"
	"github.com/mithrel/quire/internal/logging"
	"github.com/mithrel/quire/internal/render"
	"github.com/mithrel/quire/pkg/api"
)

// Service is safe for concurrent use when its store is.
type Service struct {
	store  db.Store
	clock  Clock
	render func(string) string
	log    logging.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

// WithRenderer replaces the Markdown pipeline; tests use it to count renders.
func WithRenderer(fn func(string) string) Option { return func(s *Service) { s.render = fn } }

func WithLogger(l logging.Logger) Option { return func(s *Service) { s.log = l } }

func New(store db.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  SystemClock,
		render: render.Markdown,
		log:    logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// now is UTC at microsecond precision so every backend round-trips it exactly.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// Create validates and stores a new entry.
func (s *Service) Create(ctx context.Context, title, contentMD string) (api.Entry, error) {
	if err := (fields{Title: &title, ContentMD: &contentMD}).validate(true); err != nil {
		return api.Entry{}, err
	}
	now := s.now()
	e, err := s.store.Insert(ctx, api.Entry{
		Title:       title,
		ContentMD:   contentMD,
		ContentHTML: s.render(contentMD),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return api.Entry{}, err
	}
	s.log.Debug(ctx, "entry created", "id", e.ID)
	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (api.Entry, error) {
	return s.store.Get(ctx, id)
}

// List returns entries newest first. limit and offset must not be negative.
func (s *Service) List(ctx context.Context, limit, offset int) ([]api.Entry, error) {
	p := api.Page{Limit: limit, Offset: offset}
	if err := validatePage(p); err != nil {
		return nil, err
	}
	return s.store.List(ctx, p)
}

// Search matches query against title and content, ignoring case. A blank
// query matches nothing and does not reach the store.
func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]api.Entry, error) {
	p := api.Page{Limit: limit, Offset: offset}
	if err := validatePage(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return []api.Entry{}, nil
	}
	return s.store.Search(ctx, query, p)
}

// Update reconciles patch against the stored entry. Fields equal to the
// stored value are ignored; content is re-rendered only when it changes and
// updated_at moves only when something did. In UpdateReplace mode both
// fields must be present.
func (s *Service) Update(ctx context.Context, id int64, patch api.Patch, mode api.UpdateMode) (api.Entry, error) {
	in := fields{Title: patch.Title, ContentMD: patch.ContentMD}
	if err := in.validate(mode == api.UpdateReplace); err != nil {
		return api.Entry{}, err
	}
	var changed []string
	e, err := s.store.Update(ctx, id, func(cur *api.Entry) (bool, error) {
		changed = changed[:0]
		if patch.Title != nil && *patch.Title != cur.Title {
			cur.Title = *patch.Title
			changed = append(changed, "title")
		}
		if patch.ContentMD != nil && *patch.ContentMD != cur.ContentMD {
			cur.ContentMD = *patch.ContentMD
			cur.ContentHTML = s.render(cur.ContentMD)
			changed = append(changed, "content_md")
		}
		if len(changed) == 0 {
			return false, nil
		}
		cur.UpdatedAt = s.now()
		return true, nil
	})
	if err != nil {
		return api.Entry{}, err
	}
	if len(changed) == 0 {
		s.log.Debug(ctx, "entry update was a no-op", "id", id, "mode", mode.String())
	} else {
		s.log.Debug(ctx, "entry updated", "id", id, "mode", mode.String(), "fields", changed)
	}
	return e, nil
}

// Delete reports whether the entry existed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Debug(ctx, "entry deleted", "id", id)
	}
	return ok, nil
}

// Count returns the number of stored entries.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
