package db

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mithrel/quire/pkg/api"
)

type memStore struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]api.Entry
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[int64]api.Entry)}
}

func (m *memStore) Insert(ctx context.Context, e api.Entry) (api.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	e.ID = m.lastID
	m.byID[e.ID] = e
	return e, nil
}

func (m *memStore) Get(ctx context.Context, id int64) (api.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[id]
	if !ok {
		return api.Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *memStore) Update(ctx context.Context, id int64, fn MutateFunc) (api.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return api.Entry{}, ErrNotFound
	}
	next := cur
	changed, err := fn(&next)
	if err != nil {
		return api.Entry{}, err
	}
	if !changed {
		return cur, nil
	}
	next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
	m.byID[id] = next
	return next, nil
}

func (m *memStore) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memStore) List(ctx context.Context, p api.Page) ([]api.Entry, error) {
	return m.filter(p, nil), nil
}

func (m *memStore) Search(ctx context.Context, q string, p api.Page) ([]api.Entry, error) {
	needle := strings.ToLower(q)
	return m.filter(p, func(e api.Entry) bool { return matches(e, needle) }), nil
}

func (m *memStore) filter(p api.Page, keep func(api.Entry) bool) []api.Entry {
	m.mu.RLock()
	all := make([]api.Entry, 0, len(m.byID))
	for _, e := range m.byID {
		if keep == nil || keep(e) {
			all = append(all, e)
		}
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	lo, hi := p.Window(len(all))
	return append([]api.Entry{}, all[lo:hi]...)
}

func (m *memStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

func (m *memStore) Close() error { return nil }
