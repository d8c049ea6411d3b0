package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/quire/pkg/api"
)

func makeEntries(n int) []api.Entry {
	now := time.Now().UTC().Truncate(time.Second)
	out := make([]api.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, api.Entry{
			ID:        int64(n - i),
			Title:     "t",
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEnterSelects(t *testing.T) {
	m := newModel(context.Background(), makeEntries(3), true, nil)
	next, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	sel, ok := next.(model).selected()
	require.True(t, ok)
	assert.Equal(t, int64(3), sel.ID)
}

func TestQuitSelectsNothing(t *testing.T) {
	m := newModel(context.Background(), makeEntries(2), false, nil)
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := next.(model).selected()
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	var deleted []int64
	del := func(_ context.Context, id int64) error {
		deleted = append(deleted, id)
		return nil
	}
	m := newModel(context.Background(), makeEntries(3), true, del)

	next, cmd := m.Update(key("d"))
	require.NotNil(t, cmd)
	msg := cmd()
	next, _ = next.(model).Update(msg)

	fm := next.(model)
	assert.Equal(t, []int64{3}, deleted)
	assert.Len(t, fm.entries, 2)
	assert.Equal(t, "Deleted 3", fm.status)
	assert.Contains(t, fm.View(), "2 entries")
}

func TestDeleteFailureKeepsRow(t *testing.T) {
	m := newModel(context.Background(), makeEntries(1), true, func(context.Context, int64) error {
		return errors.New("boom")
	})
	next, cmd := m.Update(key("d"))
	next, _ = next.(model).Update(cmd())
	fm := next.(model)
	assert.Len(t, fm.entries, 1)
	assert.Contains(t, fm.status, "boom")
}

func TestDeleteDisabled(t *testing.T) {
	m := newModel(context.Background(), makeEntries(1), true, nil)
	_, cmd := m.Update(key("d"))
	assert.Nil(t, cmd)
}

func TestEmptyView(t *testing.T) {
	m := newModel(context.Background(), nil, true, nil)
	assert.Equal(t, "(no entries)\n", m.View())
}
