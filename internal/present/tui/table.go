// Package tui is an interactive entry browser built on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/quire/internal/present/format"
	"github.com/mithrel/quire/pkg/api"
)

// DeleteFunc removes an entry; nil disables the delete key.
type DeleteFunc func(ctx context.Context, id int64) error

// RenderTable opens an interactive table over entries. When the user picks an
// entry with enter, it is written to out with glamour after the program exits.
func RenderTable(ctx context.Context, out io.Writer, entries []api.Entry, headers bool, del DeleteFunc) error {
	m := newModel(ctx, entries, headers, del)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok {
		if sel, ok := fm.selected(); ok {
			return format.WritePrettyEntry(out, sel)
		}
	}
	return nil
}

type model struct {
	ctx          context.Context
	table        table.Model
	entries      []api.Entry
	del          DeleteFunc
	showIdx      int
	headers      bool
	width        int
	height       int
	status       string
	lastDuration time.Duration
}

func newModel(ctx context.Context, entries []api.Entry, headers bool, del DeleteFunc) model {
	m := model{ctx: ctx, entries: entries, del: del, showIdx: -1, headers: headers}
	m.table = table.New(table.WithColumns(m.columnsFor(8, 40, 16, 16)), table.WithFocused(true))
	m.updateRows()
	m.applyStyles()
	return m
}

func (m model) selected() (api.Entry, bool) {
	if m.showIdx < 0 || m.showIdx >= len(m.entries) {
		return api.Entry{}, false
	}
	return m.entries[m.showIdx], true
}

func (m *model) updateRows() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, table.Row{
			api.FormatID(e.ID),
			e.Title,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteResultMsg:
		m.lastDuration = msg.dur
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		// the row may have moved if another delete finished first
		for i, e := range m.entries {
			if e.ID == msg.id {
				m.entries = append(m.entries[:i], m.entries[i+1:]...)
				break
			}
		}
		m.updateRows()
		cur := min(m.table.Cursor(), len(m.entries)-1)
		m.table.SetCursor(max(cur, 0))
		m.status = fmt.Sprintf("Deleted %d", msg.id)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.entries) {
				m.showIdx = idx
			}
			return m, tea.Quit
		case "d":
			idx := m.table.Cursor()
			if m.del == nil || idx < 0 || idx >= len(m.entries) {
				return m, nil
			}
			id := m.entries[idx].ID
			m.status = fmt.Sprintf("Deleting %d…", id)
			return m, deleteCmd(m.ctx, m.del, id)
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) renderFooter() string {
	left := "↑/↓ to navigate • enter=show • q=exit"
	if m.del != nil {
		left = "↑/↓ to navigate • enter=show • d=delete • q=exit"
	}

	var right string
	if m.status != "" {
		if m.lastDuration > 0 {
			right = fmt.Sprintf("%s (%s) • ", m.status, m.lastDuration.Round(time.Millisecond))
		} else {
			right = m.status + " • "
		}
	}
	right += fmt.Sprintf("%d entries ", len(m.entries))

	space := max(m.table.Width()-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", space) + right
}

func (m model) View() string {
	if len(m.entries) == 0 {
		return "(no entries)\n"
	}
	return m.table.View() + "\n" + m.renderFooter() + "\n"
}

type deleteResultMsg struct {
	id  int64
	err error
	dur time.Duration
}

func deleteCmd(ctx context.Context, del DeleteFunc, id int64) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := del(ctx, id)
		return deleteResultMsg{id: id, err: err, dur: time.Since(start)}
	}
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-1))
	m.table.SetWidth(m.width)
	avail := m.width - 4
	if avail < 40 {
		return
	}
	idW, stampW := 8, 16
	titleW := max(avail-idW-2*stampW, 8)
	m.table.SetColumns(m.columnsFor(idW, titleW, stampW, stampW))
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.
			BorderBottom(false).
			Bold(false)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

// columnsFor returns columns with or without titles based on the headers flag.
func (m *model) columnsFor(idW, titleW, createdW, updatedW int) []table.Column {
	titles := [4]string{}
	if m.headers {
		titles = [4]string{"ID", "Title", "Created", "Updated"}
	}
	return []table.Column{
		{Title: titles[0], Width: idW},
		{Title: titles[1], Width: titleW},
		{Title: titles[2], Width: createdW},
		{Title: titles[3], Width: updatedW},
	}
}
