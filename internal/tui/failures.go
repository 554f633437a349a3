package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/testbeacon/testbeacon/internal/store"
)

// failureRow is one failed test joined with its run.
type failureRow struct {
	RunID  int64
	Suite  string
	Title  string
	File   string
	Error  string
	SeenAt string
}

// FailuresModel lists failed tests from recent runs, newest run first.
type FailuresModel struct {
	store   *store.RunStore
	rows    []failureRow
	offset  int
	width   int
	height  int
	loading bool
}

type failuresLoadedMsg struct{ rows []failureRow }

// NewFailuresModel creates a FailuresModel.
func NewFailuresModel(st *store.RunStore) FailuresModel {
	return FailuresModel{store: st, loading: true}
}

func (m FailuresModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m FailuresModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		runs, err := m.store.ListRuns(ctx, "", 10)
		if err != nil {
			return failuresLoadedMsg{}
		}

		var rows []failureRow
		for _, r := range runs {
			if r.Failed == 0 {
				continue
			}
			failures, err := m.store.FailuresForRun(ctx, r.ID)
			if err != nil {
				continue
			}
			for _, f := range failures {
				rows = append(rows, failureRow{
					RunID:  r.ID,
					Suite:  r.Suite,
					Title:  f.Title,
					File:   f.File,
					Error:  f.Error,
					SeenAt: r.CompletedAt,
				})
			}
		}
		return failuresLoadedMsg{rows: rows}
	}
}

func (m FailuresModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case failuresLoadedMsg:
		m.rows = msg.rows
		m.loading = false
		m.offset = 0
		return m, tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
			return m.loadCmd()()
		})
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "j", "down":
			if m.offset < len(m.rows)-1 {
				m.offset++
			}
		case "k", "up":
			if m.offset > 0 {
				m.offset--
			}
		}
	}
	return m, nil
}

func (m *FailuresModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m FailuresModel) View() string {
	if m.loading && len(m.rows) == 0 {
		return panelStyle.Width(max(20, m.width-2)).Render("Loading failures...")
	}

	if len(m.rows) == 0 {
		return panelStyle.Width(max(20, m.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Failures"),
				"",
				passStyle.Render("No failed tests in the last 10 runs."),
			),
		)
	}

	lineLimit := max(4, (m.height-8)/3)
	body := ""
	shown := 0
	for i := m.offset; i < len(m.rows) && shown < lineLimit; i++ {
		row := m.rows[i]
		head := lipgloss.JoinHorizontal(lipgloss.Left,
			failStyle.Render("✗ "),
			lipgloss.NewStyle().Foreground(ink).Render(truncate(row.Title, 60)),
			dimStyle.Render(fmt.Sprintf("  run #%d · %s", row.RunID, row.Suite)),
		)
		body += head + "\n"
		if row.File != "" {
			body += "  " + dimStyle.Render(row.File) + "\n"
		}
		if row.Error != "" {
			body += "  " + lipgloss.NewStyle().Foreground(slate).Render(truncate(row.Error, max(20, m.width-8))) + "\n"
		}
		shown++
	}

	footer := dimStyle.Render(fmt.Sprintf("%d failed tests  ·  j/k scroll  ·  r refresh", len(m.rows)))

	return panelStyle.Width(max(20, m.width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			panelHeaderStyle.Render("Failures"),
			"",
			body,
			footer,
		),
	)
}
