package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/testbeacon/testbeacon/internal/store"
	"github.com/testbeacon/testbeacon/models"
)

// RunsModel shows recent runs with their pass/fail counts.
type RunsModel struct {
	store    *store.RunStore
	runs     []models.Run
	width    int
	height   int
	lastLoad time.Time
	loading  bool
}

// runsLoadedMsg carries loaded run history.
type runsLoadedMsg struct{ runs []models.Run }

// NewRunsModel creates a RunsModel.
func NewRunsModel(st *store.RunStore) RunsModel {
	return RunsModel{store: st, loading: true}
}

func (m RunsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m RunsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		runs, _ := m.store.ListRuns(context.Background(), "", 20)
		return runsLoadedMsg{runs: runs}
	}
}

func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runsLoadedMsg:
		m.runs = msg.runs
		m.loading = false
		m.lastLoad = time.Now()
		// Refresh every 10 seconds.
		return m, tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
			return m.loadCmd()()
		})
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadCmd()
		}
	}
	return m, nil
}

func (m *RunsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m RunsModel) View() string {
	if m.loading && len(m.runs) == 0 {
		return panelStyle.Width(max(20, m.width-2)).Render("Loading runs...")
	}

	// Summary counts across the listed window.
	var passed, failed, skipped int
	for _, r := range m.runs {
		passed += r.Passed
		failed += r.Failed
		skipped += r.Skipped
	}

	cardW := 18
	if m.width >= 100 {
		cardW = 20
	}
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCounter("Passed", passed, passStyle, cardW),
		renderCounter("Failed", failed, failStyle, cardW),
		renderCounter("Skipped", skipped, skipStyle, cardW),
	)

	lineLimit := max(5, m.height-12)
	rows := ""
	for i, r := range m.runs {
		if i >= lineLimit {
			break
		}
		counts := fmt.Sprintf("%d/%d passed  %.0f%%", r.Passed, r.Total, r.PassRate)
		row := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(16).Foreground(ink).Render(truncate(r.Suite, 15)),
			lipgloss.NewStyle().Width(14).Foreground(slate).Render(truncate(r.Branch, 13)),
			lipgloss.NewStyle().Width(12).Render(runBadge(r.Failed, r.Total)),
			lipgloss.NewStyle().Width(22).Foreground(slate).Render(counts),
			dimStyle.Render(r.CompletedAt),
		)
		rows += row + "\n"
	}

	if len(m.runs) == 0 {
		rows = dimStyle.Render("No runs yet. Run: testbeacon report --input results.jsonl\n")
	}

	updated := "never"
	if !m.lastLoad.IsZero() {
		updated = m.lastLoad.Format("15:04:05")
	}
	refreshInfo := lipgloss.JoinHorizontal(lipgloss.Left,
		keycapStyle.Render("r"),
		" ",
		dimStyle.Render("refresh"),
		"   ",
		dimStyle.Render("updated "+updated),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(summary),
		panelStyle.Width(max(20, m.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Recent Runs"),
				dimStyle.Render("Suite           Branch        Status      Results               Completed"),
				rows,
				refreshInfo,
			),
		),
	)
}

func renderCounter(label string, count int, style lipgloss.Style, width int) string {
	return boxStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			style.Render(fmt.Sprintf("%d", count)),
			dimStyle.Render(label),
		),
	) + "  "
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}
