package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/obsforge/obsvalidate/types"
)

// keyMap defines the summary browser key bindings.
type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous cycle"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next cycle"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// SummaryModel is a Bubble Tea model browsing a batch summary.
type SummaryModel struct {
	summary  *types.BatchSummary
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewSummaryModel creates a summary browser model.
func NewSummaryModel(summary *types.BatchSummary) SummaryModel {
	return SummaryModel{summary: summary}
}

// Init implements tea.Model.
func (m SummaryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.summary.Cycles)-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m SummaryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Batch Processing Summary"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Cycles", m.summary.TotalCycles, highlightColor),
		m.renderStatBox("Processed", m.summary.ProcessedCycles, successColor),
		m.renderStatBox("Failed", m.summary.FailedCycles, errorColor),
		m.renderStatBox("Skipped", m.summary.Execution.Skipped, warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	b.WriteString(m.renderCycleList())
	b.WriteString("\n")
	b.WriteString(m.renderSelectedCycle())

	help := HelpStyle.Render("↑/↓ select cycle · q quit")
	return b.String() + "\n" + help
}

func (m SummaryModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

func (m SummaryModel) renderCycleList() string {
	if len(m.summary.Cycles) == 0 {
		return "No cycles processed."
	}

	var b strings.Builder
	for i, c := range m.summary.Cycles {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		status := StatusStyle(string(c.Execution.Status)).Render(string(c.Execution.Status))
		fmt.Fprintf(&b, "%s%s  %s\n", cursor, c.Identity.Name(), status)
	}
	return b.String()
}

func (m SummaryModel) renderSelectedCycle() string {
	if m.cursor >= len(m.summary.Cycles) {
		return ""
	}
	c := m.summary.Cycles[m.cursor]

	var b strings.Builder
	fmt.Fprintf(&b, "Included types: %d  Unresolved: %d  Unclassified: %d\n",
		len(c.Included), len(c.Unresolved), len(c.Unclassified))
	if c.JobCardGenerated {
		fmt.Fprintf(&b, "Job card: %s\n", c.JobCardPath)
	}
	fmt.Fprintf(&b, "Execution: %s\n", c.Execution.String())
	if c.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", c.Error)
	}
	return b.String()
}

// Run starts the summary browser.
func Run(summary *types.BatchSummary) error {
	model := NewSummaryModel(summary)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
