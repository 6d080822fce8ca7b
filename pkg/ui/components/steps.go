// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Step statuses understood by StepsComponent.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// StepRow is one line of the progress list.
type StepRow struct {
	Name   string
	Status string
	Detail string
}

// StepsComponent renders an ordered checklist of steps.
type StepsComponent struct {
	rows  []StepRow
	index map[string]int
}

// NewStepsComponent creates a component listing names as pending.
func NewStepsComponent(names []string) *StepsComponent {
	s := &StepsComponent{
		rows:  make([]StepRow, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		s.index[name] = len(s.rows)
		s.rows = append(s.rows, StepRow{Name: name, Status: StatusPending})
	}
	return s
}

// Update sets a step's status. An empty detail keeps the previous one.
func (s *StepsComponent) Update(name, status, detail string) {
	i, ok := s.index[name]
	if !ok {
		s.index[name] = len(s.rows)
		s.rows = append(s.rows, StepRow{Name: name, Status: status, Detail: detail})
		return
	}
	s.rows[i].Status = status
	if detail != "" {
		s.rows[i].Detail = detail
	}
}

// Rows returns a copy of the current rows.
func (s *StepsComponent) Rows() []StepRow {
	out := make([]StepRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// View renders the list. spinner is drawn next to running steps.
func (s *StepsComponent) View(spinner string) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	success := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	running := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failed := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))

	var sb strings.Builder
	for _, row := range s.rows {
		var icon string
		var style lipgloss.Style

		switch row.Status {
		case StatusDone:
			icon, style = "✓", success
		case StatusRunning:
			icon, style = spinner, running
		case StatusSkipped:
			icon, style = "–", muted
		case StatusFailed:
			icon, style = "✗", failed
		default:
			icon, style = "○", muted
		}

		line := fmt.Sprintf("  %s %s", style.Render(icon), name.Render(fmt.Sprintf("%-18s", row.Name)))
		if row.Detail != "" {
			line += " " + style.Render(row.Detail)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
