// Package infra contains the progress reporters for the swap context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/uniswap-swapper/business/swap/app"
	"github.com/fd1az/uniswap-swapper/business/swap/domain"
)

var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer

	done    lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
	muted   lipgloss.Style
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:     out,
		done:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	return nil
}

// Report prints finished steps. Running transitions are not printed.
func (r *ConsoleReporter) Report(e domain.Event) {
	var icon string
	var style lipgloss.Style

	switch e.Status {
	case domain.StatusDone:
		icon, style = "✓", r.done
	case domain.StatusSkipped:
		icon, style = "–", r.skipped
	case domain.StatusFailed:
		icon, style = "✗", r.failed
	default:
		return
	}

	line := fmt.Sprintf("%s %-18s", style.Render(icon), e.Step.String())
	if e.Detail != "" {
		line += " " + r.muted.Render(e.Detail)
	}
	fmt.Fprintln(r.out, line)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	return nil
}
