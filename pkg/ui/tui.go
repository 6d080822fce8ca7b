package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/uniswap-swapper/business/swap/domain"
	"github.com/fd1az/uniswap-swapper/pkg/ui/components"
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	title   string
	steps   *components.StepsComponent
	details *components.DetailsComponent
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	summary  string
	started  time.Time
	elapsed  time.Duration
	done     bool
	err      error
	quitting bool
	width    int
}

// New creates a new TUI model.
func New(title string) Model {
	names := make([]string, 0, len(domain.Steps))
	for _, s := range domain.Steps {
		names = append(names, s.String())
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		title:   title,
		steps:   components.NewStepsComponent(names),
		details: components.NewDetailsComponent(),
		spinner: sp,
		help:    help.New(),
		keys:    DefaultKeyMap(),
		started: time.Now(),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StepMsg:
		m.applyEvent(msg.Event)

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.elapsed = time.Since(m.started)
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(e domain.Event) {
	m.steps.Update(e.Step.String(), string(e.Status), e.Detail)

	if e.Status != domain.StatusDone {
		if e.TxHash != (common.Hash{}) && e.Step == domain.StepApprove {
			m.details.Set("Approval tx", e.TxHash.Hex())
		}
		return
	}

	switch e.Step {
	case domain.StepIdentity:
		m.details.Set("Wallet", e.Detail)
	case domain.StepRoute:
		m.summary = e.Detail
	case domain.StepApprove:
		m.details.Set("Approval tx", e.TxHash.Hex())
	case domain.StepSubmit:
		m.details.Set("Swap tx", e.TxHash.Hex())
	}
}

// Err returns the run error delivered by DoneMsg.
func (m Model) Err() error {
	return m.err
}

// Quitting reports whether the user quit before the run finished.
func (m Model) Quitting() bool {
	return m.quitting && !m.done
}

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(" " + m.title + " "))
	b.WriteString("\n\n")

	if m.summary != "" {
		b.WriteString("  " + SummaryStyle.Render(m.summary))
		b.WriteString("\n\n")
	}

	b.WriteString(m.steps.View(m.spinner.View()))

	if details := m.details.View(); details != "" {
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(details))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.done && m.err != nil:
		b.WriteString(ErrorStyle.Render("  ✗ " + m.err.Error()))
	case m.done:
		b.WriteString(SuccessStyle.Render(fmt.Sprintf("  ✓ Done in %s", m.elapsed.Round(time.Millisecond))))
	case m.quitting:
		b.WriteString(MutedValue.Render("  Cancelled"))
	default:
		b.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", time.Since(m.started).Round(time.Second))))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	}
	b.WriteString("\n")

	return b.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// NewProgram creates the program and stores it in Program.
func NewProgram(title string) *tea.Program {
	Program = tea.NewProgram(New(title))
	return Program
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
