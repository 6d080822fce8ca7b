package infra

import (
	"context"

	"github.com/fd1az/uniswap-swapper/business/swap/app"
	"github.com/fd1az/uniswap-swapper/business/swap/domain"
	"github.com/fd1az/uniswap-swapper/pkg/ui"
)

var _ app.Reporter = (*TUIReporter)(nil)

// TUIReporter implements Reporter for the Bubble Tea TUI. Events are sent
// to ui.Program; the program itself is run by the caller.
type TUIReporter struct{}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start initializes the TUI reporter.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// Report sends a step event to the TUI.
func (r *TUIReporter) Report(e domain.Event) {
	ui.Send(ui.StepMsg{Event: e})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	return nil
}
