// Package app contains the swap orchestrator and its ports.
package app

import (
	"context"

	"github.com/fd1az/uniswap-swapper/business/swap/domain"
)

// Reporter displays the progress of a swap run.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report records a step transition.
	Report(event domain.Event)

	// Stop flushes and shuts down the reporter.
	Stop() error
}
