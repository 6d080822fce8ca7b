package ui

import "github.com/fd1az/uniswap-swapper/business/swap/domain"

// Message types for TUI updates

// StepMsg is sent when a swap step changes status.
type StepMsg struct {
	Event domain.Event
}

// DoneMsg is sent when the run finishes. Err is nil on success.
type DoneMsg struct {
	Err error
}
