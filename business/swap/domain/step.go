// Package domain contains the swap run steps and the rules applied between them.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Step is one stage of a swap run, in execution order.
type Step int

const (
	StepValidate Step = iota
	StepIdentity
	StepParse
	StepBalance
	StepRoute
	StepAllowance
	StepApprove
	StepBuildTx
	StepGasCheck
	StepSubmit
	StepConfirm
)

// Steps lists every step in execution order.
var Steps = []Step{
	StepValidate, StepIdentity, StepParse, StepBalance, StepRoute,
	StepAllowance, StepApprove, StepBuildTx, StepGasCheck, StepSubmit, StepConfirm,
}

func (s Step) String() string {
	switch s {
	case StepValidate:
		return "Validate input"
	case StepIdentity:
		return "Resolve wallet"
	case StepParse:
		return "Parse amount"
	case StepBalance:
		return "Check balance"
	case StepRoute:
		return "Find route"
	case StepAllowance:
		return "Check allowance"
	case StepApprove:
		return "Approve router"
	case StepBuildTx:
		return "Build transaction"
	case StepGasCheck:
		return "Check gas balance"
	case StepSubmit:
		return "Submit swap"
	case StepConfirm:
		return "Wait for receipt"
	default:
		return "Unknown"
	}
}

// Status is the state of a step.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event reports a step transition to the progress reporter.
type Event struct {
	Step      Step
	Status    Status
	Detail    string
	TxHash    common.Hash
	Err       error
	Timestamp time.Time
}

// Outcome labels how a run ended, for metrics.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeSubmitted           Outcome = "submitted"
	OutcomeInvalidInput        Outcome = "invalid_input"
	OutcomeInsufficientBalance Outcome = "insufficient_balance"
	OutcomeNoRoute             Outcome = "no_route"
	OutcomeInsufficientGas     Outcome = "insufficient_gas"
	OutcomeReverted            Outcome = "reverted"
	OutcomeError               Outcome = "error"
)
