package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_DefaultMessage(t *testing.T) {
	err := New(CodeNoRoute, WithContext("1.5 WETH to UNI"))

	if err.Message != messages[CodeNoRoute] {
		t.Errorf("expected catalog message, got %q", err.Message)
	}
	if !strings.Contains(err.Error(), "NO_ROUTE") || !strings.Contains(err.Error(), "(1.5 WETH to UNI)") {
		t.Errorf("unexpected error string %q", err.Error())
	}

	unknown := New(Code("SOMETHING_ELSE"))
	if unknown.Message != "SOMETHING_ELSE" {
		t.Errorf("expected code as fallback message, got %q", unknown.Message)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, CodeEthereumRPCError, "x") != nil {
		t.Fatal("expected nil for nil error")
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(cause, CodeEthereumRPCError, "balance")
	if wrapped.Code != CodeEthereumRPCError || !errors.Is(wrapped, cause) {
		t.Errorf("expected wrapped cause, got %v", wrapped)
	}

	inner := New(CodeNoRoute)
	rewrapped := Wrap(fmt.Errorf("route: %w", inner), CodeRoutingAPIError, "route request")
	if rewrapped.Code != CodeNoRoute {
		t.Errorf("expected existing code to be kept, got %s", rewrapped.Code)
	}
	if rewrapped.Context != "route request" {
		t.Errorf("expected empty context to be filled, got %q", rewrapped.Context)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("run: %w", New(CodeInsufficientGasBalance))

	if !HasCode(err, CodeInsufficientGasBalance) {
		t.Error("expected code to be found through wrapping")
	}
	if HasCode(err, CodeNoRoute) {
		t.Error("expected other codes not to match")
	}
	if GetCode(errors.New("plain")) != CodeUnknownError {
		t.Error("expected unknown code for plain errors")
	}
	if !IsAppError(err) {
		t.Error("expected wrapped AppError to be detected")
	}
}

func TestExitCode(t *testing.T) {
	tests := map[Code]int{
		CodeMissingAmount:            ExitUsage,
		CodeInvalidAmount:            ExitUsage,
		CodeNoRoute:                  ExitFailure,
		CodeInsufficientTokenBalance: ExitFailure,
		CodeTransactionReverted:      ExitFailure,
	}
	for code, want := range tests {
		if got := New(code).ExitCode(); got != want {
			t.Errorf("%s: expected %d, got %d", code, want, got)
		}
	}
}

func TestToLog(t *testing.T) {
	err := New(CodeTransactionReverted,
		WithContext("0xabc in block 10"),
		WithCause(errors.New("status 0")),
	).WithTraceID("trace-1")

	log := err.ToLog()
	for _, k := range []string{"code", "message", "timestamp", "context", "traceId", "cause", "stack"} {
		if _, ok := log[k]; !ok {
			t.Errorf("expected key %q in %v", k, log)
		}
	}
}
