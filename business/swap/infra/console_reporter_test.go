package infra

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fd1az/uniswap-swapper/business/swap/domain"
)

func TestConsoleReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporterTo(&buf)

	r.Report(domain.Event{Step: domain.StepBalance, Status: domain.StatusRunning})
	if buf.Len() != 0 {
		t.Fatalf("expected running events to be silent, got %q", buf.String())
	}

	r.Report(domain.Event{Step: domain.StepBalance, Status: domain.StatusDone, Detail: "2 WETH"})
	r.Report(domain.Event{Step: domain.StepApprove, Status: domain.StatusSkipped, Detail: "allowance covers amount"})
	r.Report(domain.Event{Step: domain.StepRoute, Status: domain.StatusFailed, Detail: "NO_ROUTE"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Check balance") || !strings.Contains(lines[0], "2 WETH") {
		t.Errorf("unexpected line %q", lines[0])
	}
	if !strings.Contains(lines[2], "NO_ROUTE") {
		t.Errorf("unexpected line %q", lines[2])
	}
}
