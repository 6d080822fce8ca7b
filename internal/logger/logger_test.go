package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fd1az/uniswap-swapper/internal/logger"
)

func TestLogger_JSONWithTraceID(t *testing.T) {
	var buf bytes.Buffer
	traceID := func(ctx context.Context) string { return "abc123" }

	log := logger.NewWithFormat(&buf, logger.FormatJSON, logger.LevelInfo, "swap", traceID)
	log.Info(context.Background(), "route found", "fee_tier", 3000)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON record, got %q: %v", buf.String(), err)
	}

	if record["msg"] != "route found" {
		t.Errorf("unexpected msg %v", record["msg"])
	}
	if record["service"] != "swap" {
		t.Errorf("expected service attr, got %v", record["service"])
	}
	if record["trace_id"] != "abc123" {
		t.Errorf("expected trace_id, got %v", record["trace_id"])
	}
	if record["fee_tier"] != float64(3000) {
		t.Errorf("expected fee_tier 3000, got %v", record["fee_tier"])
	}
	if _, ok := record["file"]; !ok {
		t.Errorf("expected file attr in %v", record)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithFormat(&buf, logger.FormatJSON, logger.LevelWarn, "", nil)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logger.Level{
		"debug": logger.LevelDebug,
		"warn":  logger.LevelWarn,
		"error": logger.LevelError,
		"info":  logger.LevelInfo,
		"":      logger.LevelInfo,
	}
	for in, want := range tests {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
