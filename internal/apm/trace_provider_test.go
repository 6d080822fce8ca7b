package apm_test

import (
	"bytes"
	"context"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/fd1az/uniswap-swapper/internal/apm"
	"github.com/fd1az/uniswap-swapper/internal/logger"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in   string
		want apm.Provider
	}{
		{in: "console", want: apm.ConsoleProvider},
		{in: "ZIPKIN", want: apm.ZipkinProvider},
		{in: "otlpgrpc", want: apm.OTLPGRPCProvider},
		{in: "otlphttp", want: apm.OTLPHTTPProvider},
		{in: "newrelic", want: apm.EmptyProvider},
		{in: "", want: apm.EmptyProvider},
	}

	for _, tt := range tests {
		if got := apm.ParseProvider(tt.in); got != tt.want {
			t.Errorf("ParseProvider(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestConsoleProvider_TraceIDInContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	tp, err := apm.NewTraceProvider(ctx, logger.NewNop(),
		apm.WithProvider(apm.ConsoleProvider),
		apm.WithServiceName("test"),
		apm.WithConsoleWriter(&buf),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := apm.TraceIDFromContext(ctx); got != "" {
		t.Errorf("expected empty trace id without span, got %s", got)
	}

	spanCtx, span := otel.Tracer("test").Start(ctx, "op")
	if got := apm.TraceIDFromContext(spanCtx); len(got) != 32 {
		t.Errorf("expected 32-char trace id, got %q", got)
	}
	span.End()

	if err := tp.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"Name": "op"`)) {
		t.Errorf("expected exported span in console output, got %s", buf.String())
	}
}
