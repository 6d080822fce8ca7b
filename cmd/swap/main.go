// Package main is the entry point for the Uniswap swapper.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/uniswap-swapper/business/blockchain"
	"github.com/fd1az/uniswap-swapper/business/routing"
	"github.com/fd1az/uniswap-swapper/business/swap"
	swapDI "github.com/fd1az/uniswap-swapper/business/swap/di"
	"github.com/fd1az/uniswap-swapper/business/token"
	"github.com/fd1az/uniswap-swapper/internal/apm"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/config"
	"github.com/fd1az/uniswap-swapper/internal/logger"
	"github.com/fd1az/uniswap-swapper/internal/metrics"
	"github.com/fd1az/uniswap-swapper/internal/monolith"
	"github.com/fd1az/uniswap-swapper/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type options struct {
	configPath string
	tuiMode    bool
	noWait     bool
	amount     string
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	tuiMode := flag.Bool("tui", false, "Show progress in a terminal UI")
	noWait := flag.Bool("no-wait", false, "Exit after submission without waiting for the receipt")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: swap [flags] <amount>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("uniswap-swapper %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Exactly one positional amount, checked before any network access.
	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "error: expected exactly one amount argument, got %d\n", flag.NArg())
		flag.Usage()
		os.Exit(apperror.ExitUsage)
	}
	if strings.TrimSpace(flag.Arg(0)) == "" {
		fmt.Fprintf(os.Stderr, "error: %v\n", apperror.New(apperror.CodeMissingAmount,
			apperror.WithContext("usage: swap [flags] <amount>")))
		os.Exit(apperror.ExitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := run(ctx, options{
		configPath: *configPath,
		tuiMode:    *tuiMode,
		noWait:     *noWait,
		amount:     flag.Arg(0),
	})
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode()
	}
	return apperror.ExitFailure
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return apperror.New(apperror.CodeConfigurationError, apperror.WithCause(err))
	}
	cfg.Swap.TUIMode = opts.tuiMode
	wait := cfg.Swap.WaitForReceipt && !opts.noWait

	log := newLogger(cfg, opts.tuiMode)
	log.Info(ctx, "starting uniswap swapper",
		"version", version,
		"environment", cfg.App.Environment,
		"chain_id", cfg.Ethereum.ChainID,
	)

	shutdown, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("telemetry"))
	}
	defer shutdown()

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		return apperror.New(apperror.CodeEthereumConnectionFailed, apperror.WithCause(err))
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&blockchain.Module{}, // wallet and gas oracle
		&token.Module{},      // token registry for the chain
		&routing.Module{},    // router backend, depends on blockchain for gas
		&swap.Module{},       // orchestrator, depends on all of the above
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	execute := func(ctx context.Context) error {
		if err := mono.StartModules(ctx, modules...); err != nil {
			return err
		}
		return runSwap(ctx, mono, opts.amount, wait)
	}

	if opts.tuiMode {
		err = runTUI(ctx, execute)
	} else {
		err = execute(ctx)
	}

	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			log.Debug(ctx, "swap failed", "error", appErr.ToLog())
		}
	}
	return err
}

func runSwap(ctx context.Context, mono *monolith.App, amount string, wait bool) error {
	swapper := swapDI.GetSwapper(mono.Services())
	reporter := swapDI.GetReporter(mono.Services())
	defer reporter.Stop()

	sub, err := swapper.Run(ctx, amount)
	if err != nil {
		return err
	}

	if !wait {
		sub.Detach(ctx)
		return nil
	}

	_, err = sub.Wait(ctx)
	return err
}

func runTUI(ctx context.Context, execute func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := ui.NewProgram("Uniswap Swapper")

	errCh := make(chan error, 1)
	go func() {
		err := execute(ctx)
		ui.Send(ui.DoneMsg{Err: err})
		errCh <- err
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(ui.Model); ok && m.Quitting() {
		cancel()
	}
	return <-errCh
}

func newLogger(cfg *config.Config, tuiMode bool) *logger.Logger {
	var out io.Writer = os.Stderr
	if tuiMode {
		// The TUI owns the terminal.
		out = io.Discard
	}

	return logger.NewWithFormat(out,
		logger.Format(cfg.App.LogFormat),
		logger.ParseLevel(cfg.App.LogLevel),
		cfg.App.Name,
		apm.TraceIDFromContext,
	)
}

// setupTelemetry installs the tracer and meter providers when telemetry is
// enabled. The returned func pushes metrics and flushes both providers.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	traceProvider, err := apm.NewTraceProvider(ctx, log,
		apm.WithProvider(apm.ParseProvider(cfg.Telemetry.TraceProvider)),
		apm.WithServiceName(cfg.Telemetry.ServiceName),
		apm.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
		apm.WithConsoleWriter(os.Stderr),
	)
	if err != nil {
		return nil, err
	}

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.NewPrometheusConfig(cfg.Telemetry.PushgatewayURL)),
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		metricOpts = append(metricOpts, metrics.WithProviderConfig(
			metrics.NewOtelCollectorConfig(cfg.Telemetry.OTLPEndpoint, nil, metrics.InsecureOtel)))
	}

	metricProvider, err := metrics.NewMetricProvider(ctx, metricOpts...)
	if err != nil {
		_ = traceProvider.Stop()
		return nil, err
	}

	log.Info(ctx, "telemetry initialized",
		"trace_provider", cfg.Telemetry.TraceProvider,
		"pushgateway", cfg.Telemetry.PushgatewayURL,
	)

	return func() {
		// The run context may already be cancelled.
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := metricProvider.Push(flushCtx); err != nil {
			log.Warn(flushCtx, "failed to push metrics", "error", err)
		}
		if err := metricProvider.Shutdown(flushCtx); err != nil {
			log.Warn(flushCtx, "failed to shut down metrics", "error", err)
		}
		if err := traceProvider.Stop(); err != nil {
			log.Warn(flushCtx, "failed to shut down tracing", "error", err)
		}
	}, nil
}
