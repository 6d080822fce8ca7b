// Package swap implements the swap bounded context: the orchestrator that
// checks balances, approves the router and submits the swap.
package swap

import (
	"context"

	blockchainDI "github.com/fd1az/uniswap-swapper/business/blockchain/di"
	routingDI "github.com/fd1az/uniswap-swapper/business/routing/di"
	routingdomain "github.com/fd1az/uniswap-swapper/business/routing/domain"
	"github.com/fd1az/uniswap-swapper/business/swap/app"
	swapDI "github.com/fd1az/uniswap-swapper/business/swap/di"
	"github.com/fd1az/uniswap-swapper/business/swap/infra"
	tokenDI "github.com/fd1az/uniswap-swapper/business/token/di"
	"github.com/fd1az/uniswap-swapper/internal/config"
	"github.com/fd1az/uniswap-swapper/internal/di"
	"github.com/fd1az/uniswap-swapper/internal/logger"
	"github.com/fd1az/uniswap-swapper/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct{}

// RegisterServices registers the reporter and the swapper.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, swapDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		if cfg.Swap.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	di.RegisterToken(c, swapDI.Swapper, func(sr di.ServiceRegistry) *app.Swapper {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		registry := tokenDI.GetRegistry(sr)

		tokenIn, err := registry.BySymbol(cfg.Swap.TokenIn)
		if err != nil {
			panic(err)
		}
		tokenOut, err := registry.BySymbol(cfg.Swap.TokenOut)
		if err != nil {
			panic(err)
		}

		swapper, err := app.NewSwapper(
			blockchainDI.GetWallet(sr),
			tokenIn,
			tokenOut,
			routingDI.GetRouter(sr),
			swapDI.GetReporter(sr),
			app.Config{
				Router:                cfg.Uniswap.RouterAddressHex(),
				SlippageTolerance:     routingdomain.NewPercent(cfg.Swap.SlippageTolerance, 100),
				Deadline:              cfg.Swap.Deadline,
				GasLimit:              cfg.Swap.GasLimit,
				ApprovalConfirmations: cfg.Swap.ApprovalConfirmations,
			},
			log,
		)
		if err != nil {
			panic(err)
		}
		return swapper
	})

	return nil
}

// Startup builds the swapper and starts its reporter.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	if _, err := di.TryGetToken(mono.Services(), swapDI.Swapper); err != nil {
		return err
	}

	if err := swapDI.GetReporter(mono.Services()).Start(ctx); err != nil {
		return err
	}

	cfg := mono.Config()
	mono.Logger().Info(ctx, "swap module started",
		"router", cfg.Uniswap.RouterAddressHex().Hex(),
		"slippage", routingdomain.NewPercent(cfg.Swap.SlippageTolerance, 100).String(),
		"deadline", cfg.Swap.Deadline.String(),
	)
	return nil
}
