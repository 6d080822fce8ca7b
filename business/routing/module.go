// Package routing implements the routing bounded context: finding the best
// path and quote for a swap and building its calldata.
package routing

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"

	blockchainDI "github.com/fd1az/uniswap-swapper/business/blockchain/di"
	"github.com/fd1az/uniswap-swapper/business/routing/app"
	routingDI "github.com/fd1az/uniswap-swapper/business/routing/di"
	"github.com/fd1az/uniswap-swapper/business/routing/infra/routingapi"
	"github.com/fd1az/uniswap-swapper/business/routing/infra/uniswap"
	"github.com/fd1az/uniswap-swapper/internal/config"
	"github.com/fd1az/uniswap-swapper/internal/di"
	"github.com/fd1az/uniswap-swapper/internal/logger"
	"github.com/fd1az/uniswap-swapper/internal/monolith"
)

// Module implements the routing bounded context.
type Module struct{}

// RegisterServices registers the router for the configured backend.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, routingDI.Router, func(sr di.ServiceRegistry) app.Router {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		switch cfg.Routing.Backend {
		case config.BackendAPI:
			client, err := routingapi.NewClient(routingapi.Config{
				BaseURL:           cfg.Routing.APIURL,
				APIKey:            cfg.Routing.APIKey,
				RequestsPerMinute: cfg.Routing.RequestsPerMinute,
				Timeout:           cfg.Routing.Timeout,
			}, log)
			if err != nil {
				panic(err)
			}
			return client

		default:
			client := sr.Get(monolith.ServiceEthClient).(*ethclient.Client)
			router, err := uniswap.NewRouter(client, blockchainDI.GetGasOracle(sr), uniswap.Config{
				Quoter:   cfg.Uniswap.QuoterAddressHex(),
				Router:   cfg.Uniswap.RouterAddressHex(),
				FeeTiers: cfg.Uniswap.FeeTiers,
			}, log)
			if err != nil {
				panic(err)
			}
			return router
		}
	})

	return nil
}

// Startup builds the router so a bad backend configuration fails early.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	router, err := di.TryGetToken(mono.Services(), routingDI.Router)
	if err != nil {
		return err
	}

	mono.Logger().Info(ctx, "routing module started",
		"backend", mono.Config().Routing.Backend,
		"router", fmt.Sprintf("%T", router),
	)
	return nil
}
