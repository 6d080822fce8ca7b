// Package token implements the token bounded context: ERC-20 descriptors,
// contract handles and balance checks.
package token

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/uniswap-swapper/business/token/app"
	tokenDI "github.com/fd1az/uniswap-swapper/business/token/di"
	"github.com/fd1az/uniswap-swapper/business/token/infra/erc20"
	"github.com/fd1az/uniswap-swapper/internal/asset"
	"github.com/fd1az/uniswap-swapper/internal/config"
	"github.com/fd1az/uniswap-swapper/internal/di"
	"github.com/fd1az/uniswap-swapper/internal/monolith"
)

// Module implements the token bounded context.
type Module struct{}

// RegisterServices registers the token registry for the configured chain.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, tokenDI.Registry, func(sr di.ServiceRegistry) *app.Registry {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		client := sr.Get(monolith.ServiceEthClient).(*ethclient.Client)
		assets := sr.Get(monolith.ServiceAssetRegistry).(*asset.Registry)

		bind := func(address common.Address) app.ERC20 {
			return erc20.New(address, client)
		}

		registry, err := app.NewRegistry(assets, cfg.Ethereum.ChainID, bind, cfg.Swap.TokenIn, cfg.Swap.TokenOut)
		if err != nil {
			panic(err)
		}
		return registry
	})

	return nil
}

// Startup resolves the registry so unknown tokens fail before any RPC.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	registry, err := di.TryGetToken(mono.Services(), tokenDI.Registry)
	if err != nil {
		return err
	}

	cfg := mono.Config()
	mono.Logger().Info(ctx, "token module started",
		"chain_id", registry.ChainID(),
		"token_in", cfg.Swap.TokenIn,
		"token_out", cfg.Swap.TokenOut,
	)
	return nil
}
