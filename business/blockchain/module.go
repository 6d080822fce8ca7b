// Package blockchain implements the blockchain bounded context: the signing
// identity and gas pricing.
package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/uniswap-swapper/business/blockchain/app"
	blockchainDI "github.com/fd1az/uniswap-swapper/business/blockchain/di"
	"github.com/fd1az/uniswap-swapper/business/blockchain/infra/ethereum"
	"github.com/fd1az/uniswap-swapper/internal/config"
	"github.com/fd1az/uniswap-swapper/internal/di"
	"github.com/fd1az/uniswap-swapper/internal/logger"
	"github.com/fd1az/uniswap-swapper/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		client := sr.Get(monolith.ServiceEthClient).(*ethclient.Client)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		oracle, err := ethereum.NewGasOracle(client, ethereum.DefaultGasOracleConfig(), log)
		if err != nil {
			panic(err)
		}
		return oracle
	})

	di.RegisterToken(c, blockchainDI.Wallet, func(sr di.ServiceRegistry) app.Wallet {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		client := sr.Get(monolith.ServiceEthClient).(*ethclient.Client)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		oracle := blockchainDI.GetGasOracle(sr)

		wallet, err := ethereum.NewWallet(client, oracle, cfg.Wallet.PrivateKey, ethereum.WalletConfig{
			ChainID:      new(big.Int).SetUint64(cfg.Ethereum.ChainID),
			PollInterval: cfg.Swap.ConfirmationPollInterval,
		}, log)
		if err != nil {
			panic(err)
		}
		return wallet
	})

	return nil
}

// Startup builds the wallet and checks the node serves the configured chain.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	wallet, err := di.TryGetToken(mono.Services(), blockchainDI.Wallet)
	if err != nil {
		return err
	}

	if verifier, ok := wallet.(interface{ VerifyChain(context.Context) error }); ok {
		if err := verifier.VerifyChain(ctx); err != nil {
			return err
		}
	}

	log.Info(ctx, "blockchain module started", "wallet", wallet.Address().Hex())
	return nil
}
