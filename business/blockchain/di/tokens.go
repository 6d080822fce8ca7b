// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/uniswap-swapper/business/blockchain/app"
	"github.com/fd1az/uniswap-swapper/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Wallet    = di.NewToken[app.Wallet]("blockchain.Wallet")
	GasOracle = di.NewToken[app.GasOracle]("blockchain.GasOracle")
)

// Helper functions for type-safe access
func GetWallet(c di.ServiceRegistry) app.Wallet {
	return di.GetToken(c, Wallet)
}

func GetGasOracle(c di.ServiceRegistry) app.GasOracle {
	return di.GetToken(c, GasOracle)
}
