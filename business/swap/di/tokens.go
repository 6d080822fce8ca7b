// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/fd1az/uniswap-swapper/business/swap/app"
	"github.com/fd1az/uniswap-swapper/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Swapper  = di.NewToken[*app.Swapper]("swap.Swapper")
	Reporter = di.NewToken[app.Reporter]("swap.Reporter")
)

// Helper functions for type-safe access
func GetSwapper(c di.ServiceRegistry) *app.Swapper {
	return di.GetToken(c, Swapper)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
