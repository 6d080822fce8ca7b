// Package di contains dependency injection tokens for the routing context.
package di

import (
	"github.com/fd1az/uniswap-swapper/business/routing/app"
	"github.com/fd1az/uniswap-swapper/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Router = di.NewToken[app.Router]("routing.Router")
)

func GetRouter(c di.ServiceRegistry) app.Router {
	return di.GetToken(c, Router)
}
