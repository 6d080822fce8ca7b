// Package di contains dependency injection tokens for the token context.
package di

import (
	"github.com/fd1az/uniswap-swapper/business/token/app"
	"github.com/fd1az/uniswap-swapper/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Registry = di.NewToken[*app.Registry]("token.Registry")
)

func GetRegistry(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, Registry)
}
