// Package app contains the routing ports.
package app

import (
	"context"

	"github.com/fd1az/uniswap-swapper/business/routing/domain"
)

// Router finds a route for a swap request. A nil route with a nil error
// means no route exists for the pair and amount.
type Router interface {
	Route(ctx context.Context, req domain.SwapRequest) (*domain.Route, error)
}
