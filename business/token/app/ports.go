// Package app contains the token descriptors and the ports they bind to.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	bcdomain "github.com/fd1az/uniswap-swapper/business/blockchain/domain"
)

// ERC20 is a bound token contract handle.
type ERC20 interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, signer Signer, spender common.Address, amount *big.Int) (common.Hash, error)
}

// Binder binds a token address to the network connection.
type Binder func(address common.Address) ERC20

// Holder is an account whose balances can be checked.
type Holder interface {
	Address() common.Address
}

// Signer submits transactions on behalf of its address.
type Signer interface {
	Holder
	SendTransaction(ctx context.Context, req bcdomain.TxRequest) (common.Hash, error)
}
