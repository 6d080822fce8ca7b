// Package app contains the port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/uniswap-swapper/business/blockchain/domain"
)

// GasOracle defines the interface for gas price information.
type GasOracle interface {
	// GetGasPrice retrieves the current gas price.
	GetGasPrice(ctx context.Context) (*domain.GasPrice, error)

	// EstimateGas estimates the gas needed for a call, with a safety margin.
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// Wallet is the signing identity bound to the network connection.
type Wallet interface {
	// Address is the account that signs and pays for transactions.
	Address() common.Address

	// Balance returns the native currency balance in wei.
	Balance(ctx context.Context) (*big.Int, error)

	// SendTransaction signs and submits req, returning its hash.
	SendTransaction(ctx context.Context, req domain.TxRequest) (common.Hash, error)

	// WaitConfirmations blocks until the transaction is mined and buried
	// under the given number of blocks (counting its own).
	WaitConfirmations(ctx context.Context, hash common.Hash, confirmations uint64) (*domain.Receipt, error)
}
