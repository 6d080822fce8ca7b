// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// GasPrice represents gas price information.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		Wei:       wei,
		Timestamp: time.Now(),
	}
}

// Gwei returns the price in gwei.
func (p *GasPrice) Gwei() float64 {
	return decimal.NewFromBigInt(p.Wei, -9).InexactFloat64()
}

// GasEstimate represents estimated gas costs for an operation.
type GasEstimate struct {
	GasLimit uint64
	GasPrice *GasPrice
	TotalWei *big.Int
}

// NewGasEstimate computes the total gas cost.
func NewGasEstimate(gasLimit uint64, gasPrice *GasPrice) *GasEstimate {
	totalWei := new(big.Int).Mul(gasPrice.Wei, new(big.Int).SetUint64(gasLimit))

	return &GasEstimate{
		GasLimit: gasLimit,
		GasPrice: gasPrice,
		TotalWei: totalWei,
	}
}

// TotalEther returns the total cost in ether.
func (e *GasEstimate) TotalEther() decimal.Decimal {
	return decimal.NewFromBigInt(e.TotalWei, -18)
}
