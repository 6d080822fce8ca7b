// Package domain contains the swap request and route types.
package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
)

// TradeType fixes which side of the trade is exact.
type TradeType int

const (
	ExactInput TradeType = iota
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "exactIn"
	case ExactOutput:
		return "exactOut"
	default:
		return "unknown"
	}
}

// SwapOptions are the parameters the executed swap is bound by.
type SwapOptions struct {
	Recipient         common.Address
	SlippageTolerance Percent
	Deadline          *big.Int // Unix seconds
}

// SwapRequest asks a router for a path from AmountIn to TokenOut.
type SwapRequest struct {
	AmountIn  asset.Amount
	TokenOut  *asset.Asset
	TradeType TradeType
	Options   SwapOptions
}

// Validate checks the request is one the routers can serve.
func (r SwapRequest) Validate() error {
	if r.TradeType != ExactInput {
		return apperror.New(apperror.CodeUnsupportedTrade,
			apperror.WithContext(r.TradeType.String()))
	}
	if r.AmountIn.Asset() == nil || r.TokenOut == nil {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("swap request needs both tokens"))
	}
	if r.AmountIn.Asset().Equals(r.TokenOut) {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("token in and token out are the same"))
	}
	if r.Options.Deadline == nil || r.Options.Deadline.Sign() <= 0 {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("swap deadline is not set"))
	}
	return nil
}

// MethodParameters is a ready-to-send call into the swap router.
type MethodParameters struct {
	Calldata []byte
	Value    *big.Int
	To       common.Address
}

// Route is a router's answer: quoted output and executable calldata.
type Route struct {
	Quote            asset.Amount
	GasPriceWei      *big.Int
	EstimatedGasUsed uint64
	MethodParameters MethodParameters
	FeeTier          int
	Source           string
}

// ValueOrZero returns the native value to attach, zero when absent.
func (r *Route) ValueOrZero() *big.Int {
	if r.MethodParameters.Value == nil {
		return new(big.Int)
	}
	return r.MethodParameters.Value
}
