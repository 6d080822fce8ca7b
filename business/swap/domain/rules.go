package domain

import (
	"fmt"
	"math/big"

	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
)

// ApprovalHeadroom multiplies the swap amount into the approved allowance.
const ApprovalHeadroom = 1000

var oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ApprovalAmount is the allowance granted to the router when the current one
// is short: amountIn (already in smallest units) × 1000 × 10^18.
func ApprovalAmount(amountIn *big.Int) *big.Int {
	out := new(big.Int).Mul(amountIn, big.NewInt(ApprovalHeadroom))
	return out.Mul(out, oneEther)
}

// NeedsApproval reports whether allowance does not cover amountIn.
func NeedsApproval(allowance, amountIn *big.Int) bool {
	return allowance.Cmp(amountIn) < 0
}

// HasGasFor compares the native balance against the gas limit alone, not
// limit × price.
func HasGasFor(balance *big.Int, gasLimit uint64) bool {
	return balance.Cmp(new(big.Int).SetUint64(gasLimit)) >= 0
}

// Summary is the "Swapping X for Y" line. The input is shown in whole units,
// the quote with every decimal place of the output token.
func Summary(in, quote asset.Amount) string {
	return fmt.Sprintf("Swapping %s for %s", in.String(), quote.StringFull())
}

// OutcomeOf classifies a run error.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	switch apperror.GetCode(err) {
	case apperror.CodeMissingAmount, apperror.CodeInvalidAmount:
		return OutcomeInvalidInput
	case apperror.CodeInsufficientTokenBalance:
		return OutcomeInsufficientBalance
	case apperror.CodeNoRoute:
		return OutcomeNoRoute
	case apperror.CodeInsufficientGasBalance:
		return OutcomeInsufficientGas
	case apperror.CodeTransactionReverted:
		return OutcomeReverted
	default:
		return OutcomeError
	}
}
