package asset

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExecutionPrice is the rate implied by a quote: how many units of quote are
// received per unit of base.
type ExecutionPrice struct {
	base  *Asset
	quote *Asset
	rate  decimal.Decimal
}

// NewExecutionPrice derives the price from an input and an output amount.
// A zero input yields a zero rate.
func NewExecutionPrice(in, out Amount) ExecutionPrice {
	p := ExecutionPrice{base: in.Asset(), quote: out.Asset(), rate: decimal.Zero}
	if in.IsZero() {
		return p
	}
	p.rate = out.ToDecimal().DivRound(in.ToDecimal(), int32(out.Asset().Decimals()))
	return p
}

// Rate returns the price as a decimal.
func (p ExecutionPrice) Rate() decimal.Decimal {
	return p.rate
}

// String renders the price as "12.5 UNI/WETH".
func (p ExecutionPrice) String() string {
	if p.base == nil || p.quote == nil {
		return "0"
	}
	return fmt.Sprintf("%s %s/%s", p.rate.StringFixed(6), p.quote.Symbol(), p.base.Symbol())
}
