package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Percent is a rational percentage, Num/Den.
type Percent struct {
	Num int64
	Den int64
}

// NewPercent creates Num/Den. Den must be positive.
func NewPercent(num, den int64) Percent {
	return Percent{Num: num, Den: den}
}

// Decimal returns the value as a percentage, e.g. 5/100 -> 5.
func (p Percent) Decimal() decimal.Decimal {
	return decimal.NewFromInt(p.Num).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(p.Den))
}

// MinimumOut applies the tolerance to an exact-input quote:
// out / (1 + Num/Den), rounded down.
func (p Percent) MinimumOut(out *big.Int) *big.Int {
	num := new(big.Int).Mul(out, big.NewInt(p.Den))
	den := big.NewInt(p.Den + p.Num)
	return num.Quo(num, den)
}

func (p Percent) String() string {
	return fmt.Sprintf("%s%%", p.Decimal().String())
}
