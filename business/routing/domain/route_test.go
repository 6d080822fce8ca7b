package domain_test

import (
	"math/big"
	"testing"

	"github.com/fd1az/uniswap-swapper/business/routing/domain"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
)

func TestPercent_MinimumOut(t *testing.T) {
	tests := []struct {
		name string
		pct  domain.Percent
		out  int64
		want int64
	}{
		{name: "five_percent", pct: domain.NewPercent(5, 100), out: 1050, want: 1000},
		{name: "rounds_down", pct: domain.NewPercent(5, 100), out: 1000, want: 952},
		{name: "zero", pct: domain.NewPercent(0, 100), out: 1000, want: 1000},
		{name: "half_bip", pct: domain.NewPercent(1, 2000), out: 2001, want: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pct.MinimumOut(big.NewInt(tt.out))
			if got.Int64() != tt.want {
				t.Errorf("expected %d, got %s", tt.want, got)
			}
		})
	}
}

func TestPercent_String(t *testing.T) {
	if s := domain.NewPercent(5, 100).String(); s != "5%" {
		t.Errorf("expected 5%%, got %s", s)
	}
	if s := domain.NewPercent(1, 200).String(); s != "0.5%" {
		t.Errorf("expected 0.5%%, got %s", s)
	}
}

func TestSwapRequest_Validate(t *testing.T) {
	amount, _ := asset.ParseString(asset.WETH, "1")
	valid := domain.SwapRequest{
		AmountIn:  amount,
		TokenOut:  asset.UNI,
		TradeType: domain.ExactInput,
		Options: domain.SwapOptions{
			SlippageTolerance: domain.NewPercent(5, 100),
			Deadline:          big.NewInt(1700001800),
		},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exactOut := valid
	exactOut.TradeType = domain.ExactOutput
	if err := exactOut.Validate(); !apperror.HasCode(err, apperror.CodeUnsupportedTrade) {
		t.Errorf("expected UNSUPPORTED_TRADE_TYPE, got %v", err)
	}

	same := valid
	same.TokenOut = asset.WETH
	if err := same.Validate(); !apperror.HasCode(err, apperror.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}

	noDeadline := valid
	noDeadline.Options.Deadline = nil
	if err := noDeadline.Validate(); !apperror.HasCode(err, apperror.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
