package domain_test

import (
	"math/big"
	"testing"

	"github.com/fd1az/uniswap-swapper/business/blockchain/domain"
)

func TestConfirmations(t *testing.T) {
	tests := []struct {
		name         string
		receiptBlock uint64
		head         uint64
		want         uint64
	}{
		{name: "same_block", receiptBlock: 100, head: 100, want: 1},
		{name: "two_after", receiptBlock: 100, head: 102, want: 3},
		{name: "head_behind", receiptBlock: 100, head: 99, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.Confirmations(tt.receiptBlock, tt.head); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestGasEstimate(t *testing.T) {
	price := domain.NewGasPrice(big.NewInt(20_000_000_000)) // 20 gwei
	if price.Gwei() != 20 {
		t.Errorf("expected 20 gwei, got %f", price.Gwei())
	}

	est := domain.NewGasEstimate(200000, price)
	if est.TotalWei.String() != "4000000000000000" {
		t.Errorf("unexpected total %s", est.TotalWei)
	}
	if est.TotalEther().String() != "0.004" {
		t.Errorf("unexpected ether total %s", est.TotalEther())
	}
}
