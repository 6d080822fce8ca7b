package app_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/uniswap-swapper/business/token/app"
	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
)

type holder common.Address

func (h holder) Address() common.Address { return common.Address(h) }

type fakeERC20 struct {
	address  common.Address
	balance  *big.Int
	err      error
	balCalls *int
}

func (f *fakeERC20) Address() common.Address { return f.address }

func (f *fakeERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	*f.balCalls++
	return f.balance, f.err
}

func (f *fakeERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *fakeERC20) Approve(ctx context.Context, signer app.Signer, spender common.Address, amount *big.Int) (common.Hash, error) {
	return common.Hash{}, nil
}

func binderWith(balance *big.Int, err error, calls *int) app.Binder {
	return func(address common.Address) app.ERC20 {
		return &fakeERC20{address: address, balance: balance, err: err, balCalls: calls}
	}
}

func TestToken_WalletHas(t *testing.T) {
	tests := []struct {
		name     string
		balance  string
		required string
		want     bool
	}{
		{name: "more", balance: "2.0", required: "1.5", want: true},
		{name: "equal", balance: "1.5", required: "1.5", want: true},
		{name: "less", balance: "0.05", required: "0.1", want: false},
		{name: "zero_required", balance: "0", required: "0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bal, _ := asset.ParseString(asset.WETH, tt.balance)
			required, _ := asset.ParseString(asset.WETH, tt.required)
			calls := 0

			token := app.NewToken(asset.WETH, binderWith(bal.Raw(), nil, &calls))

			ok, got, err := token.WalletHas(context.Background(), holder{}, required)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("expected %v, got %v", tt.want, ok)
			}
			if got.Raw().Cmp(bal.Raw()) != 0 {
				t.Errorf("expected balance %s, got %s", bal.Raw(), got.Raw())
			}
			if calls != 1 {
				t.Errorf("expected exactly one balanceOf call, got %d", calls)
			}
		})
	}
}

func TestToken_WalletHas_PropagatesError(t *testing.T) {
	calls := 0
	rpcErr := errors.New("timeout")
	token := app.NewToken(asset.WETH, binderWith(nil, rpcErr, &calls))

	_, _, err := token.WalletHas(context.Background(), holder{}, asset.Zero(asset.WETH))
	if !errors.Is(err, rpcErr) {
		t.Errorf("expected rpc error, got %v", err)
	}
}

func TestToken_ContractBindsAddress(t *testing.T) {
	calls := 0
	token := app.NewToken(asset.UNI, binderWith(nil, nil, &calls))

	if token.Contract().Address() != asset.AddrUNIEthereum {
		t.Errorf("expected UNI address")
	}
	if token.Contract() == token.Contract() {
		t.Errorf("expected a fresh handle per call")
	}
}

func TestRegistry(t *testing.T) {
	calls := 0
	bind := binderWith(nil, nil, &calls)

	r, err := app.NewRegistry(asset.DefaultRegistry(), asset.ChainIDEthereum, bind, "WETH", "uni")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uni, err := r.BySymbol("UNI")
	if err != nil || uni.Asset().Decimals() != 18 {
		t.Errorf("expected UNI with 18 decimals, got %v", err)
	}

	if _, err := r.BySymbol("DAI"); !apperror.HasCode(err, apperror.CodeUnknownToken) {
		t.Errorf("expected UNKNOWN_TOKEN, got %v", err)
	}

	_, err = app.NewRegistry(asset.DefaultRegistry(), asset.ChainIDSepolia, bind, "WETH")
	if !apperror.HasCode(err, apperror.CodeUnknownToken) {
		t.Errorf("expected UNKNOWN_TOKEN for unknown chain, got %v", err)
	}

	_, err = app.NewRegistry(asset.DefaultRegistry(), asset.ChainIDEthereum, bind, "ETH")
	if !apperror.HasCode(err, apperror.CodeUnknownToken) {
		t.Errorf("expected native asset rejected, got %v", err)
	}
}

func TestRegistry_ConfiguredChain(t *testing.T) {
	calls := 0
	bind := binderWith(nil, nil, &calls)

	for _, chainID := range []uint64{asset.ChainIDGoerli, asset.ChainIDSepolia} {
		r, err := app.NewRegistry(asset.RegistryForChain(chainID), chainID, bind, "WETH", "UNI")
		if err != nil {
			t.Fatalf("chain %d: unexpected error: %v", chainID, err)
		}

		weth, err := r.BySymbol("WETH")
		if err != nil {
			t.Fatalf("chain %d: expected WETH, got %v", chainID, err)
		}
		if weth.Asset().ChainID() != chainID || weth.Asset().Address() != asset.AddrWETHEthereum {
			t.Errorf("chain %d: unexpected WETH %s", chainID, weth.Asset().ID())
		}
	}
}
