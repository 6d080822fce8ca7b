package app

import (
	"context"

	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
)

// Token pairs a token descriptor with its contract binder.
type Token struct {
	asset *asset.Asset
	bind  Binder
}

// NewToken creates a Token. The asset must be an ERC-20, not native.
func NewToken(a *asset.Asset, bind Binder) *Token {
	return &Token{asset: a, bind: bind}
}

// Asset returns the token descriptor.
func (t *Token) Asset() *asset.Asset {
	return t.asset
}

// Symbol returns the token symbol.
func (t *Token) Symbol() string {
	return t.asset.Symbol()
}

// Contract returns a fresh handle bound to the token address.
func (t *Token) Contract() ERC20 {
	return t.bind(t.asset.Address())
}

// WalletHas reports whether holder's balance covers required. The fetched
// balance is returned either way so callers can report it.
func (t *Token) WalletHas(ctx context.Context, holder Holder, required asset.Amount) (bool, asset.Amount, error) {
	raw, err := t.Contract().BalanceOf(ctx, holder.Address())
	if err != nil {
		return false, asset.Amount{}, err
	}

	balance := asset.NewAmount(t.asset, raw)
	ok, err := balance.GreaterThanOrEqual(required)
	if err != nil {
		return false, balance, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err),
			apperror.WithContext("balance check for "+t.Symbol()))
	}
	return ok, balance, nil
}
