package app

import (
	"fmt"
	"strings"

	"github.com/fd1az/uniswap-swapper/internal/apperror"
	"github.com/fd1az/uniswap-swapper/internal/asset"
)

// Registry holds the tradable tokens of one chain.
type Registry struct {
	chainID uint64
	tokens  map[string]*Token
}

// NewRegistry binds the ERC-20 assets of chainID known to assets.
func NewRegistry(assets *asset.Registry, chainID uint64, bind Binder, symbols ...string) (*Registry, error) {
	r := &Registry{
		chainID: chainID,
		tokens:  make(map[string]*Token, len(symbols)),
	}

	for _, symbol := range symbols {
		a, ok := assets.GetBySymbolAndChain(symbol, chainID)
		if !ok || a.IsNative() {
			return nil, apperror.New(apperror.CodeUnknownToken,
				apperror.WithContext(fmt.Sprintf("%s on chain %d", symbol, chainID)))
		}
		r.tokens[strings.ToUpper(symbol)] = NewToken(a, bind)
	}

	return r, nil
}

// BySymbol returns the token with the given symbol, case-insensitively.
func (r *Registry) BySymbol(symbol string) (*Token, error) {
	t, ok := r.tokens[strings.ToUpper(symbol)]
	if !ok {
		return nil, apperror.New(apperror.CodeUnknownToken,
			apperror.WithContext(fmt.Sprintf("%s on chain %d", symbol, r.chainID)))
	}
	return t, nil
}

// ChainID returns the chain the tokens live on.
func (r *Registry) ChainID() uint64 {
	return r.chainID
}
