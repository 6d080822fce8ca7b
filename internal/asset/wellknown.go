package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDGoerli   = 5
	ChainIDSepolia  = 11155111
	ChainIDPolygon  = 137
	ChainIDArbitrum = 42161
	ChainIDOptimism = 10
	ChainIDBase     = 8453
)

// Canonical token addresses on Ethereum Mainnet.
var (
	AddrWETHEthereum = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrUNIEthereum  = common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984")
)

// Ethereum Mainnet assets.
var (
	ETH  = MustNewNative(ChainIDEthereum, "ETH", "Ether", 18)
	WETH = MustNewToken(ChainIDEthereum, AddrWETHEthereum, "WETH", "Wrapped Ether", 18)
	UNI  = MustNewToken(ChainIDEthereum, AddrUNIEthereum, "UNI", "Uniswap", 18)
)

// DefaultRegistry returns a registry pre-populated with the mainnet assets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ETH)
	r.Register(WETH)
	r.Register(UNI)
	return r
}

// RegistryForChain returns a registry with the native coin, WETH and UNI
// registered under chainID at their canonical addresses.
func RegistryForChain(chainID uint64) *Registry {
	if chainID == ChainIDEthereum {
		return DefaultRegistry()
	}
	r := NewRegistry()
	r.Register(MustNewNative(chainID, "ETH", "Ether", 18))
	r.Register(MustNewToken(chainID, AddrWETHEthereum, "WETH", "Wrapped Ether", 18))
	r.Register(MustNewToken(chainID, AddrUNIEthereum, "UNI", "Uniswap", 18))
	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}

// MustNewNative creates a new native coin asset.
func MustNewNative(chainID uint64, symbol, name string, decimals uint8) *Asset {
	id := NewNativeAssetID(chainID)
	return NewAssetWithName(id, symbol, name, decimals)
}
