package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest describes a transaction to sign and submit. A nil GasPrice is
// filled from the gas oracle and a zero GasLimit is estimated.
type TxRequest struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasPrice *big.Int
	GasLimit uint64
}

// Receipt is the mined outcome of a submitted transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

// Confirmations counts the blocks from the receipt's block up to head,
// inclusive. A receipt ahead of head has zero confirmations.
func Confirmations(receiptBlock, head uint64) uint64 {
	if head < receiptBlock {
		return 0
	}
	return head - receiptBlock + 1
}
