package types

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/helper/keccak"
)

// Transaction is the legacy Ethereum transaction envelope accepted by the bridge
type Transaction struct {
	Nonce    uint64
	GasPrice *uint256.Int
	Gas      uint64
	To       *Address
	Value    *uint256.Int
	Input    []byte
	V        *uint256.Int
	R        *uint256.Int
	S        *uint256.Int

	// From is not part of the envelope, it is filled in by the signer
	// or by the boundary layer for unsigned dispatch.
	From Address
	Hash Hash
}

// IsContractCreation checks if tx is contract creation
func (t *Transaction) IsContractCreation() bool {
	return t.To == nil
}

// ComputeHash computes the hash of the transaction
func (t *Transaction) ComputeHash() *Transaction {
	t.Hash = BytesToHash(keccak.Keccak256(nil, t.MarshalRLP()))

	return t
}

// Copy returns a deep copy of the transaction
func (t *Transaction) Copy() *Transaction {
	tt := new(Transaction)
	*tt = *t

	copyInt := func(v *uint256.Int) *uint256.Int {
		if v == nil {
			return nil
		}

		return new(uint256.Int).Set(v)
	}

	tt.GasPrice = copyInt(t.GasPrice)
	tt.Value = copyInt(t.Value)
	tt.V = copyInt(t.V)
	tt.R = copyInt(t.R)
	tt.S = copyInt(t.S)

	if t.To != nil {
		tt.To = t.To.Ptr()
	}

	tt.Input = make([]byte, len(t.Input))
	copy(tt.Input, t.Input)

	return tt
}

// Cost returns gas * gasPrice + value
func (t *Transaction) Cost() (*uint256.Int, bool) {
	total, overflow := new(uint256.Int).MulOverflow(t.gasPrice(), uint256.NewInt(t.Gas))
	if overflow {
		return nil, true
	}

	return total.AddOverflow(total, t.value())
}

func (t *Transaction) gasPrice() *uint256.Int {
	if t.GasPrice == nil {
		return uint256.NewInt(0)
	}

	return t.GasPrice
}

func (t *Transaction) value() *uint256.Int {
	if t.Value == nil {
		return uint256.NewInt(0)
	}

	return t.Value
}
