package types

import "github.com/holiman/uint256"

// Header is the slice of the host block context visible to the EVM
type Header struct {
	Number     uint64       `json:"number"`
	Timestamp  uint64       `json:"timestamp"`
	GasLimit   uint64       `json:"gasLimit"`
	Difficulty uint64       `json:"difficulty"`
	Coinbase   Address      `json:"coinbase"`
	BaseFee    *uint256.Int `json:"baseFee,omitempty"`
	Hash       Hash         `json:"hash"`
}

// Copy returns a deep copy of the header
func (h *Header) Copy() *Header {
	hh := *h

	if h.BaseFee != nil {
		hh.BaseFee = new(uint256.Int).Set(h.BaseFee)
	}

	return &hh
}
