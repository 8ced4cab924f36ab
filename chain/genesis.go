package chain

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/types"
)

// Genesis is the initial EVM state installed into the host
type Genesis struct {
	Coinbase  types.Address                     `json:"coinbase"`
	GasLimit  uint64                            `json:"gasLimit"`
	Timestamp uint64                            `json:"timestamp"`
	Alloc     map[types.Address]*GenesisAccount `json:"alloc,omitempty"`
}

// GenesisAccount is an account in the state of the genesis block.
type GenesisAccount struct {
	Code    types.HexBytes            `json:"code,omitempty"`
	Storage map[types.Hash]types.Hash `json:"storage,omitempty"`
	Balance *uint256.Int              `json:"balance,omitempty"`
	Nonce   uint64                    `json:"nonce,omitempty"`
}
