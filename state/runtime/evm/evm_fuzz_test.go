package evm

import (
	"testing"

	"github.com/holiman/uint256"
	go_fuzz_utils "github.com/trailofbits/go-fuzz-utils"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/types"
)

var _ runtime.Host = &mockHostF{}

// mockHostF meets the requirements of runtime.Host but returns naive data
type mockHostF struct {
	storage  map[types.Address]map[types.Hash]types.Hash
	balances map[types.Address]*uint256.Int
	nonces   map[types.Address]uint64

	// to fuzz
	blockHash types.Hash
}

func (m *mockHostF) AccountExists(addr types.Address) bool {
	_, ok := m.nonces[addr]

	return ok
}

func (m *mockHostF) GetStorage(addr types.Address, key types.Hash) types.Hash {
	return m.storage[addr][key]
}

func (m *mockHostF) SetStorage(
	addr types.Address,
	key types.Hash,
	value types.Hash,
	config *chain.ForksInTime,
) runtime.StorageStatus {
	if _, ok := m.storage[addr]; !ok {
		m.storage[addr] = make(map[types.Hash]types.Hash)
	}

	m.storage[addr][key] = value

	return runtime.StorageModified
}

func (m *mockHostF) GetBalance(addr types.Address) *uint256.Int {
	b, ok := m.balances[addr]
	if !ok {
		b = new(uint256.Int)
		m.balances[addr] = b
	}

	return b
}

func (m *mockHostF) GetCodeSize(addr types.Address) int {
	return 0
}

func (m *mockHostF) GetCodeHash(addr types.Address) types.Hash {
	return types.Hash{}
}

func (m *mockHostF) GetCode(addr types.Address) []byte {
	return nil
}

func (m *mockHostF) Selfdestruct(addr types.Address, beneficiary types.Address) {
}

func (m *mockHostF) GetTxContext() runtime.TxContext {
	return runtime.TxContext{Number: 300, ChainID: 1}
}

func (m *mockHostF) GetBlockHash(number int64) types.Hash {
	return m.blockHash
}

func (m *mockHostF) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
}

func (m *mockHostF) Callx(c *runtime.Contract, h runtime.Host) *runtime.ExecutionResult {
	return &runtime.ExecutionResult{GasLeft: c.Gas}
}

func (m *mockHostF) Empty(addr types.Address) bool {
	return true
}

func (m *mockHostF) GetNonce(addr types.Address) uint64 {
	return m.nonces[addr]
}

func (m *mockHostF) GetTracer() runtime.Tracer {
	return nil
}

func FuzzTestEVM(f *testing.F) {
	seed := []byte{
		byte(PUSH1), 0x01, byte(PUSH1), 0x02, byte(ADD),
		byte(PUSH1), 0x00, byte(MSTORE8),
		byte(PUSH1), 0x01, byte(PUSH1), 0x00, byte(RETURN),
	}

	f.Add(seed)

	config := chain.AllForksEnabled.At(0)

	evm := NewEVM()

	f.Fuzz(func(t *testing.T, input []byte) {
		tp, err := go_fuzz_utils.NewTypeProvider(input)
		if err != nil {
			return
		}

		err = tp.SetParamsSliceBounds(1, 4*1024)
		if err != nil {
			return
		}

		blockHashI, err := tp.GetNBytes(types.HashLength)
		if err != nil {
			return
		}

		host := &mockHostF{
			blockHash: types.BytesToHash(blockHashI),
			storage:   make(map[types.Address]map[types.Hash]types.Hash),
			balances:  make(map[types.Address]*uint256.Int),
			nonces:    make(map[types.Address]uint64),
		}

		code, err := tp.GetBytes()
		if err != nil {
			return
		}

		gas := uint64(10_000_000)
		contract := newMockContract(nil, gas, code)

		res := evm.Run(contract, host, &config)
		if res.GasLeft+res.GasUsed != gas {
			t.Fatalf("gas accounting mismatch: left %d used %d", res.GasLeft, res.GasUsed)
		}
	})
}
