package state

import (
	"errors"
	"math"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/crypto"
	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/ledger"
	"github.com/0xPolygon/evm-bridge/mapping"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/storage/memory"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	sender   = types.StringToAddress("0x1000")
	poor     = types.StringToAddress("0x1001")
	coinbase = types.StringToAddress("0x2000")
	escrow   = types.StringToAddress("0x3000")

	contractA = types.StringToAddress("0xa000")
	contractB = types.StringToAddress("0xb000")
	contractC = types.StringToAddress("0xc000")

	oneEther = uint64(1_000_000_000_000_000_000)
)

// sstore(0, 1) then revert with 42 as revert data
var revertCode = hex.MustDecodeHex("0x600160005560" + "2a60005260206000fd")

// jumpdest; jump(0)
var loopCode = []byte{0x5b, 0x60, 0x00, 0x56}

// sstore(0, 0)
var clearSlotCode = []byte{0x60, 0x00, 0x60, 0x00, 0x55, 0x00}

// sstore(0, 7) then revert
var childRevertCode = []byte{0x60, 0x07, 0x60, 0x00, 0x55, 0x60, 0x00, 0x60, 0x00, 0xfd}

// init code deploying a contract that returns 42
var (
	runtimeCode = hex.MustDecodeHex("0x602a60005260206000f3")
	initCode    = hex.MustDecodeHex("0x600a600c600039600a6000f3602a60005260206000f3")
)

// parentCode stores 1 at slot 0, calls target with all its gas and stores the
// call result at slot 1
func parentCode(target types.Address) []byte {
	code := []byte{0x60, 0x01, 0x60, 0x00, 0x55}
	code = append(code, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x73)
	code = append(code, target.Bytes()...)
	code = append(code, 0x5a, 0xf1)
	code = append(code, 0x60, 0x01, 0x55, 0x00)

	return code
}

// selfdestructCode sends the balance of the contract to beneficiary
func selfdestructCode(beneficiary types.Address) []byte {
	code := []byte{0x73}
	code = append(code, beneficiary.Bytes()...)

	return append(code, 0xff)
}

// measureCallCode calls target with all its gas and stores the gas left
// before the call at slot 0, the gas left after it at slot 1 and the call
// result at slot 2. Between the two readings sit 22 gas of plain opcodes,
// the 700 call cost and whatever target consumed.
func measureCallCode(target types.Address) []byte {
	code := []byte{0x5a}
	code = append(code, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x73)
	code = append(code, target.Bytes()...)
	code = append(code, 0x5a, 0xf1, 0x5a)
	code = append(code, 0x60, 0x01, 0x55, 0x60, 0x02, 0x55, 0x60, 0x00, 0x55, 0x00)

	return code
}

const measuredCallOverhead = 22 + 700

type tracedFrame struct {
	to   types.Address
	gas  uint64
	used uint64
	err  error
}

// frameTracer records the gas handed to and used by every frame
type frameTracer struct {
	open   []*tracedFrame
	frames []*tracedFrame
}

func (f *frameTracer) CaptureEnter(_ runtime.CallType, _, to types.Address, _ []byte, gas uint64, _ int) {
	frame := &tracedFrame{to: to, gas: gas}

	f.open = append(f.open, frame)
	f.frames = append(f.frames, frame)
}

func (f *frameTracer) CaptureState(uint64, string, uint64, uint64, int) {}

func (f *frameTracer) CaptureExit(_ []byte, gasUsed uint64, err error) {
	frame := f.open[len(f.open)-1]
	f.open = f.open[:len(f.open)-1]

	frame.used, frame.err = gasUsed, err
}

func (e *testEnv) slot(t *testing.T, addr types.Address, key byte) uint64 {
	t.Helper()

	value := e.backend.GetStorage(addr, types.BytesToHash([]byte{key}))

	return new(uint256.Int).SetBytes(value.Bytes()).Uint64()
}

type testEnv struct {
	ledger   *ledger.Ledger
	mapper   mapping.Mapper
	backend  *Backend
	block    *ledger.Block
	executor *Executor
}

func newTestEnv(t *testing.T, alloc map[types.Address]*chain.GenesisAccount) *testEnv {
	t.Helper()

	logger := hclog.NewNullLogger()

	kv := memory.NewMemoryStorage(logger)
	t.Cleanup(func() {
		_ = kv.Close()
	})

	l := ledger.NewLedger(kv, logger)
	mapper := mapping.NewTruncated(ledger.NewIndex(kv, logger))

	backend, err := NewBackend(kv, l, l, mapper, logger)
	require.NoError(t, err)

	block := ledger.NewBlock(&types.Header{
		Number:    1,
		Timestamp: 1000,
		GasLimit:  10_000_000,
		Coinbase:  coinbase,
	})

	executor := NewExecutor(&chain.Params{Forks: chain.AllForksEnabled, ChainID: 100}, backend, block, logger)
	executor.Escrow = escrow

	require.NoError(t, executor.WriteGenesis(alloc))

	return &testEnv{
		ledger:   l,
		mapper:   mapper,
		backend:  backend,
		block:    block,
		executor: executor,
	}
}

func (e *testEnv) balance(t *testing.T, addr types.Address) uint64 {
	t.Helper()

	balance, err := e.ledger.Balance(e.mapper.ToAccountID(addr))
	require.NoError(t, err)

	return balance.Uint64()
}

func (e *testEnv) nonce(t *testing.T, addr types.Address) uint64 {
	t.Helper()

	nonce, err := e.ledger.Nonce(e.mapper.ToAccountID(addr))
	require.NoError(t, err)

	return nonce
}

func richAlloc() map[types.Address]*chain.GenesisAccount {
	return map[types.Address]*chain.GenesisAccount{
		sender: {Balance: uint256.NewInt(oneEther)},
		poor:   {Balance: uint256.NewInt(30000)},
	}
}

func callMsg(to types.Address, nonce, gas uint64, input []byte) *Message {
	return &Message{
		From:     sender,
		To:       &to,
		Nonce:    nonce,
		GasPrice: uint256.NewInt(1),
		Gas:      gas,
		Value:    new(uint256.Int),
		Input:    input,
	}
}

func TestExecutor_Create(t *testing.T) {
	t.Parallel()

	alloc := map[types.Address]*chain.GenesisAccount{
		sender: {Balance: uint256.NewInt(100)},
	}

	env := newTestEnv(t, alloc)

	// one unit of currency per thousand gas
	env.executor.Fee = func(gas uint64, price *uint256.Int) (*uint256.Int, error) {
		return new(uint256.Int).Mul(uint256.NewInt(gas/1000), price), nil
	}

	msg := &Message{
		From:     sender,
		GasPrice: uint256.NewInt(1),
		Gas:      80000,
		Value:    uint256.NewInt(10),
		Input:    initCode,
	}

	receipt, err := env.executor.Apply(msg)
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	expected := crypto.CreateAddress(sender, 0)
	require.NotNil(t, receipt.ContractAddress)
	assert.Equal(t, expected, *receipt.ContractAddress)

	fee := receipt.GasUsed / 1000

	assert.Equal(t, 100-10-fee, env.balance(t, sender))
	assert.Equal(t, uint64(1), env.nonce(t, sender))
	assert.Equal(t, uint64(10), env.balance(t, expected))
	assert.Equal(t, fee, env.balance(t, coinbase))
	assert.Equal(t, uint64(0), env.balance(t, escrow))
	assert.Equal(t, runtimeCode, env.backend.GetCode(expected))

	// the deployed contract answers 42
	call := callMsg(expected, 1, 30000, nil)
	call.GasPrice = new(uint256.Int)

	receipt, err = env.executor.Apply(call)
	require.NoError(t, err)
	require.True(t, receipt.Succeeded())
	assert.Equal(t, uint64(42), new(uint256.Int).SetBytes(receipt.ReturnValue).Uint64())
}

func TestExecutor_Create2(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, richAlloc())

	salt := types.StringToHash("0x1234")

	msg := &Message{
		From:     sender,
		GasPrice: uint256.NewInt(1),
		Gas:      100000,
		Value:    new(uint256.Int),
		Input:    initCode,
		Salt:     &salt,
	}

	receipt, err := env.executor.Apply(msg)
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	expected := crypto.CreateAddress2(sender, salt, initCode)
	assert.Equal(t, expected, *receipt.ContractAddress)
	assert.Equal(t, runtimeCode, env.backend.GetCode(expected))
	assert.Equal(t, uint64(1), env.nonce(t, sender))
	assert.Equal(t, uint64(1), env.nonce(t, expected))

	// deploying twice at the same address collides and consumes all the gas
	msg.Nonce = 1

	receipt, err = env.executor.Apply(msg)
	require.NoError(t, err)
	assert.False(t, receipt.Succeeded())
	assert.Contains(t, receipt.Error, runtime.ErrContractAddressCollision.Error())
	assert.Equal(t, msg.Gas, receipt.GasUsed)
	assert.Equal(t, uint64(2), env.nonce(t, sender))
}

func TestExecutor_Revert(t *testing.T) {
	t.Parallel()

	alloc := richAlloc()
	alloc[contractA] = &chain.GenesisAccount{Code: revertCode}

	env := newTestEnv(t, alloc)

	msg := callMsg(contractA, 0, 100000, nil)
	msg.Value = uint256.NewInt(5)

	receipt, err := env.executor.Apply(msg)
	require.NoError(t, err)

	assert.Equal(t, types.ReceiptFailed, receipt.Status)
	assert.Equal(t, types.FailureRevert, receipt.Failure)
	assert.Equal(t, uint64(42), new(uint256.Int).SetBytes(receipt.ReturnValue).Uint64())

	// storage and value transfer are undone, nonce and gas are not
	assert.Equal(t, types.ZeroHash, env.backend.GetStorage(contractA, types.ZeroHash))
	assert.Equal(t, uint64(0), env.balance(t, contractA))
	assert.Equal(t, uint64(1), env.nonce(t, sender))
	assert.Greater(t, receipt.GasUsed, chain.TxGas)
	assert.Less(t, receipt.GasUsed, msg.Gas)
	assert.Equal(t, oneEther-receipt.GasUsed, env.balance(t, sender))
	assert.Equal(t, receipt.GasUsed, env.balance(t, coinbase))
}

func TestExecutor_OutOfGas(t *testing.T) {
	t.Parallel()

	alloc := richAlloc()
	alloc[contractA] = &chain.GenesisAccount{Code: loopCode}

	env := newTestEnv(t, alloc)

	msg := callMsg(contractA, 0, 50000, nil)

	receipt, err := env.executor.Apply(msg)
	require.NoError(t, err)

	assert.Equal(t, types.FailureOutOfGas, receipt.Failure)
	assert.Equal(t, msg.Gas, receipt.GasUsed)
	assert.Empty(t, receipt.ReturnValue)
	assert.Equal(t, oneEther-msg.Gas, env.balance(t, sender))
	assert.Equal(t, uint64(1), env.nonce(t, sender))
}

func TestExecutor_NestedRevert(t *testing.T) {
	t.Parallel()

	alloc := richAlloc()
	alloc[contractB] = &chain.GenesisAccount{Code: parentCode(contractC)}
	alloc[contractC] = &chain.GenesisAccount{Code: childRevertCode}

	env := newTestEnv(t, alloc)

	receipt, err := env.executor.Apply(callMsg(contractB, 0, 200000, nil))
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	// B keeps its write, C is discarded and B sees the failed call
	assert.Equal(t, types.BytesToHash([]byte{1}), env.backend.GetStorage(contractB, types.ZeroHash))
	assert.Equal(t, types.ZeroHash, env.backend.GetStorage(contractB, types.BytesToHash([]byte{1})))
	assert.Equal(t, types.ZeroHash, env.backend.GetStorage(contractC, types.ZeroHash))

	assert.Equal(t, oneEther-receipt.GasUsed, env.balance(t, sender))
}

func TestExecutor_NestedRevertGas(t *testing.T) {
	t.Parallel()

	alloc := richAlloc()
	alloc[contractA] = &chain.GenesisAccount{Code: measureCallCode(contractB)}
	alloc[contractB] = &chain.GenesisAccount{Code: parentCode(contractC)}
	alloc[contractC] = &chain.GenesisAccount{Code: childRevertCode}

	env := newTestEnv(t, alloc)

	tracer := &frameTracer{}
	env.executor.Tracer = tracer

	msg := callMsg(contractA, 0, 1_000_000, nil)

	receipt, err := env.executor.Apply(msg)
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	require.Len(t, tracer.frames, 3)
	a, b, c := tracer.frames[0], tracer.frames[1], tracer.frames[2]

	assert.Equal(t, []types.Address{contractA, contractB, contractC}, []types.Address{a.to, b.to, c.to})
	assert.Equal(t, msg.Gas-chain.TxGas, a.gas)

	// C pays for its sstore, the revert hands the rest back to B
	assert.ErrorIs(t, c.err, runtime.ErrExecutionReverted)
	assert.Equal(t, uint64(3+3+20000+3+3), c.used)
	assert.Less(t, c.used, c.gas)

	// B: two pushes, a fresh sstore, the call setup, the call itself and a no-op sstore
	assert.NoError(t, b.err)
	assert.Equal(t, uint64(6+20000+15+3+2+700+3+800)+c.used, b.used)

	// A is charged exactly what B consumed on top of its own opcodes
	before, after := env.slot(t, contractA, 0), env.slot(t, contractA, 1)

	assert.Equal(t, a.gas-2, before)
	assert.Equal(t, before-after, measuredCallOverhead+b.used)

	forwarded := before - 20 - 700
	assert.Equal(t, forwarded-forwarded/64, b.gas)

	assert.Equal(t, uint64(1), env.slot(t, contractA, 2))
	assert.Equal(t, uint64(1), env.slot(t, contractB, 0))
	assert.Equal(t, uint64(0), env.slot(t, contractB, 1))
	assert.Equal(t, uint64(0), env.slot(t, contractC, 0))

	assert.NoError(t, a.err)
	assert.Equal(t, chain.TxGas+a.used, receipt.GasUsed)
}

func TestExecutor_NestedOutOfGas(t *testing.T) {
	t.Parallel()

	alloc := richAlloc()
	alloc[contractA] = &chain.GenesisAccount{Code: measureCallCode(contractB)}
	alloc[contractB] = &chain.GenesisAccount{Code: loopCode}

	env := newTestEnv(t, alloc)

	tracer := &frameTracer{}
	env.executor.Tracer = tracer

	receipt, err := env.executor.Apply(callMsg(contractA, 0, 3_000_000, nil))
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	require.Len(t, tracer.frames, 2)
	a, b := tracer.frames[0], tracer.frames[1]

	// the child burns everything it was given and nothing more
	assert.ErrorIs(t, b.err, runtime.ErrOutOfGas)
	assert.Equal(t, b.gas, b.used)

	before, after := env.slot(t, contractA, 0), env.slot(t, contractA, 1)
	assert.Equal(t, before-after, measuredCallOverhead+b.gas)
	assert.Equal(t, uint64(0), env.slot(t, contractA, 2))

	// the 1/64 kept back lets A finish
	assert.NoError(t, a.err)
	assert.Equal(t, chain.TxGas+a.used, receipt.GasUsed)
}

func TestExecutor_StorageRefund(t *testing.T) {
	t.Parallel()

	alloc := richAlloc()
	alloc[contractA] = &chain.GenesisAccount{
		Code: clearSlotCode,
		Storage: map[types.Hash]types.Hash{
			types.ZeroHash: types.BytesToHash([]byte{5}),
		},
	}

	env := newTestEnv(t, alloc)

	receipt, err := env.executor.Apply(callMsg(contractA, 0, 100000, nil))
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	// 21000 + 3 + 3 + 5000 used, the 15000 refund is capped at half of it
	assert.Equal(t, uint64(13003), receipt.GasUsed)
	assert.Equal(t, types.ZeroHash, env.backend.GetStorage(contractA, types.ZeroHash))
}

func TestExecutor_Precompile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, richAlloc())

	identity := types.StringToAddress("0x4")
	input := []byte("hello")

	receipt, err := env.executor.Apply(callMsg(identity, 0, 50000, input))
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	assert.Equal(t, input, []byte(receipt.ReturnValue))
	assert.Equal(t, chain.TxGas+5*chain.TxDataNonZeroGasEIP2028+15+3, receipt.GasUsed)
}

func TestExecutor_Selfdestruct(t *testing.T) {
	t.Parallel()

	beneficiary := types.StringToAddress("0xbeef")

	alloc := richAlloc()
	alloc[contractA] = &chain.GenesisAccount{
		Code:    selfdestructCode(beneficiary),
		Balance: uint256.NewInt(50),
	}

	env := newTestEnv(t, alloc)

	receipt, err := env.executor.Apply(callMsg(contractA, 0, 100000, nil))
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	assert.Equal(t, uint64(50), env.balance(t, beneficiary))
	assert.Equal(t, uint64(0), env.balance(t, contractA))
	assert.Nil(t, env.backend.GetCode(contractA))
	assert.Nil(t, env.backend.GetAccount(contractA))
}

func TestExecutor_Logs(t *testing.T) {
	t.Parallel()

	// log1(0, 0, topic 0xaa); log0(0, 0)
	code := []byte{0x60, 0xaa, 0x60, 0x00, 0x60, 0x00, 0xa1, 0x60, 0x00, 0x60, 0x00, 0xa0, 0x00}

	alloc := richAlloc()
	alloc[contractA] = &chain.GenesisAccount{Code: code}

	env := newTestEnv(t, alloc)

	receipt, err := env.executor.Apply(callMsg(contractA, 0, 100000, nil))
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Error)

	require.Len(t, receipt.Logs, 2)
	assert.Equal(t, []types.Hash{types.BytesToHash([]byte{0xaa})}, receipt.Logs[0].Topics)
	assert.Empty(t, receipt.Logs[1].Topics)
	assert.True(t, receipt.LogsBloom.IsLogInBloom(receipt.Logs[0]))
}

func TestExecutor_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		msg    func() *Message
		minGas *uint256.Int
		err    error
	}{
		{
			name: "nonce too low",
			msg: func() *Message {
				m := callMsg(contractA, 0, 21000, nil)
				m.From = poor

				return m
			},
			err: ErrNonceTooLow,
		},
		{
			name: "nonce too high",
			msg:  func() *Message { return callMsg(contractA, 5, 21000, nil) },
			err:  ErrNonceTooHigh,
		},
		{
			name: "intrinsic gas",
			msg:  func() *Message { return callMsg(contractA, 0, 20000, nil) },
			err:  ErrNotEnoughIntrinsicGas,
		},
		{
			name: "funds for gas",
			msg: func() *Message {
				m := callMsg(contractA, 1, 21000, nil)
				m.From = poor
				m.GasPrice = uint256.NewInt(2)

				return m
			},
			err: ErrNotEnoughFundsForGas,
		},
		{
			name: "funds for value",
			msg: func() *Message {
				m := callMsg(contractA, 1, 21000, nil)
				m.From = poor
				m.Value = uint256.NewInt(10000)

				return m
			},
			err: ErrNotEnoughFunds,
		},
		{
			name:   "gas price",
			msg:    func() *Message { return callMsg(contractA, 0, 21000, nil) },
			minGas: uint256.NewInt(2),
			err:    ErrGasPriceTooLow,
		},
		{
			name: "init code size",
			msg: func() *Message {
				m := callMsg(contractA, 0, 5_000_000, make([]byte, MaxInitCodeSize+1))
				m.To = nil

				return m
			},
			err: ErrMaxInitCodeSize,
		},
		{
			name: "block gas limit",
			msg:  func() *Message { return callMsg(contractA, 0, 20_000_000, nil) },
			err:  ErrBlockLimitReached,
		},
		{
			name: "fee overflow",
			msg: func() *Message {
				m := callMsg(contractA, 0, 21000, nil)
				m.GasPrice = new(uint256.Int).SetAllOne()

				return m
			},
			err: ErrFeeOverflow,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			alloc := richAlloc()
			alloc[poor].Nonce = 1

			env := newTestEnv(t, alloc)
			env.executor.MinGasPrice = c.minGas

			msg := c.msg()

			before := env.balance(t, msg.From)

			receipt, err := env.executor.Apply(msg)
			require.Error(t, err)
			assert.Nil(t, receipt)
			assert.ErrorIs(t, err, c.err)
			assert.True(t, IsValidationError(err))
			assert.False(t, IsFatalError(err))

			assert.Equal(t, before, env.balance(t, msg.From))
			assert.Equal(t, uint64(0), env.balance(t, escrow))
		})
	}
}

func TestExecutor_ApplyBlock(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, richAlloc())

	msgs := []*Message{
		callMsg(contractA, 0, 21000, nil),
		callMsg(contractA, 5, 21000, nil),
		callMsg(contractA, 1, 21000, nil),
	}

	res, err := env.executor.ApplyBlock(msgs)
	require.NoError(t, err)

	require.Len(t, res.Receipts, 2)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 1, res.Rejected[0].Index)
	assert.ErrorIs(t, res.Rejected[0].Err, ErrNonceTooHigh)
	assert.Equal(t, 2*chain.TxGas, res.GasUsed)
	assert.Equal(t, uint64(2), env.nonce(t, sender))
}

func TestExecutor_ApplyBlockGasPool(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, richAlloc())

	// the pool is charged with the billed gas only
	msgs := []*Message{
		callMsg(contractA, 0, 6_000_000, nil),
		callMsg(contractA, 1, 6_000_000, nil),
	}

	res, err := env.executor.ApplyBlock(msgs)
	require.NoError(t, err)
	assert.Len(t, res.Receipts, 2)
	assert.Empty(t, res.Rejected)
}

type faultyLedger struct {
	*ledger.Ledger
	fail bool
}

func (f *faultyLedger) Balance(id types.AccountID) (*uint256.Int, error) {
	if f.fail {
		return nil, errors.New("disk on fire")
	}

	return f.Ledger.Balance(id)
}

func TestExecutor_StateFault(t *testing.T) {
	t.Parallel()

	logger := hclog.NewNullLogger()
	kv := memory.NewMemoryStorage(logger)
	t.Cleanup(func() {
		_ = kv.Close()
	})

	l := &faultyLedger{Ledger: ledger.NewLedger(kv, logger)}

	backend, err := NewBackend(kv, l, l, mapping.Identity{}, logger)
	require.NoError(t, err)

	block := ledger.NewBlock(&types.Header{Number: 1, GasLimit: math.MaxInt32})
	executor := NewExecutor(&chain.Params{Forks: chain.AllForksEnabled}, backend, block, logger)

	require.NoError(t, executor.WriteGenesis(richAlloc()))

	l.fail = true

	receipt, err := executor.Apply(callMsg(contractA, 0, 21000, nil))
	assert.Nil(t, receipt)
	assert.True(t, IsFatalError(err))
	assert.ErrorIs(t, err, ErrStateFault)
	assert.False(t, IsValidationError(err))

	// the fault does not outlive the next message
	l.fail = false

	receipt, err = executor.Apply(callMsg(contractA, 0, 21000, nil))
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
}

func TestTransition_Depth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, richAlloc())

	tr := env.executor.BeginTxn(env.block.Header())

	c := runtime.NewContractCall(MaxCallDepth+1, sender, sender, contractA, nil, 1000, nil, nil)

	result := tr.Callx(c, tr)
	assert.ErrorIs(t, result.Err, runtime.ErrDepth)
	assert.Equal(t, uint64(1000), result.GasLeft)
	assert.Equal(t, 0, tr.Depth())
}

func TestTransition_TransferFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, richAlloc())

	tr := env.executor.BeginTxn(env.block.Header())

	c := runtime.NewContractCall(2, sender, poor, contractA, uint256.NewInt(40000), 1000, nil, nil)

	result := tr.Callx(c, tr)
	assert.ErrorIs(t, result.Err, runtime.ErrInsufficientBalance)
	assert.Equal(t, uint64(1000), result.GasLeft)
	assert.Equal(t, uint64(30000), tr.Txn().GetBalance(poor).Uint64())
	assert.False(t, tr.Txn().Exist(contractA))
}

func TestTransactionGasCost(t *testing.T) {
	t.Parallel()

	to := contractA

	cases := []struct {
		name      string
		msg       *Message
		homestead bool
		istanbul  bool
		cost      uint64
	}{
		{"transfer", &Message{To: &to}, true, true, 21000},
		{"create", &Message{}, true, true, 53000},
		{"frontier create", &Message{}, false, false, 21000},
		{"calldata istanbul", &Message{To: &to, Input: []byte{0, 1, 0, 2}}, true, true, 21000 + 8 + 32},
		{"calldata frontier", &Message{To: &to, Input: []byte{0, 1, 0, 2}}, true, false, 21000 + 8 + 136},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			cost, err := TransactionGasCost(c.msg, c.homestead, c.istanbul)
			require.NoError(t, err)
			assert.Equal(t, c.cost, cost)
		})
	}
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	to := contractA
	tx := &types.Transaction{
		Nonce: 3,
		Gas:   21000,
		To:    &to,
		Input: []byte{1, 2},
		From:  sender,
	}

	msg := NewMessage(tx)
	assert.Equal(t, sender, msg.From)
	assert.Equal(t, uint64(3), msg.Nonce)
	assert.True(t, msg.GasPrice.IsZero())
	assert.True(t, msg.Value.IsZero())
	assert.False(t, msg.IsContractCreation())

	// the message does not alias the transaction
	tx.Input[0] = 9
	assert.Equal(t, byte(1), msg.Input[0])
}

func TestFailureKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		kind types.FailureKind
	}{
		{nil, types.FailureNone},
		{runtime.ErrExecutionReverted, types.FailureRevert},
		{runtime.ErrOutOfGas, types.FailureOutOfGas},
		{runtime.ErrCodeStoreOutOfGas, types.FailureOutOfGas},
		{runtime.ErrPrecompileFailure, types.FailurePrecompile},
		{runtime.ErrDepth, types.FailureDepth},
		{runtime.ErrInvalidJump, types.FailureHalted},
	}

	for _, c := range cases {
		assert.Equal(t, c.kind, failureKind(c.err))
	}
}
