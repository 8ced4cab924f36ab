package state

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/crypto"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/state/runtime/evm"
	"github.com/0xPolygon/evm-bridge/state/runtime/precompiled"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	// MaxInitCodeSize bounds the init code of a creation transaction (EIP-3860)
	MaxInitCodeSize = 2 * evm.MaxCodeSize

	sstoreClearRefund = 15000
)

var _ runtime.Host = (*Transition)(nil)

type GetHashByNumber = func(i uint64) types.Hash

// Transition runs a single transaction over its own changeset
type Transition struct {
	logger hclog.Logger

	config  chain.ForksInTime
	state   *Txn
	getHash GetHashByNumber
	ctx     runtime.TxContext
	gasPool uint64

	meter  *GasMeter
	frames []*Frame

	precompiles *precompiled.Precompiled
	evm         *evm.EVM
	tracer      runtime.Tracer

	fee         FeeConverter
	escrow      types.Address
	minGasPrice *uint256.Int

	// created is the address of the contract deployed by a creation message
	created *types.Address
}

// Txn returns the pending changeset
func (t *Transition) Txn() *Txn {
	return t.state
}

// Meter returns the gas meter of the message being applied
func (t *Transition) Meter() *GasMeter {
	return t.meter
}

// GasPool returns the block gas still available
func (t *Transition) GasPool() uint64 {
	return t.gasPool
}

// Created returns the contract address derived for a creation message
func (t *Transition) Created() *types.Address {
	return t.created
}

// checkMessage runs the checks that reject a message before anything is staged
func (t *Transition) checkMessage(msg *Message) (upfront *uint256.Int, intrinsic uint64, err error) {
	nonce := t.state.GetNonce(msg.From)

	switch {
	case msg.Nonce < nonce:
		return nil, 0, fmt.Errorf("%w, actual: %d, wanted: %d", ErrNonceTooLow, msg.Nonce, nonce)
	case msg.Nonce > nonce:
		return nil, 0, fmt.Errorf("%w, actual: %d, wanted: %d", ErrNonceTooHigh, msg.Nonce, nonce)
	case nonce == math.MaxUint64:
		return nil, 0, ErrNonceUintOverflow
	}

	if t.minGasPrice != nil && msg.GasPrice.Lt(t.minGasPrice) {
		return nil, 0, fmt.Errorf("%w: %s < %s", ErrGasPriceTooLow, msg.GasPrice.Dec(), t.minGasPrice.Dec())
	}

	if msg.IsContractCreation() && len(msg.Input) > MaxInitCodeSize {
		return nil, 0, fmt.Errorf("%w: %d > %d", ErrMaxInitCodeSize, len(msg.Input), MaxInitCodeSize)
	}

	intrinsic, err = TransactionGasCost(msg, t.config.Homestead, t.config.Istanbul)
	if err != nil {
		return nil, 0, err
	}

	if msg.Gas < intrinsic {
		return nil, 0, fmt.Errorf("%w: %d < %d", ErrNotEnoughIntrinsicGas, msg.Gas, intrinsic)
	}

	upfront, err = t.fee(msg.Gas, msg.GasPrice)
	if err != nil {
		return nil, 0, err
	}

	balance := t.state.GetBalance(msg.From)
	if balance.Lt(upfront) {
		return nil, 0, fmt.Errorf("%w: balance %s, fee %s", ErrNotEnoughFundsForGas, balance.Dec(), upfront.Dec())
	}

	total, overflow := new(uint256.Int).AddOverflow(upfront, msg.Value)
	if overflow || balance.Lt(total) {
		return nil, 0, fmt.Errorf("%w: address %s", ErrNotEnoughFunds, msg.From)
	}

	if t.gasPool < msg.Gas {
		return nil, 0, ErrBlockLimitReached
	}

	return upfront, intrinsic, nil
}

// apply validates msg and runs it. A validation error leaves the changeset
// untouched. Otherwise the result is returned whatever the outcome of the
// top level frame, with the gas settled.
func (t *Transition) apply(msg *Message) (*runtime.ExecutionResult, error) {
	upfront, intrinsic, err := t.checkMessage(msg)
	if err != nil {
		return nil, NewValidationError(err)
	}

	txn := t.state

	t.gasPool -= msg.Gas

	// reserve the fee for the whole gas limit
	if err := txn.SubBalance(msg.From, upfront); err != nil {
		return nil, NewValidationError(ErrNotEnoughFundsForGas)
	}

	txn.AddBalance(t.escrow, upfront)

	t.meter = NewGasMeter(msg.Gas)
	if err := t.meter.Charge(intrinsic); err != nil {
		return nil, NewValidationError(ErrNotEnoughIntrinsicGas)
	}

	t.ctx.GasPrice = types.BytesToHash(msg.GasPrice.Bytes())
	t.ctx.Origin = msg.From

	gas := t.meter.Remaining()
	_ = t.meter.Charge(gas)

	var result *runtime.ExecutionResult
	if msg.IsContractCreation() {
		result = t.Create2(msg.From, msg.Input, msg.Value, gas, msg.Salt)
	} else {
		if err := txn.IncrNonce(msg.From); err != nil {
			return nil, err
		}

		result = t.Call2(msg.From, *msg.To, msg.Input, msg.Value, gas)
	}

	t.meter.Return(result.GasLeft)

	billed := t.meter.Finalize()

	fee, err := t.fee(billed, msg.GasPrice)
	if err != nil || upfront.Lt(fee) {
		fee = upfront
	}

	// release the reservation: the unused part back to the sender, the fee to the author
	if err := txn.SubBalance(t.escrow, upfront); err != nil {
		return nil, fmt.Errorf("release fee reservation from %s: %w", t.escrow, err)
	}

	txn.AddBalance(msg.From, new(uint256.Int).Sub(upfront, fee))
	txn.AddBalance(t.ctx.Coinbase, fee)

	t.gasPool += msg.Gas - billed

	result.GasUsed = billed

	return result, nil
}

func (t *Transition) Create2(
	caller types.Address,
	code []byte,
	value *uint256.Int,
	gas uint64,
	salt *types.Hash,
) *runtime.ExecutionResult {
	var address types.Address
	if salt == nil {
		address = crypto.CreateAddress(caller, t.state.GetNonce(caller))
	} else {
		address = crypto.CreateAddress2(caller, *salt, code)
	}

	t.created = &address

	contract := runtime.NewContractCreation(1, caller, caller, address, value, gas, code)
	if salt != nil {
		contract.Type = runtime.Create2
		contract.Salt = *salt
	}

	return t.applyCreate(contract, t)
}

func (t *Transition) Call2(
	caller types.Address,
	to types.Address,
	input []byte,
	value *uint256.Int,
	gas uint64,
) *runtime.ExecutionResult {
	c := runtime.NewContractCall(1, caller, caller, to, value, gas, t.state.GetCode(to), input)

	return t.applyCall(c, runtime.Call, t)
}

func (t *Transition) run(contract *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	out, used, err := t.precompiles.Dispatch(contract.CodeAddress, contract.Input, contract.Gas, contract.Static, &t.config)
	if !errors.Is(err, precompiled.ErrNotPrecompile) {
		return &runtime.ExecutionResult{
			ReturnValue: out,
			GasLeft:     contract.Gas - used,
			GasUsed:     used,
			Err:         err,
		}
	}

	return t.evm.Run(contract, host, &t.config)
}

func (t *Transition) Transfer(from, to types.Address, amount *uint256.Int) error {
	if amount == nil {
		return nil
	}

	if err := t.state.SubBalance(from, amount); err != nil {
		if errors.Is(err, runtime.ErrNotEnoughFunds) {
			return runtime.ErrInsufficientBalance
		}

		return err
	}

	t.state.AddBalance(to, amount)

	return nil
}

func (t *Transition) applyCall(
	c *runtime.Contract,
	callType runtime.CallType,
	host runtime.Host,
) *runtime.ExecutionResult {
	if c.Depth > MaxCallDepth {
		return &runtime.ExecutionResult{
			GasLeft: c.Gas,
			Err:     runtime.ErrDepth,
		}
	}

	frame := t.pushFrame(c)
	defer t.popFrame()

	t.captureEnter(c, callType)

	t.state.TouchAccount(c.Address)

	if callType == runtime.Call {
		// Transfers only allowed on calls
		if err := t.Transfer(c.Caller, c.Address, c.Value); err != nil {
			result := &runtime.ExecutionResult{
				GasLeft: c.Gas,
				Err:     err,
			}

			return t.settle(frame, result)
		}
	}

	frame.Status = FrameRunning

	return t.settle(frame, t.run(c, host))
}

func (t *Transition) hasCodeOrNonce(addr types.Address) bool {
	if t.state.GetNonce(addr) != 0 {
		return true
	}

	codeHash := t.state.GetCodeHash(addr)

	return codeHash != types.EmptyCodeHash && codeHash != types.ZeroHash
}

func (t *Transition) applyCreate(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	gasLimit := c.Gas

	if c.Depth > MaxCallDepth {
		return &runtime.ExecutionResult{
			GasLeft: gasLimit,
			Err:     runtime.ErrDepth,
		}
	}

	// Increment the nonce of the caller
	if err := t.state.IncrNonce(c.Caller); err != nil {
		return &runtime.ExecutionResult{Err: err}
	}

	// Check if there is a collision and the address already exists
	if t.hasCodeOrNonce(c.Address) {
		return &runtime.ExecutionResult{
			GasLeft: 0,
			Err:     runtime.ErrContractAddressCollision,
		}
	}

	frame := t.pushFrame(c)
	defer t.popFrame()

	t.captureEnter(c, c.Type)

	if t.config.EIP158 {
		// Force the creation of the account
		t.state.CreateAccount(c.Address)

		if err := t.state.IncrNonce(c.Address); err != nil {
			return t.settle(frame, &runtime.ExecutionResult{Err: err})
		}
	}

	// Transfer the value
	if err := t.Transfer(c.Caller, c.Address, c.Value); err != nil {
		return t.settle(frame, &runtime.ExecutionResult{
			GasLeft: gasLimit,
			Err:     err,
		})
	}

	frame.Status = FrameRunning

	result := t.evm.Run(c, host, &t.config)
	if result.Failed() {
		return t.settle(frame, result)
	}

	if t.config.EIP158 && len(result.ReturnValue) > evm.MaxCodeSize {
		// Contract size exceeds 'SpuriousDragon' size limit
		return t.settle(frame, &runtime.ExecutionResult{
			GasLeft: 0,
			Err:     runtime.ErrMaxCodeSizeExceeded,
		})
	}

	gasCost := uint64(len(result.ReturnValue)) * evm.GasContractByte

	if result.GasLeft < gasCost {
		if !t.config.Homestead {
			// Frontier keeps the account without code
			result.ReturnValue = nil
			result.Address = c.Address

			return t.settle(frame, result)
		}

		// Out of gas creating the contract
		return t.settle(frame, &runtime.ExecutionResult{
			GasLeft: 0,
			Err:     runtime.ErrCodeStoreOutOfGas,
		})
	}

	result.GasLeft -= gasCost
	result.Address = c.Address
	t.state.SetCode(c.Address, result.ReturnValue)

	return t.settle(frame, result)
}

// settle closes the frame and reports its result to the tracer
func (t *Transition) settle(frame *Frame, result *runtime.ExecutionResult) *runtime.ExecutionResult {
	if err := t.exitFrame(frame, result.Err); err != nil {
		return &runtime.ExecutionResult{Err: err}
	}

	if result.Failed() && frame.Status != FrameReverted {
		// only a revert hands data back to the caller
		result.ReturnValue = nil
	}

	result.GasUsed = frame.Contract.Gas - result.GasLeft

	t.captureExit(result)

	return result
}

func (t *Transition) captureEnter(c *runtime.Contract, callType runtime.CallType) {
	if t.tracer == nil {
		return
	}

	t.tracer.CaptureEnter(callType, c.Caller, c.Address, c.Input, c.Gas, c.Depth)
}

func (t *Transition) captureExit(result *runtime.ExecutionResult) {
	if t.tracer == nil {
		return
	}

	t.tracer.CaptureExit(result.ReturnValue, result.GasUsed, result.Err)
}

// Host methods used by the interpreter

func (t *Transition) SetStorage(
	addr types.Address,
	key types.Hash,
	value types.Hash,
	config *chain.ForksInTime,
) runtime.StorageStatus {
	oldValue := t.state.GetState(addr, key)
	if oldValue == value {
		return runtime.StorageUnchanged
	}

	current := oldValue
	original := t.state.GetCommittedState(addr, key)

	t.state.SetState(addr, key, value)

	legacyGasMetering := !config.Istanbul && (config.Petersburg || !config.Constantinople)

	if legacyGasMetering {
		if oldValue == types.ZeroHash {
			return runtime.StorageAdded
		} else if value == types.ZeroHash {
			t.meter.RecordRefund(sstoreClearRefund)

			return runtime.StorageDeleted
		}

		return runtime.StorageModified
	}

	if original == current {
		if original == types.ZeroHash { // create slot (2.1.1)
			return runtime.StorageAdded
		}

		if value == types.ZeroHash { // delete slot (2.1.2b)
			t.meter.RecordRefund(sstoreClearRefund)

			return runtime.StorageDeleted
		}

		return runtime.StorageModified
	}

	if original != types.ZeroHash { // Storage slot was populated before this transaction started
		if current == types.ZeroHash { // recreate slot (2.2.1.1)
			t.meter.SubRefund(sstoreClearRefund)
		} else if value == types.ZeroHash { // delete slot (2.2.1.2)
			t.meter.RecordRefund(sstoreClearRefund)
		}
	}

	if original == value {
		if original == types.ZeroHash { // reset to original nonexistent slot (2.2.2.1)
			// Storage was used as memory (allocation and deallocation occurred within the same contract)
			if config.Istanbul {
				t.meter.RecordRefund(19200)
			} else {
				t.meter.RecordRefund(19800)
			}
		} else { // reset to original existing slot (2.2.2.2)
			if config.Istanbul {
				t.meter.RecordRefund(4200)
			} else {
				t.meter.RecordRefund(4800)
			}
		}
	}

	return runtime.StorageModifiedAgain
}

func (t *Transition) GetTxContext() runtime.TxContext {
	return t.ctx
}

func (t *Transition) GetBlockHash(number int64) (res types.Hash) {
	return t.getHash(uint64(number))
}

func (t *Transition) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	t.state.EmitLog(addr, topics, data)
}

func (t *Transition) GetCodeSize(addr types.Address) int {
	return t.state.GetCodeSize(addr)
}

func (t *Transition) GetCodeHash(addr types.Address) (res types.Hash) {
	return t.state.GetCodeHash(addr)
}

func (t *Transition) GetCode(addr types.Address) []byte {
	return t.state.GetCode(addr)
}

func (t *Transition) GetBalance(addr types.Address) *uint256.Int {
	return t.state.GetBalance(addr)
}

func (t *Transition) GetStorage(addr types.Address, key types.Hash) types.Hash {
	return t.state.GetState(addr, key)
}

func (t *Transition) AccountExists(addr types.Address) bool {
	return t.state.Exist(addr)
}

func (t *Transition) Empty(addr types.Address) bool {
	return t.state.Empty(addr)
}

func (t *Transition) GetNonce(addr types.Address) uint64 {
	return t.state.GetNonce(addr)
}

func (t *Transition) Selfdestruct(addr types.Address, beneficiary types.Address) {
	if !t.state.HasSuicided(addr) {
		t.meter.RecordRefund(evm.SelfdestructRefundGas)
	}

	t.state.AddBalance(beneficiary, t.state.GetBalance(addr))
	t.state.Suicide(addr)
}

func (t *Transition) Callx(c *runtime.Contract, h runtime.Host) *runtime.ExecutionResult {
	if c.Type.IsCreate() {
		return t.applyCreate(c, h)
	}

	return t.applyCall(c, c.Type, h)
}

func (t *Transition) GetTracer() runtime.Tracer {
	return t.tracer
}
