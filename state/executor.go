package state

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/state/runtime/evm"
	"github.com/0xPolygon/evm-bridge/state/runtime/precompiled"
	"github.com/0xPolygon/evm-bridge/types"
)

// Message is a transaction ready to be executed, with the sender resolved
type Message struct {
	From     types.Address
	To       *types.Address
	Nonce    uint64
	GasPrice *uint256.Int
	Gas      uint64
	Value    *uint256.Int
	Input    []byte

	// Salt selects CREATE2 address derivation for a creation message
	Salt *types.Hash

	Hash types.Hash
}

// NewMessage builds a message out of a transaction whose sender is known
func NewMessage(tx *types.Transaction) *Message {
	msg := &Message{
		From:     tx.From,
		Nonce:    tx.Nonce,
		GasPrice: new(uint256.Int),
		Gas:      tx.Gas,
		Value:    new(uint256.Int),
		Input:    append([]byte{}, tx.Input...),
		Hash:     tx.Hash,
	}

	if tx.To != nil {
		msg.To = tx.To.Ptr()
	}

	if tx.GasPrice != nil {
		msg.GasPrice.Set(tx.GasPrice)
	}

	if tx.Value != nil {
		msg.Value.Set(tx.Value)
	}

	return msg
}

// IsContractCreation checks if the message deploys a contract
func (m *Message) IsContractCreation() bool {
	return m.To == nil
}

// Executor is the main entity
type Executor struct {
	logger  hclog.Logger
	config  *chain.Params
	backend *Backend
	block   host.BlockContext

	precompiles *precompiled.Precompiled
	evm         *evm.EVM

	// Fee converts gas into the host currency, LinearFee when nil
	Fee FeeConverter
	// Escrow holds the fee reserved for the gas limit while a message runs
	Escrow types.Address
	// MinGasPrice rejects messages priced below it when set
	MinGasPrice *uint256.Int
	Tracer      runtime.Tracer
}

// NewExecutor creates a new executor
func NewExecutor(
	config *chain.Params,
	backend *Backend,
	block host.BlockContext,
	logger hclog.Logger,
) *Executor {
	return &Executor{
		logger:      logger.Named("executor"),
		config:      config,
		backend:     backend,
		block:       block,
		precompiles: precompiled.NewPrecompiled(),
		evm:         evm.NewEVM(),
		Fee:         LinearFee,
	}
}

// Precompiles returns the precompiled contracts, hosts may register more
func (e *Executor) Precompiles() *precompiled.Precompiled {
	return e.precompiles
}

func (e *Executor) Backend() *Backend {
	return e.backend
}

func (e *Executor) Config() *chain.Params {
	return e.config
}

// Header returns the header of the block being built
func (e *Executor) Header() *types.Header {
	return e.block.Header()
}

// WriteGenesis installs the genesis allocation into the host
func (e *Executor) WriteGenesis(alloc map[types.Address]*chain.GenesisAccount) error {
	addrs := make([]types.Address, 0, len(alloc))
	for addr := range alloc {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i].Bytes(), addrs[j].Bytes()) < 0
	})

	for _, addr := range addrs {
		account := alloc[addr]

		balance := new(uint256.Int)
		if account.Balance != nil {
			balance.Set(account.Balance)
		}

		acct := &Account{
			Nonce:   account.Nonce,
			Balance: balance,
		}

		if err := e.backend.SetAccountDirectly(addr, acct, account.Code, account.Storage); err != nil {
			return fmt.Errorf("genesis account %s: %w", addr, err)
		}
	}

	e.logger.Info("genesis written", "accounts", len(alloc))

	return nil
}

// BeginTxn starts a transition over header with the whole block gas limit
func (e *Executor) BeginTxn(header *types.Header) *Transition {
	fee := e.Fee
	if fee == nil {
		fee = LinearFee
	}

	return &Transition{
		logger:      e.logger,
		config:      e.config.Forks.At(header.Number),
		state:       NewTxn(e.backend),
		getHash:     e.block.BlockHash,
		ctx:         e.txContext(header),
		gasPool:     header.GasLimit,
		meter:       NewGasMeter(0),
		precompiles: e.precompiles,
		evm:         e.evm,
		tracer:      e.Tracer,
		fee:         fee,
		escrow:      e.Escrow,
		minGasPrice: e.MinGasPrice,
	}
}

func (e *Executor) txContext(header *types.Header) runtime.TxContext {
	difficulty := new(uint256.Int).SetUint64(header.Difficulty).Bytes32()

	return runtime.TxContext{
		Coinbase:   header.Coinbase,
		Number:     int64(header.Number),
		Timestamp:  int64(header.Timestamp),
		GasLimit:   int64(header.GasLimit),
		ChainID:    int64(e.config.ChainID),
		Difficulty: types.BytesToHash(difficulty[:]),
	}
}

// Apply executes msg in the current block and commits its effects.
// A *ValidationError means nothing was touched and there is no receipt;
// a *FatalError means the host state could not be read or written.
func (e *Executor) Apply(msg *Message) (*types.Receipt, error) {
	return e.execute(e.BeginTxn(e.block.Header()), msg)
}

// RejectedMessage is a message of a block that failed validation
type RejectedMessage struct {
	Index int
	Err   error
}

// BlockResult is the outcome of a sequence of messages sharing a block gas limit
type BlockResult struct {
	Receipts  []*types.Receipt
	Rejected  []*RejectedMessage
	GasUsed   uint64
	LogsBloom types.Bloom
}

// ApplyBlock executes msgs in order against the block gas limit. Messages
// that fail validation are skipped, a fatal error stops the block.
func (e *Executor) ApplyBlock(msgs []*Message) (*BlockResult, error) {
	header := e.block.Header()
	gasPool := header.GasLimit

	res := &BlockResult{
		Receipts: make([]*types.Receipt, 0, len(msgs)),
	}

	for i, msg := range msgs {
		t := e.BeginTxn(header)
		t.gasPool = gasPool

		receipt, err := e.execute(t, msg)
		if err != nil {
			if IsValidationError(err) {
				res.Rejected = append(res.Rejected, &RejectedMessage{Index: i, Err: err})

				continue
			}

			return res, err
		}

		gasPool = t.gasPool

		res.Receipts = append(res.Receipts, receipt)
		res.GasUsed += receipt.GasUsed
	}

	res.LogsBloom = types.CreateBloom(res.Receipts)

	e.logger.Debug("block applied",
		"number", header.Number,
		"receipts", len(res.Receipts),
		"rejected", len(res.Rejected),
		"gasUsed", res.GasUsed,
	)

	return res, nil
}

func (e *Executor) execute(t *Transition, msg *Message) (*types.Receipt, error) {
	e.backend.Reset()

	result, err := t.apply(msg)

	if fault := e.backend.Err(); fault != nil {
		e.logger.Error("state fault while applying message", "hash", msg.Hash, "err", fault)
		updateFatalMetrics()

		return nil, NewFatalError(fault)
	}

	if err != nil {
		if IsValidationError(err) {
			e.logger.Debug("message rejected", "hash", msg.Hash, "from", msg.From, "err", err)
			updateRejectedMetrics()
		}

		return nil, err
	}

	logs := t.state.Logs()

	objs, err := t.state.Commit(t.config.EIP158)
	if err != nil {
		return nil, NewFatalError(err)
	}

	if err := e.backend.Commit(objs); err != nil {
		e.logger.Error("failed to commit message", "hash", msg.Hash, "err", err)
		updateFatalMetrics()

		return nil, NewFatalError(err)
	}

	receipt := &types.Receipt{
		GasUsed:     result.GasUsed,
		Logs:        logs,
		ReturnValue: result.ReturnValue,
		TxHash:      msg.Hash,
		From:        msg.From,
		To:          msg.To,
	}

	if result.Failed() {
		receipt.Status = types.ReceiptFailed
		receipt.Failure = failureKind(result.Err)
		receipt.Error = result.Err.Error()
	} else {
		receipt.Status = types.ReceiptSuccess
	}

	// if the transaction created a contract, store the creation address in the receipt.
	if msg.IsContractCreation() {
		receipt.ContractAddress = t.created
	}

	receipt.LogsBloom = types.CreateBloom([]*types.Receipt{receipt})

	e.logger.Debug("message applied",
		"hash", msg.Hash,
		"status", receipt.Status,
		"failure", receipt.Failure,
		"gasUsed", receipt.GasUsed,
	)

	updateReceiptMetrics(receipt)

	return receipt, nil
}

// failureKind classifies the error of a failed top level frame
func failureKind(err error) types.FailureKind {
	switch {
	case err == nil:
		return types.FailureNone
	case errors.Is(err, runtime.ErrExecutionReverted):
		return types.FailureRevert
	case errors.Is(err, runtime.ErrOutOfGas), errors.Is(err, runtime.ErrCodeStoreOutOfGas):
		return types.FailureOutOfGas
	case errors.Is(err, runtime.ErrPrecompileFailure):
		return types.FailurePrecompile
	case errors.Is(err, runtime.ErrDepth):
		return types.FailureDepth
	default:
		return types.FailureHalted
	}
}

// TransactionGasCost returns the intrinsic gas of msg
func TransactionGasCost(msg *Message, isHomestead, isIstanbul bool) (uint64, error) {
	cost := uint64(0)

	// Contract creation is only paid on the homestead fork
	if msg.IsContractCreation() && isHomestead {
		cost += chain.TxGasContractCreation
	} else {
		cost += chain.TxGas
	}

	payload := msg.Input
	if len(payload) > 0 {
		zeros := uint64(0)

		for i := 0; i < len(payload); i++ {
			if payload[i] == 0 {
				zeros++
			}
		}

		nonZeros := uint64(len(payload)) - zeros
		nonZeroCost := chain.TxDataNonZeroGasFrontier

		if isIstanbul {
			nonZeroCost = chain.TxDataNonZeroGasEIP2028
		}

		if (math.MaxUint64-cost)/nonZeroCost < nonZeros {
			return 0, ErrIntrinsicGasOverflow
		}

		cost += nonZeros * nonZeroCost

		if (math.MaxUint64-cost)/chain.TxDataZeroGas < zeros {
			return 0, ErrIntrinsicGasOverflow
		}

		cost += zeros * chain.TxDataZeroGas
	}

	return cost, nil
}
