// Package pallet is the boundary the host chain dispatches into: signed
// calls, contract creations, balance moves between native accounts and EVM
// addresses, and raw Ethereum transactions.
package pallet

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/crypto"
	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/mapping"
	"github.com/0xPolygon/evm-bridge/state"
	"github.com/0xPolygon/evm-bridge/types"
)

// Config selects the origin checks of the module
type Config struct {
	// CallOrigin authorizes call and create on behalf of a source address
	CallOrigin EnsureAddressOrigin
	// WithdrawOrigin authorizes moving the balance of an address out of the EVM
	WithdrawOrigin EnsureAddressOrigin
}

// DefaultConfig lets a signer act for the address its account id truncates to
func DefaultConfig() *Config {
	return &Config{
		CallOrigin:     EnsureAddressTruncated{},
		WithdrawOrigin: EnsureAddressTruncated{},
	}
}

// Module dispatches host calls into the executor. Calls are serialised.
type Module struct {
	logger hclog.Logger
	lock   sync.Mutex

	executor *state.Executor
	backend  *state.Backend
	ledger   host.Ledger
	system   host.System
	mapper   mapping.Mapper
	events   host.EventSink

	callOrigin     EnsureAddressOrigin
	withdrawOrigin EnsureAddressOrigin
}

func NewModule(
	logger hclog.Logger,
	config *Config,
	executor *state.Executor,
	ledger host.Ledger,
	system host.System,
	events host.EventSink,
) *Module {
	if config == nil {
		config = DefaultConfig()
	}

	return &Module{
		logger:         logger.Named("pallet"),
		executor:       executor,
		backend:        executor.Backend(),
		ledger:         ledger,
		system:         system,
		mapper:         executor.Backend().Mapper(),
		events:         events,
		callOrigin:     config.CallOrigin,
		withdrawOrigin: config.WithdrawOrigin,
	}
}

// AccountBasic is the balance and nonce of an address as the EVM sees them
type AccountBasic struct {
	Balance *uint256.Int `json:"balance"`
	Nonce   uint64       `json:"nonce"`
}

// AccountBasic returns the balance and nonce of addr
func (m *Module) AccountBasic(addr types.Address) (*AccountBasic, error) {
	id := m.mapper.ToAccountID(addr)

	balance, err := m.ledger.Balance(id)
	if err != nil {
		return nil, err
	}

	nonce, err := m.system.Nonce(id)
	if err != nil {
		return nil, err
	}

	return &AccountBasic{Balance: balance, Nonce: nonce}, nil
}

// Code returns the code deployed at addr
func (m *Module) Code(addr types.Address) []byte {
	return m.backend.GetCode(addr)
}

// Storage returns the value of a storage slot of addr
func (m *Module) Storage(addr types.Address, key types.Hash) types.Hash {
	return m.backend.GetStorage(addr, key)
}

// IsAccountEmpty reports whether addr has no balance, no nonce and no code
func (m *Module) IsAccountEmpty(addr types.Address) (bool, error) {
	basic, err := m.AccountBasic(addr)
	if err != nil {
		return false, err
	}

	return basic.Nonce == 0 && basic.Balance.IsZero() && len(m.backend.GetCode(addr)) == 0, nil
}

// RemoveAccountIfEmpty removes addr when it is empty
func (m *Module) RemoveAccountIfEmpty(addr types.Address) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	empty, err := m.IsAccountEmpty(addr)
	if err != nil || !empty {
		return err
	}

	return m.removeAccount(addr)
}

// RemoveAccount drops the code and storage of addr
func (m *Module) RemoveAccount(addr types.Address) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.removeAccount(addr)
}

func (m *Module) removeAccount(addr types.Address) error {
	if err := m.backend.RemoveAccount(addr); err != nil {
		return err
	}

	m.logger.Debug("account removed", "addr", addr)

	return nil
}

// BuildGenesis installs the genesis accounts
func (m *Module) BuildGenesis(genesis *chain.Genesis) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.executor.WriteGenesis(genesis.Alloc)
}

// Withdraw moves value from the balance of addr to the account of the origin
func (m *Module) Withdraw(origin Origin, addr types.Address, value *uint256.Int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	dest, err := m.withdrawOrigin.EnsureAddressOrigin(addr, origin)
	if err != nil {
		return err
	}

	if dest == types.ZeroAccountID {
		return fmt.Errorf("%w: no account to withdraw to", ErrBadOrigin)
	}

	if err := m.ledger.Transfer(m.mapper.ToAccountID(addr), dest, value); err != nil {
		return transferError(err, ErrWithdrawFailed)
	}

	m.dispatched("withdraw")
	m.events.Emit(BalanceWithdrawEvent{Account: dest, Address: addr, Value: value.Clone()})

	return nil
}

// Deposit moves value from the account of the origin to the balance of addr
func (m *Module) Deposit(origin Origin, addr types.Address, value *uint256.Int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	source, ok := origin.Signer()
	if !ok {
		return ErrBadOrigin
	}

	if err := m.ledger.Transfer(source, m.mapper.ToAccountID(addr), value); err != nil {
		return transferError(err, ErrBalanceLow)
	}

	m.dispatched("deposit")
	m.events.Emit(BalanceDepositEvent{Account: source, Address: addr, Value: value.Clone()})

	return nil
}

// ClaimAddress binds the truncated address of the signer to its native
// account. The address must not be claimed yet and must not hold anything
// under its hashed account, otherwise those funds would become unreachable.
func (m *Module) ClaimAddress(origin Origin) (types.Address, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	source, ok := origin.Signer()
	if !ok {
		return types.ZeroAddress, ErrBadOrigin
	}

	registry, ok := m.mapper.(mapping.Registry)
	if !ok {
		return types.ZeroAddress, ErrClaimUnsupported
	}

	addr := m.mapper.ToEVMAddress(source)

	current := m.mapper.ToAccountID(addr)
	if current == source {
		return addr, nil
	}

	if current != mapping.HashAccountID(addr) {
		return types.ZeroAddress, fmt.Errorf("%w: %s", ErrAddressClaimed, addr)
	}

	empty, err := m.IsAccountEmpty(addr)
	if err != nil {
		return types.ZeroAddress, err
	}

	if !empty {
		return types.ZeroAddress, fmt.Errorf("%w: %s", ErrAddressInUse, addr)
	}

	if err := registry.Claim(source); err != nil {
		if errors.Is(err, host.ErrAlreadyRegistered) {
			return types.ZeroAddress, fmt.Errorf("%w: %w", ErrAddressClaimed, err)
		}

		return types.ZeroAddress, err
	}

	m.dispatched("claim")
	m.events.Emit(AddressClaimedEvent{Account: source, Address: addr})

	return addr, nil
}

// CallArgs are the arguments shared by call, create and create2
type CallArgs struct {
	Source   types.Address
	Value    *uint256.Int
	GasLimit uint64
	GasPrice *uint256.Int
	// Nonce is checked against the nonce of the source when set
	Nonce *uint64
}

// Call runs target with input on behalf of source
func (m *Module) Call(origin Origin, args *CallArgs, target types.Address, input []byte) (*types.Receipt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	msg, err := m.message(origin, args)
	if err != nil {
		return nil, err
	}

	msg.To = &target
	msg.Input = input

	receipt, err := m.apply(msg, "call")
	if err != nil {
		return nil, err
	}

	m.emitOutcome(msg, receipt)

	return receipt, nil
}

// Create deploys init on behalf of source at the address derived from its nonce
func (m *Module) Create(origin Origin, args *CallArgs, init []byte) (*types.Receipt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.create(origin, args, init, nil)
}

// Create2 deploys init on behalf of source at the address derived from salt
func (m *Module) Create2(origin Origin, args *CallArgs, init []byte, salt types.Hash) (*types.Receipt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.create(origin, args, init, &salt)
}

func (m *Module) create(origin Origin, args *CallArgs, init []byte, salt *types.Hash) (*types.Receipt, error) {
	msg, err := m.message(origin, args)
	if err != nil {
		return nil, err
	}

	msg.Input = init
	msg.Salt = salt

	op := "create"
	if salt != nil {
		op = "create2"
	}

	receipt, err := m.apply(msg, op)
	if err != nil {
		return nil, err
	}

	m.emitOutcome(msg, receipt)

	return receipt, nil
}

// SubmitTransaction decodes a signed legacy transaction and applies it
func (m *Module) SubmitTransaction(raw []byte) (*types.Receipt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	msg, err := m.decodeTransaction(raw)
	if err != nil {
		return nil, err
	}

	receipt, err := m.apply(msg, "transaction")
	if err != nil {
		return nil, err
	}

	m.emitOutcome(msg, receipt)

	return receipt, nil
}

// SubmitBlock applies raw transactions in order as one block. Transactions
// that cannot be decoded or fail validation are rejected, the others share
// the block gas limit.
func (m *Module) SubmitBlock(raws [][]byte) (*state.BlockResult, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	msgs := make([]*state.Message, 0, len(raws))
	positions := make([]int, 0, len(raws))

	var rejected []*state.RejectedMessage

	for i, raw := range raws {
		msg, err := m.decodeTransaction(raw)
		if err != nil {
			rejected = append(rejected, &state.RejectedMessage{Index: i, Err: err})

			continue
		}

		msgs = append(msgs, msg)
		positions = append(positions, i)
	}

	res, err := m.executor.ApplyBlock(msgs)
	if err != nil {
		m.logger.Error("block dispatch failed", "err", err)

		return nil, err
	}

	applied := make(map[int]struct{}, len(msgs))
	for i := range msgs {
		applied[i] = struct{}{}
	}

	for _, r := range res.Rejected {
		delete(applied, r.Index)
		rejected = append(rejected, &state.RejectedMessage{Index: positions[r.Index], Err: dispatchError(r.Err)})
	}

	sort.Slice(rejected, func(i, j int) bool {
		return rejected[i].Index < rejected[j].Index
	})

	res.Rejected = rejected

	// receipts are in message order, skipping the rejected ones
	next := 0

	for i, msg := range msgs {
		if _, ok := applied[i]; !ok {
			continue
		}

		receipt := res.Receipts[next]
		next++

		m.dispatched("transaction")

		for _, log := range receipt.Logs {
			m.events.Emit(LogEvent{Log: log})
		}

		m.emitOutcome(msg, receipt)
	}

	return res, nil
}

func (m *Module) decodeTransaction(raw []byte) (*state.Message, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalRLP(raw); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	if tx.V == nil || tx.R == nil || tx.S == nil {
		return nil, state.ErrMissingSender
	}

	header := m.executor.Header()
	config := m.executor.Config()

	signer := crypto.NewSigner(config.Forks.At(header.Number), config.ChainID)

	from, err := signer.Sender(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender: %w", err)
	}

	tx.From = from
	tx.ComputeHash()

	return state.NewMessage(tx), nil
}

// emitOutcome emits the created or executed event of a transaction
func (m *Module) emitOutcome(msg *state.Message, receipt *types.Receipt) {
	if msg.IsContractCreation() {
		if receipt.ContractAddress == nil {
			return
		}

		if receipt.Succeeded() {
			m.events.Emit(CreatedEvent{Address: *receipt.ContractAddress})
		} else {
			m.events.Emit(CreatedFailedEvent{Address: *receipt.ContractAddress})
		}

		return
	}

	if receipt.Succeeded() {
		m.events.Emit(ExecutedEvent{Address: *msg.To})
	} else {
		m.events.Emit(ExecutedFailedEvent{Address: *msg.To})
	}
}

// message checks the origin and the payment of a dispatchable and builds
// the message it runs
func (m *Module) message(origin Origin, args *CallArgs) (*state.Message, error) {
	if _, err := m.callOrigin.EnsureAddressOrigin(args.Source, origin); err != nil {
		return nil, err
	}

	value := args.Value
	if value == nil {
		value = new(uint256.Int)
	}

	price := args.GasPrice
	if price == nil {
		price = new(uint256.Int)
	}

	fee, err := m.executor.Fee(args.GasLimit, price)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeeOverflow, err)
	}

	total, overflow := new(uint256.Int).AddOverflow(fee, value)
	if overflow {
		return nil, ErrPaymentOverflow
	}

	basic, err := m.AccountBasic(args.Source)
	if err != nil {
		return nil, err
	}

	if basic.Balance.Lt(total) {
		return nil, fmt.Errorf("%w: %s < %s", ErrBalanceLow, basic.Balance.Dec(), total.Dec())
	}

	nonce := basic.Nonce
	if args.Nonce != nil {
		if *args.Nonce != nonce {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidNonce, nonce, *args.Nonce)
		}
	}

	return &state.Message{
		From:     args.Source,
		Nonce:    nonce,
		GasPrice: price.Clone(),
		Gas:      args.GasLimit,
		Value:    value.Clone(),
	}, nil
}

func (m *Module) apply(msg *state.Message, op string) (*types.Receipt, error) {
	receipt, err := m.executor.Apply(msg)
	if err != nil {
		if state.IsValidationError(err) {
			return nil, dispatchError(err)
		}

		m.logger.Error("dispatch failed", "op", op, "from", msg.From, "err", err)

		return nil, err
	}

	m.dispatched(op)

	for _, log := range receipt.Logs {
		m.events.Emit(LogEvent{Log: log})
	}

	return receipt, nil
}

func (m *Module) dispatched(op string) {
	metrics.IncrCounterWithLabels([]string{"pallet", "dispatch"}, 1, []metrics.Label{
		{Name: "op", Value: op},
	})
}
