// Package host declares the collaborators the EVM bridge consumes from the
// chain it is embedded in. The bridge never implements them itself; package
// ledger ships a reference implementation used by the CLI and the tests.
package host

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/storage"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	// ErrInsufficientBalance is returned by the ledger when an account cannot cover a debit
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyRegistered is returned by the account index when either side of a pair is taken
	ErrAlreadyRegistered = errors.New("address or account already registered")
)

// Ledger is the fee-currency ledger of the host chain
type Ledger interface {
	// Balance returns the free balance of the account
	Balance(id types.AccountID) (*uint256.Int, error)

	// Transfer moves amount between two accounts
	Transfer(from, to types.AccountID, amount *uint256.Int) error

	// Deposit mints amount into the account
	Deposit(id types.AccountID, amount *uint256.Int) error

	// Withdraw burns amount from the account
	Withdraw(id types.AccountID, amount *uint256.Int) error
}

// System holds the account nonces of the host chain
type System interface {
	Nonce(id types.AccountID) (uint64, error)
	IncNonce(id types.AccountID) error
}

// Stager is implemented by a Ledger or System that keeps its records in the
// store the bridge writes code and storage to. Their writes then join the
// same batch and a commit lands as a whole or not at all.
type Stager interface {
	// Store returns the store the records live in
	Store() storage.KV

	// StageBalance queues balance as the new balance of id
	StageBalance(b storage.Batch, id types.AccountID, balance *uint256.Int)

	// StageNonce queues nonce as the new nonce of id
	StageNonce(b storage.Batch, id types.AccountID, nonce uint64)
}

// BlockContext exposes the block being built
type BlockContext interface {
	Header() *types.Header
	BlockHash(number uint64) types.Hash
}

// AccountIndex is the native account registry used to invert address mappings
type AccountIndex interface {
	// Lookup returns the native account registered for addr
	Lookup(addr types.Address) (types.AccountID, bool)

	// Address returns the address id was registered with
	Address(id types.AccountID) (types.Address, bool)

	// Register records the pair in both directions. A pair that conflicts
	// with an existing entry is rejected with ErrAlreadyRegistered.
	Register(addr types.Address, id types.AccountID) error
}

// Event is a notification emitted by the boundary layer
type Event interface {
	Name() string
}

// EventSink receives the events of the boundary layer in emission order
type EventSink interface {
	Emit(evnt Event)
}
