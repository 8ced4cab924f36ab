// Package ledger is a reference implementation of the host collaborators
// backed by a key value store.
package ledger

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/storage"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	_ host.Ledger = (*Ledger)(nil)
	_ host.System = (*Ledger)(nil)
	_ host.Stager = (*Ledger)(nil)
)

// Ledger keeps balances and nonces of native accounts
type Ledger struct {
	logger hclog.Logger
	kv     storage.KV
	lock   sync.Mutex
}

// NewLedger creates a ledger over kv
func NewLedger(kv storage.KV, logger hclog.Logger) *Ledger {
	return &Ledger{
		logger: logger.Named("ledger"),
		kv:     kv,
	}
}

func (l *Ledger) Balance(id types.AccountID) (*uint256.Int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.balance(id)
}

func (l *Ledger) balance(id types.AccountID) (*uint256.Int, error) {
	v, ok, err := l.kv.Get(storage.Key(storage.BALANCE, id.Bytes()))
	if err != nil {
		return nil, err
	}

	if !ok {
		return new(uint256.Int), nil
	}

	return new(uint256.Int).SetBytes(v), nil
}

func (l *Ledger) setBalance(b storage.Batch, id types.AccountID, amount *uint256.Int) {
	key := storage.Key(storage.BALANCE, id.Bytes())

	if amount.IsZero() {
		b.Delete(key)
	} else {
		b.Put(key, amount.Bytes())
	}
}

// Store returns the store the ledger keeps its records in
func (l *Ledger) Store() storage.KV {
	return l.kv
}

func (l *Ledger) StageBalance(b storage.Batch, id types.AccountID, balance *uint256.Int) {
	l.setBalance(b, id, balance)
}

func (l *Ledger) StageNonce(b storage.Batch, id types.AccountID, nonce uint64) {
	b.Put(nonceKey(id), encodeNonce(nonce))
}

func nonceKey(id types.AccountID) []byte {
	return storage.Key(storage.NONCE, id.Bytes())
}

func encodeNonce(nonce uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, nonce)

	return buf
}

func (l *Ledger) Transfer(from, to types.AccountID, amount *uint256.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if from == to {
		return l.ensure(from, amount)
	}

	src, err := l.balance(from)
	if err != nil {
		return err
	}

	if src.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", host.ErrInsufficientBalance, from, src, amount)
	}

	dst, err := l.balance(to)
	if err != nil {
		return err
	}

	dst, overflow := new(uint256.Int).AddOverflow(dst, amount)
	if overflow {
		return fmt.Errorf("balance overflow for %s", to)
	}

	b := l.kv.NewBatch()
	l.setBalance(b, from, src.Sub(src, amount))
	l.setBalance(b, to, dst)

	if err := b.Write(); err != nil {
		return err
	}

	l.logger.Debug("transfer", "from", from, "to", to, "amount", amount)

	return nil
}

func (l *Ledger) ensure(id types.AccountID, amount *uint256.Int) error {
	balance, err := l.balance(id)
	if err != nil {
		return err
	}

	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", host.ErrInsufficientBalance, id, balance, amount)
	}

	return nil
}

func (l *Ledger) Deposit(id types.AccountID, amount *uint256.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	balance, err := l.balance(id)
	if err != nil {
		return err
	}

	balance, overflow := balance.AddOverflow(balance, amount)
	if overflow {
		return fmt.Errorf("balance overflow for %s", id)
	}

	b := l.kv.NewBatch()
	l.setBalance(b, id, balance)

	return b.Write()
}

func (l *Ledger) Withdraw(id types.AccountID, amount *uint256.Int) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	balance, err := l.balance(id)
	if err != nil {
		return err
	}

	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", host.ErrInsufficientBalance, id, balance, amount)
	}

	b := l.kv.NewBatch()
	l.setBalance(b, id, balance.Sub(balance, amount))

	return b.Write()
}

func (l *Ledger) Nonce(id types.AccountID) (uint64, error) {
	v, ok, err := l.kv.Get(nonceKey(id))
	if err != nil {
		return 0, err
	}

	if !ok {
		return 0, nil
	}

	if len(v) != 8 {
		return 0, fmt.Errorf("corrupted nonce for %s", id)
	}

	return binary.BigEndian.Uint64(v), nil
}

func (l *Ledger) IncNonce(id types.AccountID) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	nonce, err := l.Nonce(id)
	if err != nil {
		return err
	}

	return l.kv.Set(nonceKey(id), encodeNonce(nonce+1))
}
