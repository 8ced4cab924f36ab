package state

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/helper/keccak"
	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/mapping"
	"github.com/0xPolygon/evm-bridge/storage"
	"github.com/0xPolygon/evm-bridge/types"
)

const defaultCodeCacheSize = 1024

var _ readSnapshot = (*Backend)(nil)

type codeEntry struct {
	code []byte
	hash types.Hash
}

// Backend adapts the host chain to the state the EVM reads. Balances and
// nonces live in the host ledger and system, code and storage in the kv store.
//
// Reads never fail. The first host fault is kept as a sticky error that the
// executor surfaces once the transaction has run.
type Backend struct {
	logger hclog.Logger
	kv     storage.KV
	ledger host.Ledger
	system host.System
	mapper mapping.Mapper

	code *lru.Cache

	lock sync.Mutex
	err  error
}

func NewBackend(
	kv storage.KV,
	ledger host.Ledger,
	system host.System,
	mapper mapping.Mapper,
	logger hclog.Logger,
) (*Backend, error) {
	cache, err := lru.New(defaultCodeCacheSize)
	if err != nil {
		return nil, err
	}

	return &Backend{
		logger: logger.Named("backend"),
		kv:     kv,
		ledger: ledger,
		system: system,
		mapper: mapper,
		code:   cache,
	}, nil
}

// Mapper returns the address mapping in use
func (b *Backend) Mapper() mapping.Mapper {
	return b.mapper
}

// Err returns the sticky host fault, if any
func (b *Backend) Err() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.err
}

// Reset clears the sticky error once the executor dealt with it
func (b *Backend) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.err = nil
}

func (b *Backend) fault(op string, err error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.logger.Error("host fault", "op", op, "err", err)

	if b.err == nil {
		b.err = fmt.Errorf("%s: %w", op, err)
	}
}

func codeKey(addr types.Address) []byte {
	return storage.Key(storage.CODE, addr.Bytes())
}

func storageKey(addr types.Address, key []byte) []byte {
	return storage.Key(storage.STORAGE, addr.Bytes(), key)
}

func (b *Backend) codeEntry(addr types.Address) codeEntry {
	if v, ok := b.code.Get(addr); ok {
		return v.(codeEntry) //nolint:forcetypeassert
	}

	code, ok, err := b.kv.Get(codeKey(addr))
	if err != nil {
		b.fault("get code", err)

		return codeEntry{hash: types.EmptyCodeHash}
	}

	entry := codeEntry{hash: types.EmptyCodeHash}
	if ok && len(code) != 0 {
		entry = codeEntry{code: code, hash: types.BytesToHash(keccak.Keccak256(nil, code))}
	}

	b.code.Add(addr, entry)

	return entry
}

// GetAccount returns the account at addr, or nil when the host holds
// neither balance, nonce nor code for it
func (b *Backend) GetAccount(addr types.Address) *Account {
	id := b.mapper.ToAccountID(addr)

	balance, err := b.ledger.Balance(id)
	if err != nil {
		b.fault("get balance", err)

		balance = new(uint256.Int)
	}

	nonce, err := b.system.Nonce(id)
	if err != nil {
		b.fault("get nonce", err)
	}

	entry := b.codeEntry(addr)

	if balance.IsZero() && nonce == 0 && entry.hash == types.EmptyCodeHash {
		return nil
	}

	return &Account{
		Nonce:    nonce,
		Balance:  balance,
		CodeHash: entry.hash,
	}
}

func (b *Backend) GetStorage(addr types.Address, key types.Hash) types.Hash {
	v, ok, err := b.kv.Get(storageKey(addr, key.Bytes()))
	if err != nil {
		b.fault("get storage", err)

		return types.Hash{}
	}

	if !ok {
		return types.Hash{}
	}

	return types.BytesToHash(v)
}

func (b *Backend) GetCode(addr types.Address) []byte {
	return b.codeEntry(addr).code
}

// Commit writes the objects of a finished transaction. Every read happens
// before the first write. When the ledger and system stage into the backend
// store, everything lands in a single batch. Otherwise balance moves are
// applied first and undone if anything after them fails; nonce increments
// of a System that cannot stage are not undone.
func (b *Backend) Commit(objs []*Object) error {
	batch := b.kv.NewBatch()

	var (
		changes   []*accountChange
		dirtyCode []types.Address
	)

	for _, obj := range objs {
		id := b.mapper.ToAccountID(obj.Address)

		balance, err := b.ledger.Balance(id)
		if err != nil {
			return err
		}

		change := &accountChange{id: id, balance: balance}

		if obj.Deleted {
			if _, err := storage.DeletePrefix(b.kv, batch, storageKey(obj.Address, nil)); err != nil {
				return err
			}

			batch.Delete(codeKey(obj.Address))
			dirtyCode = append(dirtyCode, obj.Address)

			if !balance.IsZero() {
				change.target = new(uint256.Int)
			}

			changes = append(changes, change)

			continue
		}

		if !balance.Eq(obj.Balance) {
			change.target = obj.Balance.Clone()
		}

		if change.nonce, err = b.system.Nonce(id); err != nil {
			return err
		}

		if obj.Nonce > change.nonce {
			change.targetNonce = obj.Nonce
		}

		if obj.DirtyCode {
			batch.Put(codeKey(obj.Address), obj.Code)
			dirtyCode = append(dirtyCode, obj.Address)
		}

		for _, entry := range obj.Storage {
			if entry.Deleted {
				batch.Delete(storageKey(obj.Address, entry.Key))
			} else {
				batch.Put(storageKey(obj.Address, entry.Key), entry.Val)
			}
		}

		changes = append(changes, change)
	}

	if err := b.commitAccounts(batch, changes); err != nil {
		return err
	}

	for _, addr := range dirtyCode {
		b.code.Remove(addr)
	}

	b.logger.Debug("committed", "objects", len(objs), "writes", batch.Len())

	return nil
}

// accountChange is the host side of a committed object
type accountChange struct {
	id      types.AccountID
	balance *uint256.Int
	nonce   uint64

	// target is nil when the balance is unchanged
	target *uint256.Int
	// targetNonce is zero when the nonce is unchanged
	targetNonce uint64
}

// stager returns c as a Stager when it writes to the backend store
func (b *Backend) stager(c interface{}) host.Stager {
	s, ok := c.(host.Stager)
	if !ok || s.Store() != b.kv {
		return nil
	}

	return s
}

func (b *Backend) commitAccounts(batch storage.Batch, changes []*accountChange) error {
	ledgerStager, systemStager := b.stager(b.ledger), b.stager(b.system)

	var undo []func() error

	if ledgerStager != nil {
		for _, c := range changes {
			if c.target != nil {
				ledgerStager.StageBalance(batch, c.id, c.target)
			}
		}
	} else {
		var err error

		if undo, err = b.applyBalances(changes); err != nil {
			return b.rollback(err, undo)
		}
	}

	for _, c := range changes {
		if c.targetNonce == 0 {
			continue
		}

		if systemStager != nil {
			systemStager.StageNonce(batch, c.id, c.targetNonce)

			continue
		}

		for n := c.nonce; n < c.targetNonce; n++ {
			if err := b.system.IncNonce(c.id); err != nil {
				return b.rollback(fmt.Errorf("increment nonce of %s: %w", c.id, err), undo)
			}
		}
	}

	if err := batch.Write(); err != nil {
		return b.rollback(err, undo)
	}

	return nil
}

// applyBalances moves balances through the ledger, debits first so the
// ledger never sees a transient excess of supply. The returned functions
// undo the moves that succeeded.
func (b *Backend) applyBalances(changes []*accountChange) ([]func() error, error) {
	var undo []func() error

	for _, c := range changes {
		if c.target == nil || !c.target.Lt(c.balance) {
			continue
		}

		id, amount := c.id, new(uint256.Int).Sub(c.balance, c.target)

		if err := b.ledger.Withdraw(id, amount); err != nil {
			return undo, fmt.Errorf("withdraw %s from %s: %w", amount, id, err)
		}

		undo = append(undo, func() error {
			return b.ledger.Deposit(id, amount)
		})
	}

	for _, c := range changes {
		if c.target == nil || !c.target.Gt(c.balance) {
			continue
		}

		id, amount := c.id, new(uint256.Int).Sub(c.target, c.balance)

		if err := b.ledger.Deposit(id, amount); err != nil {
			return undo, fmt.Errorf("deposit %s to %s: %w", amount, id, err)
		}

		undo = append(undo, func() error {
			return b.ledger.Withdraw(id, amount)
		})
	}

	return undo, nil
}

// rollback runs undo in reverse. Failures are appended to cause.
func (b *Backend) rollback(cause error, undo []func() error) error {
	result := cause

	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](); err != nil {
			b.logger.Error("failed to undo balance move", "err", err)

			result = multierror.Append(result, fmt.Errorf("rollback: %w", err))
		}
	}

	return result
}

// SetAccountDirectly writes a genesis account straight into the host
func (b *Backend) SetAccountDirectly(addr types.Address, account *Account, code []byte, slots map[types.Hash]types.Hash) error {
	obj := &Object{
		Address: addr,
		Nonce:   account.Nonce,
		Balance: account.Balance,
	}

	if len(code) != 0 {
		obj.DirtyCode = true
		obj.Code = code
	}

	for k, v := range slots {
		k := k
		entry := &StorageObject{Key: k.Bytes()}

		if v == types.ZeroHash {
			entry.Deleted = true
		} else {
			entry.Val = v.Bytes()
		}

		obj.Storage = append(obj.Storage, entry)
	}

	return b.Commit([]*Object{obj})
}

// Iterate walks the storage slots of addr in key order
func (b *Backend) IterateStorage(addr types.Address, fn func(key, value types.Hash) bool) error {
	prefix := storageKey(addr, nil)

	return b.kv.Iterate(prefix, func(k, v []byte) bool {
		return fn(types.BytesToHash(k[len(prefix):]), types.BytesToHash(v))
	})
}

// RemoveAccount drops the code and storage of addr. The host balance and
// nonce are left alone.
func (b *Backend) RemoveAccount(addr types.Address) error {
	batch := b.kv.NewBatch()

	if _, err := storage.DeletePrefix(b.kv, batch, storageKey(addr, nil)); err != nil {
		return err
	}

	batch.Delete(codeKey(addr))

	if err := batch.Write(); err != nil {
		return err
	}

	b.code.Remove(addr)

	return nil
}
