package state

import (
	"fmt"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/helper/keccak"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	// logIndex is the index of the logs in the trie
	logIndex = types.BytesToHash([]byte{2}).Bytes()
)

// Txn is the pending changeset of a transaction over a read snapshot.
// Snapshots are O(1) copies of the radix tree.
type Txn struct {
	snapshot  readSnapshot
	snapshots []*iradix.Tree
	txn       *iradix.Txn
}

func NewTxn(snapshot readSnapshot) *Txn {
	return newTxn(snapshot)
}

func newTxn(snapshot readSnapshot) *Txn {
	i := iradix.New()

	return &Txn{
		snapshot:  snapshot,
		snapshots: []*iradix.Tree{},
		txn:       i.Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (txn *Txn) Snapshot() int {
	t := txn.txn.CommitOnly()

	id := len(txn.snapshots)
	txn.snapshots = append(txn.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot
func (txn *Txn) RevertToSnapshot(id int) error {
	if id > len(txn.snapshots)-1 {
		return fmt.Errorf("snapshot id %d out of the range", id)
	}

	tree := txn.snapshots[id]
	txn.txn = tree.Txn()

	return nil
}

// GetAccount returns an account
func (txn *Txn) GetAccount(addr types.Address) (*Account, bool) {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil, false
	}

	return object.Account, true
}

func (txn *Txn) getStateObject(addr types.Address) (*StateObject, bool) {
	// Try to get state from radix tree which holds transient states during block processing first
	val, exists := txn.txn.Get(addr.Bytes())
	if exists {
		obj := val.(*StateObject) //nolint:forcetypeassert
		if obj.Deleted {
			return nil, false
		}

		return obj.Copy(), true
	}

	account := txn.snapshot.GetAccount(addr)
	if account == nil {
		return nil, false
	}

	obj := &StateObject{
		Account: account.Copy(),
	}

	return obj, true
}

func (txn *Txn) upsertAccount(addr types.Address, create bool, f func(object *StateObject)) {
	object, exists := txn.getStateObject(addr)
	if !exists && create {
		object = &StateObject{
			Account: newAccount(),
		}
	}

	// run the callback to modify the account
	f(object)

	if object != nil {
		txn.txn.Insert(addr.Bytes(), object)
	}
}

// AddBalance adds balance
func (txn *Txn) AddBalance(addr types.Address, balance *uint256.Int) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Balance.Add(object.Account.Balance, balance)
	})
}

// SubBalance reduces the balance at address addr by amount
func (txn *Txn) SubBalance(addr types.Address, amount *uint256.Int) error {
	// If we try to reduce balance by 0, then it's a noop
	if amount.IsZero() {
		return nil
	}

	// Check if we have enough balance to deduce amount from
	if balance := txn.GetBalance(addr); balance.Lt(amount) {
		return runtime.ErrNotEnoughFunds
	}

	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Balance.Sub(object.Account.Balance, amount)
	})

	return nil
}

// SetBalance sets the balance
func (txn *Txn) SetBalance(addr types.Address, balance *uint256.Int) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Balance.Set(balance)
	})
}

// GetBalance returns the balance of an address
func (txn *Txn) GetBalance(addr types.Address) *uint256.Int {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return new(uint256.Int)
	}

	return object.Account.Balance
}

func (txn *Txn) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	log := &types.Log{
		Address: addr,
		Topics:  topics,
	}
	log.Data = append(log.Data, data...)

	var logs []*types.Log

	val, exists := txn.txn.Get(logIndex)
	if !exists {
		logs = []*types.Log{}
	} else {
		logs = val.([]*types.Log) //nolint:forcetypeassert
	}

	// the slice is shared with older snapshots, never append in place
	next := make([]*types.Log, len(logs), len(logs)+1)
	copy(next, logs)
	next = append(next, log)

	txn.txn.Insert(logIndex, next)
}

// Logs returns the logs in emission order
func (txn *Txn) Logs() []*types.Log {
	data, exists := txn.txn.Get(logIndex)
	if !exists {
		return nil
	}

	txn.txn.Delete(logIndex)

	return data.([]*types.Log) //nolint:forcetypeassert
}

// SetState change the state of an address
func (txn *Txn) SetState(
	addr types.Address,
	key,
	value types.Hash,
) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		if object.Txn == nil {
			object.Txn = iradix.New().Txn()
		}

		if value == types.ZeroHash {
			object.Txn.Insert(key.Bytes(), nil)
		} else {
			object.Txn.Insert(key.Bytes(), value.Bytes())
		}
	})
}

// GetState returns the state of the address at a given key
func (txn *Txn) GetState(addr types.Address, key types.Hash) types.Hash {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return types.Hash{}
	}

	// Try to get account state from radix tree first
	// Because the latest account state should be in in-memory radix tree
	// if account state update happened in previous frames of the transaction
	if object.Txn != nil {
		if val, ok := object.Txn.Get(key.Bytes()); ok {
			if val == nil {
				return types.Hash{}
			}

			return types.BytesToHash(val.([]byte)) //nolint:forcetypeassert
		}
	}

	return txn.snapshot.GetStorage(addr, key)
}

// GetCommittedState returns the value of the slot at the start of the transaction
func (txn *Txn) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	if _, ok := txn.getStateObject(addr); !ok {
		return types.Hash{}
	}

	return txn.snapshot.GetStorage(addr, key)
}

// Nonce

// IncrNonce increases the nonce of the address
func (txn *Txn) IncrNonce(addr types.Address) error {
	var err error

	txn.upsertAccount(addr, true, func(object *StateObject) {
		if object.Account.Nonce+1 < object.Account.Nonce {
			err = ErrNonceUintOverflow

			return
		}

		object.Account.Nonce++
	})

	return err
}

// SetNonce sets the nonce of an addr
func (txn *Txn) SetNonce(addr types.Address, nonce uint64) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.Nonce = nonce
	})
}

// GetNonce returns the nonce of an addr
func (txn *Txn) GetNonce(addr types.Address) uint64 {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return 0
	}

	return object.Account.Nonce
}

// Code

// SetCode sets the code for an address
func (txn *Txn) SetCode(addr types.Address, code []byte) {
	txn.upsertAccount(addr, true, func(object *StateObject) {
		object.Account.CodeHash = types.BytesToHash(keccak.Keccak256(nil, code))
		object.DirtyCode = true
		object.Code = code
	})
}

func (txn *Txn) GetCode(addr types.Address) []byte {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return nil
	}

	if object.DirtyCode {
		return object.Code
	}

	if object.Account.CodeHash == types.EmptyCodeHash {
		return nil
	}

	return txn.snapshot.GetCode(addr)
}

func (txn *Txn) GetCodeSize(addr types.Address) int {
	return len(txn.GetCode(addr))
}

func (txn *Txn) GetCodeHash(addr types.Address) types.Hash {
	object, exists := txn.getStateObject(addr)
	if !exists {
		return types.Hash{}
	}

	return object.Account.CodeHash
}

// Suicide marks the given account as suicided
func (txn *Txn) Suicide(addr types.Address) bool {
	var suicided bool

	txn.upsertAccount(addr, false, func(object *StateObject) {
		if object == nil || object.Suicide {
			suicided = false
		} else {
			suicided = true
			object.Suicide = true
		}

		if object != nil {
			object.Account.Balance = new(uint256.Int)
		}
	})

	return suicided
}

// HasSuicided returns true if the account suicided
func (txn *Txn) HasSuicided(addr types.Address) bool {
	object, exists := txn.getStateObject(addr)

	return exists && object.Suicide
}

func (txn *Txn) TouchAccount(addr types.Address) {
	txn.upsertAccount(addr, true, func(obj *StateObject) {
	})
}

func (txn *Txn) Exist(addr types.Address) bool {
	_, exists := txn.getStateObject(addr)

	return exists
}

func (txn *Txn) Empty(addr types.Address) bool {
	obj, exists := txn.getStateObject(addr)
	if !exists {
		return true
	}

	return obj.Empty()
}

// CreateAccount installs a fresh account at addr that keeps any balance
// already sent to the address
func (txn *Txn) CreateAccount(addr types.Address) {
	obj := &StateObject{
		Account: newAccount(),
	}

	prev, ok := txn.getStateObject(addr)
	if ok {
		obj.Account.Balance.Set(prev.Account.Balance)
	}

	txn.txn.Insert(addr.Bytes(), obj)
}

// CleanDeleteObjects marks suicided accounts, and with deleteEmptyObjects
// the touched empty ones, as deleted
func (txn *Txn) CleanDeleteObjects(deleteEmptyObjects bool) error {
	remove := [][]byte{}

	txn.txn.Root().Walk(func(k []byte, v interface{}) bool {
		a, ok := v.(*StateObject)
		if !ok {
			return false
		}

		if a.Suicide || a.Empty() && deleteEmptyObjects {
			remove = append(remove, k)
		}

		return false
	})

	for _, k := range remove {
		v, ok := txn.txn.Get(k)
		if !ok {
			return fmt.Errorf("failed to retrieve value for %s key", string(k))
		}

		obj, ok := v.(*StateObject)
		if !ok {
			return fmt.Errorf("found object %v of unexpected type when deleting %s", v, string(k))
		}

		obj2 := obj.Copy()
		obj2.Deleted = true
		txn.txn.Insert(k, obj2)
	}

	return nil
}

// Commit flattens the changeset into the objects the backend persists
func (txn *Txn) Commit(deleteEmptyObjects bool) ([]*Object, error) {
	if err := txn.CleanDeleteObjects(deleteEmptyObjects); err != nil {
		return nil, err
	}

	x := txn.txn.Commit()

	objs := []*Object{}

	x.Root().Walk(func(k []byte, v interface{}) bool {
		a, ok := v.(*StateObject)
		if !ok {
			// We also have logs, avoid those
			return false
		}

		obj := &Object{
			Nonce:     a.Account.Nonce,
			Address:   types.BytesToAddress(k),
			Balance:   a.Account.Balance,
			CodeHash:  a.Account.CodeHash,
			DirtyCode: a.DirtyCode,
			Code:      a.Code,
		}

		if a.Deleted {
			obj.Deleted = true
		} else if a.Txn != nil {
			a.Txn.Root().Walk(func(k []byte, v interface{}) bool {
				store := &StorageObject{Key: k}
				if v == nil {
					store.Deleted = true
				} else {
					store.Val = v.([]byte) //nolint:forcetypeassert
				}

				obj.Storage = append(obj.Storage, store)

				return false
			})
		}

		objs = append(objs, obj)

		return false
	})

	return objs, nil
}
