package state

import (
	"fmt"

	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/types"
)

// readSnapshot is the committed state a Txn stages its changes on.
// Reads never fail, absent values are reported as their zero value.
type readSnapshot interface {
	GetAccount(addr types.Address) *Account
	GetStorage(addr types.Address, key types.Hash) types.Hash
	GetCode(addr types.Address) []byte
}

// Account is the EVM view of a host account
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash types.Hash
}

func (a *Account) String() string {
	return fmt.Sprintf("%d %s", a.Nonce, a.Balance.Dec())
}

func (a *Account) Copy() *Account {
	aa := new(Account)

	aa.Balance = new(uint256.Int).Set(a.Balance)
	aa.Nonce = a.Nonce
	aa.CodeHash = a.CodeHash

	return aa
}

func newAccount() *Account {
	return &Account{
		Balance:  new(uint256.Int),
		CodeHash: types.EmptyCodeHash,
	}
}

// StateObject is the internal representation of the account
type StateObject struct {
	Account   *Account
	Code      []byte
	Suicide   bool
	Deleted   bool
	DirtyCode bool
	Txn       *iradix.Txn
}

func (s *StateObject) Empty() bool {
	return s.Account.Nonce == 0 && s.Account.Balance.IsZero() && s.Account.CodeHash == types.EmptyCodeHash
}

// Copy makes a copy of the state object
func (s *StateObject) Copy() *StateObject {
	ss := new(StateObject)

	// copy account
	ss.Account = s.Account.Copy()

	ss.Suicide = s.Suicide
	ss.Deleted = s.Deleted
	ss.DirtyCode = s.DirtyCode
	ss.Code = s.Code

	if s.Txn != nil {
		ss.Txn = s.Txn.CommitOnly().Txn()
	}

	return ss
}

// Object is a committed account handed to the backend
type Object struct {
	Address  types.Address
	CodeHash types.Hash
	Balance  *uint256.Int
	Nonce    uint64
	Deleted  bool

	DirtyCode bool
	Code      []byte

	Storage []*StorageObject
}

// StorageObject is an entry in the storage
type StorageObject struct {
	Deleted bool
	Key     []byte
	Val     []byte
}
