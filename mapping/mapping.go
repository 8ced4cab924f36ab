// Package mapping converts between host account ids and EVM addresses
package mapping

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/evm-bridge/helper/keccak"
	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/types"
)

const (
	TruncatedStrategy = "truncated"
	HashedStrategy    = "hashed"
	IdentityStrategy  = "identity"
)

var errNoIndex = errors.New("address mapping has no account index")

// hashedPrefix domain separates hashed account ids
var hashedPrefix = []byte("evm:")

// Mapper converts account ids to addresses and back. Both directions are
// total and free of side effects: an unknown address still maps to a well
// defined account id.
type Mapper interface {
	ToEVMAddress(id types.AccountID) types.Address
	ToAccountID(addr types.Address) types.AccountID
}

// Registry is implemented by mappers that let a native account claim its
// truncated address. Claims are the only writes to the account index.
type Registry interface {
	Claim(id types.AccountID) error
}

// NewMapper returns the mapper for strategy. Truncated needs an index to resolve claimed addresses.
func NewMapper(strategy string, index host.AccountIndex) (Mapper, error) {
	switch strategy {
	case TruncatedStrategy, "":
		return NewTruncated(index), nil
	case HashedStrategy:
		return Hashed{}, nil
	case IdentityStrategy:
		return Identity{}, nil
	default:
		return nil, fmt.Errorf("unknown address mapping %q", strategy)
	}
}

// HashAccountID derives the account id owned by an address that has no native account
func HashAccountID(addr types.Address) types.AccountID {
	buf := make([]byte, 0, len(hashedPrefix)+types.AddressLength)
	buf = append(buf, hashedPrefix...)
	buf = append(buf, addr.Bytes()...)

	return types.BytesToAccountID(keccak.Keccak256(nil, buf))
}

func truncate(id types.AccountID) types.Address {
	return types.BytesToAddress(id[:types.AddressLength])
}

// Truncated uses the first 20 bytes of the account id as the address.
// An address resolves to a native account only after that account claimed it.
type Truncated struct {
	index host.AccountIndex
}

func NewTruncated(index host.AccountIndex) *Truncated {
	return &Truncated{index: index}
}

func (t *Truncated) ToEVMAddress(id types.AccountID) types.Address {
	return truncate(id)
}

// ToAccountID returns the native account that claimed addr, falling back
// to the hashed construction
func (t *Truncated) ToAccountID(addr types.Address) types.AccountID {
	if t.index != nil {
		if id, ok := t.index.Lookup(addr); ok {
			return id
		}
	}

	return HashAccountID(addr)
}

// Claim binds the truncated address of id to id
func (t *Truncated) Claim(id types.AccountID) error {
	if t.index == nil {
		return errNoIndex
	}

	return t.index.Register(truncate(id), id)
}

// Hashed owns the account keccak256("evm:" || addr) for every address
type Hashed struct{}

func (Hashed) ToEVMAddress(id types.AccountID) types.Address {
	return truncate(id)
}

func (Hashed) ToAccountID(addr types.Address) types.AccountID {
	return HashAccountID(addr)
}

// Identity stores the address left aligned and zero padded in the account id
type Identity struct{}

func (Identity) ToEVMAddress(id types.AccountID) types.Address {
	return truncate(id)
}

func (Identity) ToAccountID(addr types.Address) types.AccountID {
	var id types.AccountID
	copy(id[:], addr[:])

	return id
}
