package pallet

import (
	"bytes"

	"github.com/0xPolygon/evm-bridge/mapping"
	"github.com/0xPolygon/evm-bridge/types"
)

// Origin is the caller of a dispatchable, either the chain itself or a
// signed native account
type Origin struct {
	root   bool
	signer types.AccountID
}

// RootOrigin is the origin of privileged calls
func RootOrigin() Origin {
	return Origin{root: true}
}

// SignedOrigin is the origin of a call signed by id
func SignedOrigin(id types.AccountID) Origin {
	return Origin{signer: id}
}

func (o Origin) IsRoot() bool {
	return o.root
}

// Signer returns the signing account, false for the root origin
func (o Origin) Signer() (types.AccountID, bool) {
	if o.root {
		return types.AccountID{}, false
	}

	return o.signer, true
}

func (o Origin) String() string {
	if o.root {
		return "root"
	}

	return o.signer.String()
}

// EnsureAddressOrigin authorizes an origin to act for an EVM address. It
// returns the native account the origin stands for.
type EnsureAddressOrigin interface {
	EnsureAddressOrigin(addr types.Address, origin Origin) (types.AccountID, error)
}

var (
	_ EnsureAddressOrigin = EnsureAddressRoot{}
	_ EnsureAddressOrigin = EnsureAddressNever{}
	_ EnsureAddressOrigin = EnsureAddressTruncated{}
	_ EnsureAddressOrigin = EnsureAddressSame{}
)

// EnsureAddressRoot only lets the root origin through. No native account
// stands for it.
type EnsureAddressRoot struct{}

func (EnsureAddressRoot) EnsureAddressOrigin(_ types.Address, origin Origin) (types.AccountID, error) {
	if !origin.IsRoot() {
		return types.AccountID{}, ErrBadOrigin
	}

	return types.AccountID{}, nil
}

// EnsureAddressNever rejects every origin
type EnsureAddressNever struct{}

func (EnsureAddressNever) EnsureAddressOrigin(types.Address, Origin) (types.AccountID, error) {
	return types.AccountID{}, ErrBadOrigin
}

// EnsureAddressTruncated accepts a signer whose first 20 bytes are the address
type EnsureAddressTruncated struct{}

func (EnsureAddressTruncated) EnsureAddressOrigin(addr types.Address, origin Origin) (types.AccountID, error) {
	signer, ok := origin.Signer()
	if !ok || !bytes.Equal(signer[:types.AddressLength], addr[:]) {
		return types.AccountID{}, ErrBadOrigin
	}

	return signer, nil
}

// EnsureAddressSame accepts a signer the address maps to
type EnsureAddressSame struct {
	Mapper mapping.Mapper
}

func (e EnsureAddressSame) EnsureAddressOrigin(addr types.Address, origin Origin) (types.AccountID, error) {
	signer, ok := origin.Signer()
	if !ok || e.Mapper.ToAccountID(addr) != signer {
		return types.AccountID{}, ErrBadOrigin
	}

	return signer, nil
}
