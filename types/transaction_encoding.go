package types

import (
	"fmt"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/evm-bridge/helper/keccak"
)

func (t *Transaction) MarshalRLP() []byte {
	return t.MarshalRLPTo(nil)
}

func (t *Transaction) MarshalRLPTo(dst []byte) []byte {
	a := fastrlp.DefaultArenaPool.Get()
	dst = t.MarshalRLPWith(a).MarshalTo(dst)
	fastrlp.DefaultArenaPool.Put(a)

	return dst
}

// MarshalRLPWith marshals the transaction to RLP with a specific fastrlp.Arena
func (t *Transaction) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	vv.Set(arena.NewUint(t.Nonce))
	vv.Set(newUint256(arena, t.GasPrice))
	vv.Set(arena.NewUint(t.Gas))

	// Address may be empty
	if t.To != nil {
		vv.Set(arena.NewCopyBytes(t.To.Bytes()))
	} else {
		vv.Set(arena.NewNull())
	}

	vv.Set(newUint256(arena, t.Value))
	vv.Set(arena.NewCopyBytes(t.Input))

	// signature values
	vv.Set(newUint256(arena, t.V))
	vv.Set(newUint256(arena, t.R))
	vv.Set(newUint256(arena, t.S))

	return vv
}

func (t *Transaction) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(t.UnmarshalRLPFrom, input)
}

// UnmarshalRLPFrom unmarshals a Transaction in RLP format
func (t *Transaction) UnmarshalRLPFrom(_ *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if num := len(elems); num != 9 {
		return fmt.Errorf("incorrect number of elements to decode transaction, expected 9 but found %d", num)
	}

	hash := keccak.DefaultKeccakPool.Get()
	t.Hash = BytesToHash(hash.WriteRlp(nil, v))
	keccak.DefaultKeccakPool.Put(hash)

	// nonce
	if t.Nonce, err = elems[0].GetUint64(); err != nil {
		return err
	}

	// gasPrice
	if t.GasPrice, err = getUint256(elems[1]); err != nil {
		return err
	}

	// gas
	if t.Gas, err = elems[2].GetUint64(); err != nil {
		return err
	}

	// to
	vv, err := elems[3].Bytes()
	if err != nil {
		return err
	}

	switch len(vv) {
	case AddressLength:
		t.To = BytesToAddress(vv).Ptr()
	case 0:
		t.To = nil
	default:
		return fmt.Errorf("invalid receiver length %d", len(vv))
	}

	// value
	if t.Value, err = getUint256(elems[4]); err != nil {
		return err
	}

	// input
	if t.Input, err = elems[5].GetBytes(t.Input[:0]); err != nil {
		return err
	}

	// signature
	if t.V, err = getUint256(elems[6]); err != nil {
		return err
	}

	if t.R, err = getUint256(elems[7]); err != nil {
		return err
	}

	if t.S, err = getUint256(elems[8]); err != nil {
		return err
	}

	return nil
}
