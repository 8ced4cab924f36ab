package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/helper/keccak"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	ErrInvalidChainID = errors.New("invalid chain id for signer")

	u27 = uint256.NewInt(27)
	u35 = uint256.NewInt(35)
)

// TxSigner is a utility interface used to recover data from a transaction
type TxSigner interface {
	// Hash returns the hash of the transaction
	Hash(tx *types.Transaction) types.Hash

	// Sender returns the sender of the transaction
	Sender(tx *types.Transaction) (types.Address, error)

	// SignTx signs a transaction
	SignTx(tx *types.Transaction, priv *ecdsa.PrivateKey) (*types.Transaction, error)
}

// NewSigner creates a new signer object (EIP155 or FrontierSigner)
func NewSigner(forks chain.ForksInTime, chainID uint64) TxSigner {
	if forks.EIP155 {
		return NewEIP155Signer(chainID, forks.Homestead)
	}

	return NewFrontierSigner(forks.Homestead)
}

var signerPool fastrlp.ArenaPool

// calcTxHash calculates the signing hash of a legacy transaction, with the
// EIP-155 replay protection fields when chainID is not zero:
// keccak256(RLP(nonce, gasPrice, gas, to, value, input[, chainId, 0, 0]))
func calcTxHash(tx *types.Transaction, chainID uint64) types.Hash {
	a := signerPool.Get()
	defer signerPool.Put(a)

	v := a.NewArray()

	v.Set(a.NewUint(tx.Nonce))
	v.Set(newUint256(a, tx.GasPrice))
	v.Set(a.NewUint(tx.Gas))

	if tx.To == nil {
		v.Set(a.NewNull())
	} else {
		v.Set(a.NewCopyBytes(tx.To.Bytes()))
	}

	v.Set(newUint256(a, tx.Value))
	v.Set(a.NewCopyBytes(tx.Input))

	if chainID != 0 {
		v.Set(a.NewUint(chainID))
		v.Set(a.NewUint(0))
		v.Set(a.NewUint(0))
	}

	return types.BytesToHash(keccak.Keccak256Rlp(nil, v))
}

func newUint256(a *fastrlp.Arena, v *uint256.Int) *fastrlp.Value {
	if v == nil {
		return a.NewBytes(nil)
	}

	return a.NewCopyBytes(v.Bytes())
}

// encodeSignature generates a signature value based on the R, S and V value
func encodeSignature(r, s *uint256.Int, v byte, isHomestead bool) ([]byte, error) {
	if !ValidateSignatureValues(v, r, s, isHomestead) {
		return nil, fmt.Errorf("invalid txn signature")
	}

	sig := make([]byte, ECDSASignatureLength)
	r.WriteToSlice(sig[:32])
	s.WriteToSlice(sig[32:64])
	sig[64] = v

	return sig, nil
}

// recoverAddress recovers the sender address from a signing hash and signature parameters
func recoverAddress(txHash types.Hash, r, s *uint256.Int, v byte, isHomestead bool) (types.Address, error) {
	sig, err := encodeSignature(r, s, v, isHomestead)
	if err != nil {
		return types.ZeroAddress, err
	}

	pub, err := Ecrecover(txHash.Bytes(), sig)
	if err != nil {
		return types.ZeroAddress, err
	}

	if len(pub) == 0 || pub[0] != 4 {
		return types.ZeroAddress, errors.New("invalid public key")
	}

	return types.BytesToAddress(Keccak256(pub[1:])[12:]), nil
}
