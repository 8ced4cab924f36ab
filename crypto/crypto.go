package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btc_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/holiman/uint256"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/helper/keccak"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	secp256k1N     = uint256.MustFromHex("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	secp256k1NHalf = new(uint256.Int).Rsh(secp256k1N, 1)
	one            = uint256.NewInt(1)

	errHashOfInvalidLength = errors.New("message hash of invalid length")
	errInvalidSignature    = errors.New("invalid signature")
	errInvalidPrivateKey   = errors.New("invalid private key")
)

const (
	// ECDSASignatureLength indicates the byte length required to carry a signature with recovery id.
	// (64 bytes ECDSA signature + 1 byte recovery id)
	ECDSASignatureLength = 64 + 1

	// recoveryID is ECDSA signature recovery id
	recoveryID = byte(27)

	// recoveryIDOffset points to the byte offset within the signature that contains the recovery id.
	recoveryIDOffset = 64
)

// ValidateSignatureValues checks if the signature values are correct
func ValidateSignatureValues(v byte, r, s *uint256.Int, isHomestead bool) bool {
	// r & s must not be nil
	if r == nil || s == nil {
		return false
	}

	// r & s must be positive integer
	if r.Lt(one) || s.Lt(one) {
		return false
	}

	// v must be 0 or 1
	if v > 1 {
		return false
	}

	// From Homestead, s must be less or equal than secp256k1n/2
	if isHomestead {
		return r.Lt(secp256k1N) && !s.Gt(secp256k1NHalf)
	}

	// In Frontier, r and s must be less than secp256k1n
	return r.Lt(secp256k1N) && s.Lt(secp256k1N)
}

var addressPool fastrlp.ArenaPool

// CreateAddress creates an Ethereum address.
func CreateAddress(addr types.Address, nonce uint64) types.Address {
	a := addressPool.Get()
	defer addressPool.Put(a)

	v := a.NewArray()
	v.Set(a.NewBytes(addr.Bytes()))
	v.Set(a.NewUint(nonce))

	return types.BytesToAddress(keccak.Keccak256Rlp(nil, v)[12:])
}

var create2Prefix = []byte{0xff}

// CreateAddress2 creates an Ethereum address following the CREATE2 Opcode.
func CreateAddress2(addr types.Address, salt [32]byte, inithash []byte) types.Address {
	return types.BytesToAddress(Keccak256(create2Prefix, addr.Bytes(), salt[:], Keccak256(inithash))[12:])
}

// GenerateECDSAKey generates a new key based on the secp256k1 elliptic curve.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(btcec.S256(), rand.Reader)
}

// ParseECDSAPrivateKey parses a 32 byte secp256k1 scalar
func ParseECDSAPrivateKey(buf []byte) (*ecdsa.PrivateKey, error) {
	if len(buf) != 32 {
		return nil, fmt.Errorf("invalid key length (%dB), should be 32B", len(buf))
	}

	prv, _ := btcec.PrivKeyFromBytes(buf)
	if prv.Key.IsZero() {
		return nil, errInvalidPrivateKey
	}

	return prv.ToECDSA(), nil
}

// BytesToECDSAPrivateKey reads a hex encoded private key
func BytesToECDSAPrivateKey(input []byte) (*ecdsa.PrivateKey, error) {
	decoded, err := hex.DecodeHex(string(input))
	if err != nil {
		return nil, err
	}

	return ParseECDSAPrivateKey(decoded)
}

// MarshalPublicKey marshals a public key on the secp256k1 elliptic curve.
func MarshalPublicKey(pub *ecdsa.PublicKey) []byte {
	return elliptic.Marshal(btcec.S256(), pub.X, pub.Y) //nolint:staticcheck
}

// Ecrecover returns the uncompressed public key that produced sig over hash
func Ecrecover(hash, sig []byte) ([]byte, error) {
	pub, err := RecoverPubKey(sig, hash)
	if err != nil {
		return nil, err
	}

	return MarshalPublicKey(pub), nil
}

// RecoverPubKey verifies the compact signature "signature" of "hash" for the secp256k1 curve.
func RecoverPubKey(signature, hash []byte) (*ecdsa.PublicKey, error) {
	if len(hash) != types.HashLength {
		return nil, errHashOfInvalidLength
	}

	signatureSize := len(signature)
	if signatureSize != ECDSASignatureLength {
		return nil, errInvalidSignature
	}

	// Convert to btcec input format with 'recovery id' v at the beginning.
	btcsig := make([]byte, signatureSize)
	btcsig[0] = signature[signatureSize-1] + recoveryID
	copy(btcsig[1:], signature)

	pub, _, err := btc_ecdsa.RecoverCompact(btcsig, hash)
	if err != nil {
		return nil, err
	}

	return pub.ToECDSA(), nil
}

// Sign produces an ECDSA signature of the data in hash with the given
// private key on the secp256k1 curve.
// The produced signature is in the [R || S || V] format where V is 0 or 1.
func Sign(priv *ecdsa.PrivateKey, hash []byte) ([]byte, error) {
	if len(hash) != types.HashLength {
		return nil, fmt.Errorf("hash is required to be exactly %d bytes (%d)", types.HashLength, len(hash))
	}

	if priv.Curve != btcec.S256() {
		return nil, errors.New("private key curve is not secp256k1")
	}

	btcPrivKey, err := convertToBtcPrivKey(priv)
	if err != nil {
		return nil, err
	}

	defer btcPrivKey.Zero()

	sig, err := btc_ecdsa.SignCompact(btcPrivKey, hash, false)
	if err != nil {
		return nil, err
	}

	// Convert to Ethereum signature format with 'recovery id' v at the end.
	v := sig[0] - recoveryID
	copy(sig, sig[1:])
	sig[recoveryIDOffset] = v

	return sig, nil
}

// Keccak256 calculates the Keccak256
func Keccak256(v ...[]byte) []byte {
	h := keccak.DefaultKeccakPool.Get()
	defer keccak.DefaultKeccakPool.Put(h)

	for _, i := range v {
		_, _ = h.Write(i)
	}

	return h.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data
func Keccak256Hash(v ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(v...))
}

// PubKeyToAddress returns the Ethereum address of a public key
func PubKeyToAddress(pub *ecdsa.PublicKey) types.Address {
	return types.BytesToAddress(Keccak256(MarshalPublicKey(pub)[1:])[12:])
}

// convertToBtcPrivKey converts provided ECDSA private key to btc private key format
// used by btcec library
func convertToBtcPrivKey(priv *ecdsa.PrivateKey) (*btcec.PrivateKey, error) {
	var btcPriv btcec.PrivateKey

	overflow := btcPriv.Key.SetByteSlice(priv.D.Bytes())
	if overflow || btcPriv.Key.IsZero() {
		return nil, errInvalidPrivateKey
	}

	return &btcPriv, nil
}
