package types

import (
	"fmt"
	"strings"

	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/helper/keccak"
)

const (
	HashLength      = 32
	AddressLength   = 20
	AccountIDLength = 32
)

var (
	ZeroAddress   = Address{}
	ZeroHash      = Hash{}
	ZeroAccountID = AccountID{}

	// EmptyCodeHash is the keccak256 hash of empty code
	EmptyCodeHash = BytesToHash(keccak.Keccak256(nil, nil))
)

// Hash is a 32 byte word, used for storage keys and values, topics and hashes
type Hash [HashLength]byte

// Address is a 20 byte EVM address
type Address [AddressLength]byte

// AccountID is the 32 byte identifier of an account in the host chain
type AccountID [AccountIDLength]byte

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}

func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	if len(buf) > HashLength {
		return fmt.Errorf("hash too long: %d bytes", len(buf))
	}

	*h = BytesToHash(buf)

	return nil
}

func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) Ptr() *Address {
	return &a
}

// String returns the EIP-55 checksummed representation of the address
func (a Address) String() string {
	return a.checksumEncode()
}

func (a Address) checksumEncode() string {
	addrHex := hex.EncodeToString(a[:])
	hash := hex.EncodeToString(keccak.Keccak256(nil, []byte(addrHex)))

	result := make([]byte, len(addrHex))

	for i := 0; i < len(addrHex); i++ {
		c := addrHex[i]
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			c -= 'a' - 'A'
		}

		result[i] = c
	}

	return "0x" + string(result)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	if len(buf) != AddressLength {
		return fmt.Errorf("incorrect address length: %d bytes", len(buf))
	}

	*a = BytesToAddress(buf)

	return nil
}

func BytesToAccountID(b []byte) AccountID {
	var id AccountID

	size := len(b)
	min := min(size, AccountIDLength)

	copy(id[AccountIDLength-min:], b[len(b)-min:])

	return id
}

func (id AccountID) Bytes() []byte {
	return id[:]
}

func (id AccountID) String() string {
	return hex.EncodeToHex(id[:])
}

func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses an account id in hex syntax.
func (id *AccountID) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	if len(buf) != AccountIDLength {
		return fmt.Errorf("incorrect account id length: %d bytes", len(buf))
	}

	copy(id[:], buf)

	return nil
}

func StringToHash(str string) Hash {
	return BytesToHash(stringToBytes(str))
}

func StringToAddress(str string) Address {
	return BytesToAddress(stringToBytes(str))
}

func StringToAccountID(str string) AccountID {
	return BytesToAccountID(stringToBytes(str))
}

func stringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeHex(str)

	return b
}

// HexBytes is a byte slice that is marshalled as a 0x prefixed hex string
type HexBytes []byte

func (h HexBytes) String() string {
	return hex.EncodeToHex(h)
}

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HexBytes) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	*h = buf

	return nil
}
