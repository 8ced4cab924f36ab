package helper

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/types"
)

// ParseAddress parses a 0x prefixed 20 byte address
func ParseAddress(raw string) (types.Address, error) {
	buf, err := hex.DecodeHex(raw)
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("invalid address %q: %w", raw, err)
	}

	if len(buf) != types.AddressLength {
		return types.ZeroAddress, fmt.Errorf("invalid address %q: expected %d bytes", raw, types.AddressLength)
	}

	return types.BytesToAddress(buf), nil
}

// ParseAccountID parses a 0x prefixed 32 byte native account id
func ParseAccountID(raw string) (types.AccountID, error) {
	var id types.AccountID

	if err := id.UnmarshalText([]byte(raw)); err != nil {
		return types.ZeroAccountID, fmt.Errorf("invalid account id %q: %w", raw, err)
	}

	return id, nil
}

// ParseAmount parses a decimal or 0x prefixed hex amount
func ParseAmount(raw string) (*uint256.Int, error) {
	amount, err := hex.DecodeUint256(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
	}

	return amount, nil
}

// ParseHash parses a 0x prefixed 32 byte word
func ParseHash(raw string) (types.Hash, error) {
	buf, err := hex.DecodeHex(raw)
	if err != nil {
		return types.ZeroHash, fmt.Errorf("invalid hash %q: %w", raw, err)
	}

	if len(buf) > types.HashLength {
		return types.ZeroHash, fmt.Errorf("invalid hash %q: longer than %d bytes", raw, types.HashLength)
	}

	return types.BytesToHash(buf), nil
}

// ParseBytes parses hex data, empty is no data
func ParseBytes(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}

	buf, err := hex.DecodeHex(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}

	return buf, nil
}
