package pallet

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/state"
)

var (
	ErrBalanceLow      = errors.New("not enough balance to perform action")
	ErrFeeOverflow     = errors.New("calculating total fee overflowed")
	ErrPaymentOverflow = errors.New("calculating total payment overflowed")
	ErrWithdrawFailed  = errors.New("withdraw fee failed")
	ErrGasPriceTooLow  = errors.New("gas price is too low")
	ErrInvalidNonce    = errors.New("nonce is invalid")
	ErrBadOrigin       = errors.New("bad origin")

	ErrClaimUnsupported = errors.New("address mapping does not support claims")
	ErrAddressClaimed   = errors.New("address already claimed")
	ErrAddressInUse     = errors.New("address holds balance, nonce or code")
)

// dispatchError translates an executor rejection into the error of the
// dispatchable, keeping the original cause in the chain
func dispatchError(err error) error {
	var kind error

	switch {
	case errors.Is(err, state.ErrNonceTooLow), errors.Is(err, state.ErrNonceTooHigh),
		errors.Is(err, state.ErrNonceUintOverflow):
		kind = ErrInvalidNonce
	case errors.Is(err, state.ErrNotEnoughFundsForGas), errors.Is(err, state.ErrNotEnoughFunds):
		kind = ErrBalanceLow
	case errors.Is(err, state.ErrFeeOverflow):
		kind = ErrFeeOverflow
	case errors.Is(err, state.ErrGasPriceTooLow):
		kind = ErrGasPriceTooLow
	default:
		return err
	}

	return fmt.Errorf("%w: %w", kind, err)
}

// transferError translates a ledger failure of a balance move
func transferError(err error, fallback error) error {
	if errors.Is(err, host.ErrInsufficientBalance) {
		return fmt.Errorf("%w: %w", ErrBalanceLow, err)
	}

	return fmt.Errorf("%w: %w", fallback, err)
}
