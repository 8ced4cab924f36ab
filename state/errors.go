package state

import (
	"errors"
	"fmt"
)

// errors that can originate in the consensus rules checks of the apply method.
// surfacing of these errors reject the transaction thus not touching the state

var (
	ErrNonceTooLow           = errors.New("nonce too low")
	ErrNonceTooHigh          = errors.New("nonce too high")
	ErrNonceUintOverflow     = errors.New("nonce uint64 overflow")
	ErrNotEnoughFundsForGas  = errors.New("not enough funds to cover gas costs")
	ErrNotEnoughFunds        = errors.New("not enough funds for gas * price + value")
	ErrBlockLimitReached     = errors.New("gas limit reached in the pool")
	ErrIntrinsicGasOverflow  = errors.New("overflow in intrinsic gas calculation")
	ErrNotEnoughIntrinsicGas = errors.New("not enough gas supplied for intrinsic gas costs")
	ErrGasPriceTooLow        = errors.New("gas price lower than the minimum")
	ErrFeeOverflow           = errors.New("fee overflow")
	ErrMaxInitCodeSize       = errors.New("max initcode size exceeded")
	ErrMissingSender         = errors.New("transaction has no sender")
)

// ErrStateFault is the cause of every fatal error: the host storage failed
var ErrStateFault = errors.New("state fault")

// ValidationError rejects a transaction before any state was touched.
// No receipt is produced.
type ValidationError struct {
	Err error
}

func NewValidationError(err error) *ValidationError {
	return &ValidationError{Err: err}
}

func (e *ValidationError) Error() string {
	return "invalid transaction: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FatalError aborts the transaction because the host state could not be
// read or written. The pending changes are discarded.
type FatalError struct {
	Cause error
}

func NewFatalError(cause error) *FatalError {
	return &FatalError{Cause: cause}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", ErrStateFault, e.Cause)
}

func (e *FatalError) Unwrap() []error {
	return []error{ErrStateFault, e.Cause}
}

// IsValidationError reports whether err rejected a transaction
func IsValidationError(err error) bool {
	var verr *ValidationError

	return errors.As(err, &verr)
}

// IsFatalError reports whether err is a host state fault
func IsFatalError(err error) bool {
	return errors.Is(err, ErrStateFault)
}
