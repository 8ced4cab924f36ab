package state

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/state/runtime"
)

// RefundQuotient caps the refund at gasUsed / RefundQuotient (EIP-150 to Istanbul)
const RefundQuotient = 2

// FeeConverter turns an amount of gas into a fee in the host currency.
// It must be pure.
type FeeConverter func(gas uint64, price *uint256.Int) (*uint256.Int, error)

// LinearFee charges gas * price
func LinearFee(gas uint64, price *uint256.Int) (*uint256.Int, error) {
	fee, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(gas), price)
	if overflow {
		return nil, ErrFeeOverflow
	}

	return fee, nil
}

// GasMeter tracks the gas of a transaction. The refund counter accrues
// without bound and is only capped by Finalize.
type GasMeter struct {
	limit     uint64
	remaining uint64
	refund    uint64
}

func NewGasMeter(limit uint64) *GasMeter {
	return &GasMeter{
		limit:     limit,
		remaining: limit,
	}
}

// Charge deducts amount, or fails without deducting anything
func (g *GasMeter) Charge(amount uint64) error {
	if g.remaining < amount {
		return runtime.ErrOutOfGas
	}

	g.remaining -= amount

	return nil
}

// Return credits gas left over by a frame
func (g *GasMeter) Return(amount uint64) {
	g.remaining += amount

	if g.remaining > g.limit {
		g.remaining = g.limit
	}
}

func (g *GasMeter) Limit() uint64 {
	return g.limit
}

func (g *GasMeter) Remaining() uint64 {
	return g.remaining
}

func (g *GasMeter) Used() uint64 {
	return g.limit - g.remaining
}

func (g *GasMeter) RecordRefund(amount uint64) {
	g.refund += amount
}

// SubRefund removes a previously recorded refund. The counter never goes below zero.
func (g *GasMeter) SubRefund(amount uint64) {
	if amount > g.refund {
		g.refund = 0

		return
	}

	g.refund -= amount
}

func (g *GasMeter) Refund() uint64 {
	return g.refund
}

// Finalize applies the capped refund and returns the gas to bill
func (g *GasMeter) Finalize() uint64 {
	billed := finalize(g.limit, g.Used(), g.refund)
	g.remaining = g.limit - billed

	return billed
}

// finalize computes the gas billed for a transaction: the refund is capped
// at gasUsed / RefundQuotient and the result never exceeds gasLimit
func finalize(gasLimit, gasUsed, refund uint64) uint64 {
	if max := gasUsed / RefundQuotient; refund > max {
		refund = max
	}

	billed := gasUsed - refund
	if billed > gasLimit {
		billed = gasLimit
	}

	return billed
}

// restoreRefund rolls the refund counter back to a frame's entry value
func (g *GasMeter) restoreRefund(refund uint64) {
	g.refund = refund
}
