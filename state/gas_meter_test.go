package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/0xPolygon/evm-bridge/state/runtime"
)

func TestGasMeter_Charge(t *testing.T) {
	t.Parallel()

	g := NewGasMeter(100)

	require.NoError(t, g.Charge(60))
	assert.Equal(t, uint64(40), g.Remaining())

	// no partial deduction
	assert.ErrorIs(t, g.Charge(41), runtime.ErrOutOfGas)
	assert.Equal(t, uint64(40), g.Remaining())
	assert.Equal(t, uint64(60), g.Used())

	g.Return(30)
	assert.Equal(t, uint64(70), g.Remaining())

	// returning never credits past the limit
	g.Return(1000)
	assert.Equal(t, g.Limit(), g.Remaining())
}

func TestGasMeter_Refund(t *testing.T) {
	t.Parallel()

	g := NewGasMeter(100)

	g.RecordRefund(10)
	g.RecordRefund(5)
	assert.Equal(t, uint64(15), g.Refund())

	g.SubRefund(20)
	assert.Equal(t, uint64(0), g.Refund())
}

func TestGasMeter_Finalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		limit  uint64
		used   uint64
		refund uint64
		billed uint64
	}{
		{"no refund", 100, 60, 0, 60},
		{"small refund", 100, 60, 10, 50},
		{"capped refund", 100, 60, 100, 30},
		{"nothing used", 100, 0, 10, 0},
		{"all used", 100, 100, 0, 100},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			g := NewGasMeter(c.limit)
			require.NoError(t, g.Charge(c.used))
			g.RecordRefund(c.refund)

			assert.Equal(t, c.billed, g.Finalize())
			assert.Equal(t, c.limit-c.billed, g.Remaining())
		})
	}
}

func TestFinalize_Bounds(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.Uint64().Draw(t, "limit")
		used := rapid.Uint64Max(limit).Draw(t, "used")
		refund := rapid.Uint64().Draw(t, "refund")

		billed := finalize(limit, used, refund)

		if billed > limit || billed > used {
			t.Fatalf("billed %d over limit %d or used %d", billed, limit, used)
		}

		if billed < used-used/RefundQuotient {
			t.Fatalf("refund over the cap: billed %d, used %d", billed, used)
		}
	})
}

func TestLinearFee(t *testing.T) {
	t.Parallel()

	fee, err := LinearFee(21000, uint256.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(63000), fee.Uint64())

	_, err = LinearFee(2, new(uint256.Int).SetAllOne())
	assert.ErrorIs(t, err, ErrFeeOverflow)
}
