package ledger

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/storage/memory"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	id1 = types.StringToAccountID("1")
	id2 = types.StringToAccountID("2")
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	kv := memory.NewMemoryStorage(hclog.NewNullLogger())
	t.Cleanup(func() {
		_ = kv.Close()
	})

	return NewLedger(kv, hclog.NewNullLogger())
}

func TestLedgerDepositWithdraw(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)

	balance, err := l.Balance(id1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	require.NoError(t, l.Deposit(id1, uint256.NewInt(100)))
	require.NoError(t, l.Withdraw(id1, uint256.NewInt(30)))

	balance, err = l.Balance(id1)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), balance.Uint64())

	err = l.Withdraw(id1, uint256.NewInt(71))
	assert.ErrorIs(t, err, host.ErrInsufficientBalance)
}

func TestLedgerTransfer(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	require.NoError(t, l.Deposit(id1, uint256.NewInt(10)))

	require.NoError(t, l.Transfer(id1, id2, uint256.NewInt(4)))

	b1, _ := l.Balance(id1)
	b2, _ := l.Balance(id2)
	assert.Equal(t, uint64(6), b1.Uint64())
	assert.Equal(t, uint64(4), b2.Uint64())

	assert.ErrorIs(t, l.Transfer(id1, id2, uint256.NewInt(7)), host.ErrInsufficientBalance)

	// self transfer only checks the balance
	require.NoError(t, l.Transfer(id1, id1, uint256.NewInt(6)))
	assert.ErrorIs(t, l.Transfer(id1, id1, uint256.NewInt(7)), host.ErrInsufficientBalance)

	b1, _ = l.Balance(id1)
	assert.Equal(t, uint64(6), b1.Uint64())
}

func TestLedgerNonce(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)

	nonce, err := l.Nonce(id1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)

	require.NoError(t, l.IncNonce(id1))
	require.NoError(t, l.IncNonce(id1))

	nonce, err = l.Nonce(id1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)

	nonce, err = l.Nonce(id2)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)
}

func TestIndex(t *testing.T) {
	t.Parallel()

	kv := memory.NewMemoryStorage(hclog.NewNullLogger())
	addr := types.StringToAddress("1")

	i := NewIndex(kv, hclog.NewNullLogger())

	_, ok := i.Lookup(addr)
	assert.False(t, ok)

	require.NoError(t, i.Register(addr, id1))
	require.NoError(t, i.Register(addr, id1))

	// neither side of a pair is ever re-pointed
	assert.ErrorIs(t, i.Register(addr, id2), host.ErrAlreadyRegistered)
	assert.ErrorIs(t, i.Register(types.StringToAddress("2"), id1), host.ErrAlreadyRegistered)

	// a fresh index reads the entries back from the store
	j := NewIndex(kv, hclog.NewNullLogger())

	id, ok := j.Lookup(addr)
	assert.True(t, ok)
	assert.Equal(t, id1, id)

	got, ok := j.Address(id1)
	assert.True(t, ok)
	assert.Equal(t, addr, got)

	assert.ErrorIs(t, j.Register(addr, id2), host.ErrAlreadyRegistered)

	_, ok = j.Address(id2)
	assert.False(t, ok)
}

func TestBlockSeal(t *testing.T) {
	t.Parallel()

	b := NewBlock(&types.Header{Number: 1, Timestamp: 10, GasLimit: 100})

	hash := b.Seal(20)
	assert.NotEqual(t, types.ZeroHash, hash)
	assert.Equal(t, hash, b.BlockHash(1))
	assert.Equal(t, types.ZeroHash, b.BlockHash(2))

	h := b.Header()
	assert.Equal(t, uint64(2), h.Number)
	assert.Equal(t, uint64(20), h.Timestamp)
	assert.Equal(t, hash, h.Hash)

	// the returned header is a copy
	h.Number = 100
	assert.Equal(t, uint64(2), b.Header().Number)
}

func TestBlockRestore(t *testing.T) {
	t.Parallel()

	b := NewBlock(&types.Header{Number: 5})
	hash := types.StringToHash("0x1234")

	b.Restore(4, hash)
	assert.Equal(t, hash, b.BlockHash(4))
	assert.Equal(t, types.ZeroHash, b.BlockHash(3))
}
