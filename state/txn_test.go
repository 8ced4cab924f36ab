package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/types"
)

var (
	addr1 = types.StringToAddress("1")
	addr2 = types.StringToAddress("2")

	hash1 = types.StringToHash("1")
	hash2 = types.StringToHash("2")
)

// mockSnapshot is a read snapshot backed by maps
type mockSnapshot struct {
	accounts map[types.Address]*Account
	storage  map[types.Address]map[types.Hash]types.Hash
	code     map[types.Address][]byte
}

func newMockSnapshot() *mockSnapshot {
	return &mockSnapshot{
		accounts: map[types.Address]*Account{},
		storage:  map[types.Address]map[types.Hash]types.Hash{},
		code:     map[types.Address][]byte{},
	}
}

func (m *mockSnapshot) GetAccount(addr types.Address) *Account {
	return m.accounts[addr]
}

func (m *mockSnapshot) GetStorage(addr types.Address, key types.Hash) types.Hash {
	return m.storage[addr][key]
}

func (m *mockSnapshot) GetCode(addr types.Address) []byte {
	return m.code[addr]
}

func TestTxn_Snapshot(t *testing.T) {
	t.Parallel()

	txn := newTxn(newMockSnapshot())

	txn.SetState(addr1, hash1, hash1)

	ss := txn.Snapshot()
	txn.SetState(addr1, hash1, hash2)
	assert.Equal(t, hash2, txn.GetState(addr1, hash1))

	require.NoError(t, txn.RevertToSnapshot(ss))
	assert.Equal(t, hash1, txn.GetState(addr1, hash1))

	assert.Error(t, txn.RevertToSnapshot(ss+1))
}

func TestTxn_StorageReads(t *testing.T) {
	t.Parallel()

	snap := newMockSnapshot()
	snap.accounts[addr1] = &Account{Balance: uint256.NewInt(1), CodeHash: types.EmptyCodeHash}
	snap.storage[addr1] = map[types.Hash]types.Hash{hash1: hash2}

	txn := newTxn(snap)

	// unset slots read as zero
	assert.Equal(t, types.ZeroHash, txn.GetState(addr1, hash2))
	assert.Equal(t, types.ZeroHash, txn.GetState(addr2, hash1))

	// the committed value is kept while the current one moves
	txn.SetState(addr1, hash1, types.ZeroHash)
	assert.Equal(t, types.ZeroHash, txn.GetState(addr1, hash1))
	assert.Equal(t, hash2, txn.GetCommittedState(addr1, hash1))
}

func TestTxn_Balance(t *testing.T) {
	t.Parallel()

	txn := newTxn(newMockSnapshot())

	txn.AddBalance(addr1, uint256.NewInt(10))
	require.NoError(t, txn.SubBalance(addr1, uint256.NewInt(4)))
	assert.Equal(t, uint64(6), txn.GetBalance(addr1).Uint64())

	assert.Error(t, txn.SubBalance(addr1, uint256.NewInt(7)))
	assert.Equal(t, uint64(6), txn.GetBalance(addr1).Uint64())

	// zero debits never touch the account
	require.NoError(t, txn.SubBalance(addr2, new(uint256.Int)))
	assert.False(t, txn.Exist(addr2))
}

func TestTxn_Logs(t *testing.T) {
	t.Parallel()

	txn := newTxn(newMockSnapshot())

	txn.EmitLog(addr1, []types.Hash{hash1}, []byte{1})

	ss := txn.Snapshot()
	txn.EmitLog(addr2, nil, []byte{2})
	require.NoError(t, txn.RevertToSnapshot(ss))

	txn.EmitLog(addr1, nil, []byte{3})

	logs := txn.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, []byte{1}, []byte(logs[0].Data))
	assert.Equal(t, []byte{3}, []byte(logs[1].Data))

	assert.Nil(t, txn.Logs())
}

func TestTxn_Nonce(t *testing.T) {
	t.Parallel()

	snap := newMockSnapshot()
	snap.accounts[addr1] = &Account{Nonce: ^uint64(0), Balance: new(uint256.Int)}

	txn := newTxn(snap)

	require.NoError(t, txn.IncrNonce(addr2))
	assert.Equal(t, uint64(1), txn.GetNonce(addr2))

	assert.ErrorIs(t, txn.IncrNonce(addr1), ErrNonceUintOverflow)
}

func TestTxn_Code(t *testing.T) {
	t.Parallel()

	snap := newMockSnapshot()
	code := []byte{0x60, 0x01}
	snap.code[addr1] = code
	snap.accounts[addr1] = &Account{
		Balance:  new(uint256.Int),
		CodeHash: types.BytesToHash([]byte{1}),
	}

	txn := newTxn(snap)
	assert.Equal(t, code, txn.GetCode(addr1))
	assert.Equal(t, 2, txn.GetCodeSize(addr1))

	txn.SetCode(addr2, []byte{0x00})
	assert.Equal(t, []byte{0x00}, txn.GetCode(addr2))
	assert.NotEqual(t, types.EmptyCodeHash, txn.GetCodeHash(addr2))
	assert.Equal(t, types.ZeroHash, txn.GetCodeHash(types.StringToAddress("3")))
}

func TestTxn_CreateAccountKeepsBalance(t *testing.T) {
	t.Parallel()

	txn := newTxn(newMockSnapshot())

	txn.AddBalance(addr1, uint256.NewInt(5))
	txn.SetNonce(addr1, 3)
	txn.CreateAccount(addr1)

	assert.Equal(t, uint64(5), txn.GetBalance(addr1).Uint64())
	assert.Equal(t, uint64(0), txn.GetNonce(addr1))
}

func TestTxn_Commit(t *testing.T) {
	t.Parallel()

	snap := newMockSnapshot()
	snap.accounts[addr2] = &Account{Balance: uint256.NewInt(9), CodeHash: types.EmptyCodeHash}

	txn := newTxn(snap)

	txn.SetState(addr1, hash1, hash2)
	txn.SetState(addr1, hash2, types.ZeroHash)
	txn.SetNonce(addr1, 1)

	assert.True(t, txn.Suicide(addr2))
	assert.True(t, txn.HasSuicided(addr2))
	assert.False(t, txn.Suicide(addr2))

	// touched and empty
	txn.TouchAccount(types.StringToAddress("3"))

	objs, err := txn.Commit(true)
	require.NoError(t, err)
	require.Len(t, objs, 3)

	byAddr := map[types.Address]*Object{}
	for _, obj := range objs {
		byAddr[obj.Address] = obj
	}

	obj := byAddr[addr1]
	require.NotNil(t, obj)
	assert.False(t, obj.Deleted)
	assert.Equal(t, uint64(1), obj.Nonce)
	require.Len(t, obj.Storage, 2)

	for _, entry := range obj.Storage {
		if types.BytesToHash(entry.Key) == hash2 {
			assert.True(t, entry.Deleted)
		} else {
			assert.Equal(t, hash2.Bytes(), entry.Val)
		}
	}

	assert.True(t, byAddr[addr2].Deleted)
	assert.True(t, byAddr[types.StringToAddress("3")].Deleted)
}
