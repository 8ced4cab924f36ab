package types

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRLP(t *testing.T) {
	t.Parallel()

	to := StringToAddress("0x1")

	cases := []*Transaction{
		{
			Nonce:    1,
			GasPrice: uint256.NewInt(10),
			Gas:      21000,
			To:       &to,
			Value:    uint256.NewInt(100),
			Input:    []byte{0x1, 0x2},
			V:        uint256.NewInt(27),
			R:        uint256.NewInt(1),
			S:        uint256.NewInt(2),
		},
		{
			Nonce:    0,
			GasPrice: uint256.NewInt(0),
			Gas:      53000,
			Value:    uint256.NewInt(0),
			Input:    []byte{0x60, 0x00},
			V:        uint256.NewInt(37),
			R:        uint256.NewInt(3),
			S:        uint256.NewInt(4),
		},
	}

	for _, tx := range cases {
		data := tx.MarshalRLP()

		tx2 := new(Transaction)
		require.NoError(t, tx2.UnmarshalRLP(data))

		tx.ComputeHash()
		assert.Equal(t, tx.Hash, tx2.Hash)
		assert.Equal(t, tx.Nonce, tx2.Nonce)
		assert.Equal(t, tx.To, tx2.To)
		assert.Equal(t, tx.Value, tx2.Value)
		assert.Equal(t, tx.Input, tx2.Input)
		assert.Equal(t, tx.V, tx2.V)
		assert.Equal(t, tx.IsContractCreation(), tx2.IsContractCreation())
	}
}

func TestTransactionUnmarshalWrongElements(t *testing.T) {
	t.Parallel()

	tx := new(Transaction)
	assert.Error(t, tx.UnmarshalRLP([]byte{0xc1, 0x80}))
}

func TestTransactionCost(t *testing.T) {
	t.Parallel()

	tx := &Transaction{GasPrice: uint256.NewInt(2), Gas: 10, Value: uint256.NewInt(5)}

	cost, overflow := tx.Cost()
	require.False(t, overflow)
	assert.Equal(t, uint256.NewInt(25), cost)

	tx.GasPrice = new(uint256.Int).SetAllOne()
	_, overflow = tx.Cost()
	assert.True(t, overflow)
}

func TestReceiptRLP(t *testing.T) {
	t.Parallel()

	r := &Receipt{
		Status:  ReceiptSuccess,
		GasUsed: 50000,
		Logs: []*Log{
			{
				Address: StringToAddress("0x11"),
				Topics:  []Hash{StringToHash("0x1"), StringToHash("0x2")},
				Data:    []byte{0xff},
			},
		},
	}
	r.LogsBloom = CreateBloom([]*Receipt{r})

	r2 := new(Receipt)
	require.NoError(t, r2.UnmarshalRLP(r.MarshalRLP()))

	assert.Equal(t, r.Status, r2.Status)
	assert.Equal(t, r.GasUsed, r2.GasUsed)
	assert.Equal(t, r.LogsBloom, r2.LogsBloom)
	require.Len(t, r2.Logs, 1)
	assert.Equal(t, r.Logs[0].Topics, r2.Logs[0].Topics)
	assert.Equal(t, []byte(r.Logs[0].Data), []byte(r2.Logs[0].Data))
}

func TestBloomContainsLogs(t *testing.T) {
	t.Parallel()

	log := &Log{Address: StringToAddress("0x22"), Topics: []Hash{StringToHash("0x3")}}

	var b Bloom
	b.AddLogs([]*Log{log})

	assert.True(t, b.IsLogInBloom(log))
	assert.False(t, b.IsLogInBloom(&Log{Address: StringToAddress("0x23")}))
}
