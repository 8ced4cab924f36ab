package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/types"
)

func TestForksInTime(t *testing.T) {
	t.Parallel()

	f := Forks{
		Homestead: NewFork(0),
		Byzantium: NewFork(10),
		Istanbul:  NewFork(20),
	}

	ff := f.At(15)
	assert.True(t, ff.Homestead)
	assert.True(t, ff.Byzantium)
	assert.False(t, ff.Istanbul)

	ff = f.At(20)
	assert.True(t, ff.Istanbul)
	assert.False(t, ff.EIP155)
}

func TestForksValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, AllForksEnabled.Validate())

	f := Forks{"london": NewFork(0), "cancun": NewFork(0)}
	assert.ErrorContains(t, f.Validate(), "[cancun london]")
}

func TestGasTableSelection(t *testing.T) {
	t.Parallel()

	istanbul := AllForksEnabled.At(0)
	assert.Equal(t, uint64(800), istanbul.GasTable().SLoad)
	assert.Equal(t, uint64(16), istanbul.TxDataNonZeroGas())

	frontier := ForksInTime{}
	assert.Equal(t, uint64(50), frontier.GasTable().SLoad)
	assert.Equal(t, uint64(68), frontier.TxDataNonZeroGas())

	constantinople := ForksInTime{EIP150: true, EIP158: true, Constantinople: true}
	assert.Equal(t, uint64(400), constantinople.GasTable().ExtcodeHash)
}

func TestImportFromJSON(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"name": "test",
		"params": {"chainID": 42},
		"genesis": {
			"gasLimit": 1000000,
			"alloc": {
				"0x0000000000000000000000000000000000000001": {
					"balance": "0x64",
					"nonce": 1,
					"code": "0x6000",
					"storage": {
						"0x0000000000000000000000000000000000000000000000000000000000000001": "0x0000000000000000000000000000000000000000000000000000000000000002"
					}
				}
			}
		}
	}`)

	c, err := ImportFromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), c.Params.ChainID)
	assert.True(t, c.Params.Forks.IsIstanbul(0))

	acct := c.Genesis.Alloc[types.StringToAddress("0x1")]
	require.NotNil(t, acct)
	assert.Equal(t, uint64(100), acct.Balance.Uint64())
	assert.Equal(t, uint64(1), acct.Nonce)
	assert.Equal(t, []byte{0x60, 0x00}, []byte(acct.Code))
	assert.Equal(t, types.StringToHash("0x2"), acct.Storage[types.StringToHash("0x1")])
}

func TestImportFromJSONRejectsUnknownFork(t *testing.T) {
	t.Parallel()

	_, err := ImportFromJSON([]byte(`{"params": {"forks": {"london": 0}}}`))
	assert.Error(t, err)

	_, err = ImportFromJSON([]byte(`{"name": "x"}`))
	assert.Error(t, err)
}
