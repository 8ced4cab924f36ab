package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/command/helper"
	"github.com/0xPolygon/evm-bridge/types"
)

func TestParsePremineInfo(t *testing.T) {
	t.Parallel()

	defaultAmount, err := helper.ParseAmount("0xD3C21BCECCEDA1000000")
	require.NoError(t, err)

	cases := []struct {
		name    string
		raw     string
		address types.Address
		amount  uint64
		err     bool
	}{
		{
			name:    "address and hex amount",
			raw:     "0x00000000000000000000000000000000000000aa:0x64",
			address: types.StringToAddress("0xaa"),
			amount:  100,
		},
		{
			name:    "address and decimal amount",
			raw:     "0x00000000000000000000000000000000000000bb:250",
			address: types.StringToAddress("0xbb"),
			amount:  250,
		},
		{
			name: "short address",
			raw:  "0xaa:1",
			err:  true,
		},
		{
			name: "bad amount",
			raw:  "0x00000000000000000000000000000000000000aa:lots",
			err:  true,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			info, err := parsePremineInfo(c.raw)
			if c.err {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, c.address, info.address)
			assert.Equal(t, c.amount, info.amount.Uint64())
		})
	}

	info, err := parsePremineInfo("0x00000000000000000000000000000000000000cc")
	require.NoError(t, err)
	assert.Equal(t, defaultAmount, info.amount)
}

func TestGenesisParams(t *testing.T) {
	t.Parallel()

	p := defaultParams()
	p.chainID = 7
	p.premine = []string{
		"0x00000000000000000000000000000000000000aa:10",
		"0x00000000000000000000000000000000000000aa:5",
	}
	p.coinbase = "0x00000000000000000000000000000000000000c0"

	require.NoError(t, p.validateFlags())

	path := filepath.Join(t.TempDir(), "nested", "genesis.json")

	generated, written, err := p.loadOrGenerate(path)
	require.NoError(t, err)
	assert.True(t, written)

	account := generated.Genesis.Alloc[types.StringToAddress("0xaa")]
	require.NotNil(t, account)
	assert.Equal(t, uint64(15), account.Balance.Uint64())
	assert.Equal(t, types.StringToAddress("0xc0"), generated.Genesis.Coinbase)

	imported, err := chain.Import(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), imported.Params.ChainID)

	// an existing chain file wins over the flags
	p.chainID = 8
	again, written, err := p.loadOrGenerate(path)
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, uint64(7), again.Params.ChainID)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestGenesisParams_Invalid(t *testing.T) {
	t.Parallel()

	p := defaultParams()
	p.gasLimit = 0
	assert.ErrorIs(t, p.validateFlags(), errInvalidGasLimit)

	p = defaultParams()
	p.chainID = 0
	assert.ErrorIs(t, p.validateFlags(), errInvalidChainID)

	p = defaultParams()
	p.coinbase = "0x12"
	assert.Error(t, p.validateFlags())
}
