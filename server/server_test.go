package server

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/pallet"
	"github.com/0xPolygon/evm-bridge/types"
)

var funded = types.StringToAddress("0x1000")

func testChain() *chain.Chain {
	c := chain.DefaultChain(100)
	c.Genesis.Timestamp = 1000
	c.Genesis.Alloc = map[types.Address]*chain.GenesisAccount{
		funded: {Balance: uint256.NewInt(1_000_000)},
	}

	return c
}

func testConfig(storage, dataDir string) *Config {
	return &Config{
		Chain:          testChain(),
		DataDir:        dataDir,
		Storage:        storage,
		AddressMapping: "truncated",
		Escrow:         types.StringToAddress("0xfee0"),
	}
}

func TestServer_Genesis(t *testing.T) {
	t.Parallel()

	srv, err := NewServerWithLogger(testConfig(MemoryStorage, ""), hclog.NewNullLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, srv.Close())
	})

	assert.ErrorIs(t, srv.EnsureGenesis(), ErrGenesisNotWritten)

	require.NoError(t, srv.WriteGenesis())
	assert.ErrorIs(t, srv.WriteGenesis(), ErrGenesisWritten)
	require.NoError(t, srv.EnsureGenesis())

	basic, err := srv.Pallet().AccountBasic(funded)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), basic.Balance.Uint64())

	status, err := srv.Status()
	require.NoError(t, err)
	assert.Equal(t, &Status{ChainID: 100, Number: 1, Genesis: true}, status)
}

func TestServer_Persistence(t *testing.T) {
	t.Parallel()

	for _, storage := range []string{LevelDBStorage, BoltDBStorage} {
		storage := storage

		t.Run(storage, func(t *testing.T) {
			t.Parallel()

			config := testConfig(storage, t.TempDir())

			srv, err := NewServerWithLogger(config, hclog.NewNullLogger())
			require.NoError(t, err)

			require.NoError(t, srv.WriteGenesis())

			to := types.StringToAddress("0x2000")
			require.NoError(t, srv.Pallet().Deposit(
				pallet.SignedOrigin(srv.Mapper().ToAccountID(funded)), to, uint256.NewInt(10)))

			hash, err := srv.SealBlock()
			require.NoError(t, err)
			require.NoError(t, srv.Close())

			srv, err = NewServerWithLogger(config, hclog.NewNullLogger())
			require.NoError(t, err)

			t.Cleanup(func() {
				require.NoError(t, srv.Close())
			})

			status, err := srv.Status()
			require.NoError(t, err)
			assert.True(t, status.Genesis)
			assert.Equal(t, uint64(2), status.Number)
			assert.Equal(t, hash, status.Parent)
			assert.Equal(t, hash, srv.block.BlockHash(1))

			basic, err := srv.Pallet().AccountBasic(to)
			require.NoError(t, err)
			assert.Equal(t, uint64(10), basic.Balance.Uint64())
		})
	}
}

func TestServer_CoinbaseOverride(t *testing.T) {
	t.Parallel()

	coinbase := types.StringToAddress("0xc0")

	config := testConfig(MemoryStorage, "")
	config.Coinbase = &coinbase
	config.MinGasPrice = uint256.NewInt(5)

	srv, err := NewServerWithLogger(config, hclog.NewNullLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, srv.Close())
	})

	assert.Equal(t, coinbase, srv.Executor().Header().Coinbase)
	assert.Equal(t, uint64(5), srv.Executor().MinGasPrice.Uint64())
}

func TestServer_UnknownStorage(t *testing.T) {
	t.Parallel()

	_, err := NewServerWithLogger(testConfig("rocksdb", t.TempDir()), hclog.NewNullLogger())
	assert.ErrorContains(t, err, "unknown storage backend")
}
