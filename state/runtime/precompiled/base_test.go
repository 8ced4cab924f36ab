//nolint: lll
package precompiled

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/helper/keccak"
)

type precompiledTest struct {
	Name     string
	Input    string
	Expected string
	Gas      uint64
}

func testPrecompiled(t *testing.T, p Contract, cases []precompiledTest) {
	t.Helper()

	config := chain.AllForksEnabled.At(0)

	for _, c := range cases {
		c := c

		t.Run(c.Name, func(t *testing.T) {
			t.Parallel()

			h, err := hex.DecodeHex(c.Input)
			require.NoError(t, err)

			found, err := p.Run(h)

			assert.NoError(t, err)
			assert.Equal(t, c.Expected, hex.EncodeToString(found))

			if c.Gas != 0 {
				assert.Equal(t, c.Gas, p.Gas(h, &config))
			}
		})
	}
}

const sigInput = "38d18acb67d25c8bb9942764b62f18e17054f66a817bd4295423adf9ed98873e000000000000000000000000000000000000000000000000000000000000001b38d18acb67d25c8bb9942764b62f18e17054f66a817bd4295423adf9ed98873e789d1dd423d25f0772d2748d60f7e4b81bb14d086eba8e8e8efb6dcff8a4ae02"

func TestECRecover(t *testing.T) {
	t.Parallel()

	testPrecompiled(t, &ecrecover{}, []precompiledTest{
		{
			Name:     "valid",
			Input:    sigInput,
			Expected: "000000000000000000000000ceaccac640adf55b2028469bd36ba501f28b699d",
			Gas:      3000,
		},
		{
			Name:     "invalid v",
			Input:    sigInput[:126] + "1d" + sigInput[128:],
			Expected: "",
		},
		{
			Name:     "empty input",
			Input:    "",
			Expected: "",
		},
	})
}

func TestECRecoverPublicKey(t *testing.T) {
	t.Parallel()

	e := &ecrecoverPublicKey{}

	out, err := e.Run(hex.MustDecodeHex(sigInput))
	require.NoError(t, err)
	require.Len(t, out, 64)

	// the address is the tail of the key hash
	addr, err := (&ecrecover{}).Run(hex.MustDecodeHex(sigInput))
	require.NoError(t, err)

	assert.Equal(t, addr[12:], keccakTail(out))

	_, err = e.Run(nil)
	assert.ErrorIs(t, err, errInvalidSignature)
}

func TestSha256(t *testing.T) {
	t.Parallel()

	testPrecompiled(t, &sha256h{}, []precompiledTest{
		{
			Name:     "128",
			Input:    sigInput,
			Expected: "811c7003375852fabd0d362e40e68607a12bdabae61a7d068fe5fdd1dbbf2a5d",
			Gas:      108,
		},
		{
			Name:     "empty",
			Input:    "",
			Expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			Gas:      60,
		},
	})
}

func TestRipeMD(t *testing.T) {
	t.Parallel()

	testPrecompiled(t, &ripemd160h{}, []precompiledTest{
		{
			Name:     "128",
			Input:    sigInput,
			Expected: "0000000000000000000000009215b8d9882ff46f0dfde6684d78e831467f65e6",
			Gas:      1080,
		},
		{
			Name:     "empty",
			Input:    "",
			Expected: "0000000000000000000000009c1185a5c5e9fc54612808977ee8f548b2258d31",
			Gas:      600,
		},
	})
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	testPrecompiled(t, &identity{}, []precompiledTest{
		{
			Name:     "copy",
			Input:    "0102",
			Expected: "0102",
			Gas:      18,
		},
		{
			Name:     "empty",
			Input:    "",
			Expected: "",
			Gas:      15,
		},
	})
}

func TestSha3Fips(t *testing.T) {
	t.Parallel()

	testPrecompiled(t, &sha3fips{}, []precompiledTest{
		{
			Name:     "empty",
			Input:    "",
			Expected: "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a",
			Gas:      60,
		},
	})
}

func TestModExp(t *testing.T) {
	t.Parallel()

	testPrecompiled(t, &modExp{}, []precompiledTest{
		{
			Name: "eip198 example",
			Input: "0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000020" +
				"0000000000000000000000000000000000000000000000000000000000000020" +
				"03" +
				"fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2e" +
				"fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f",
			Expected: "0000000000000000000000000000000000000000000000000000000000000001",
			Gas:      13056,
		},
		{
			Name: "small",
			Input: "0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000001" +
				"030507",
			Expected: "05",
		},
		{
			Name: "zero modulus",
			Input: "0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000001" +
				"030500",
			Expected: "00",
		},
	})
}

func TestBn256(t *testing.T) {
	t.Parallel()

	const (
		generator = "0000000000000000000000000000000000000000000000000000000000000001" +
			"0000000000000000000000000000000000000000000000000000000000000002"
		double = "030644e72e131a029b85045b68181585d97816a916871ca8d3c208c16d87cfd3" +
			"15ed738c0e0a7c92e7845f96b2ae9c0a68a6a449e3538fc7ff3ebf7a5a18a2c4"
	)

	testPrecompiled(t, &bn256Add{}, []precompiledTest{
		{
			Name:     "double generator",
			Input:    generator + generator,
			Expected: double,
			Gas:      150,
		},
		{
			Name:     "infinity",
			Input:    "",
			Expected: generatorZero(),
		},
	})

	testPrecompiled(t, &bn256Mul{}, []precompiledTest{
		{
			Name:     "scalar two",
			Input:    generator + "0000000000000000000000000000000000000000000000000000000000000002",
			Expected: double,
			Gas:      6000,
		},
	})

	testPrecompiled(t, &bn256Pairing{}, []precompiledTest{
		{
			Name:     "empty",
			Input:    "",
			Expected: "0000000000000000000000000000000000000000000000000000000000000001",
			Gas:      45000,
		},
	})

	_, err := (&bn256Pairing{}).Run(make([]byte, 10))
	assert.ErrorIs(t, err, errBadPairingInput)

	// not on curve
	_, err = (&bn256Add{}).Run(hex.MustDecodeHex(generator[:126] + "03"))
	assert.Error(t, err)
}

func generatorZero() string {
	return hex.EncodeToString(make([]byte, 64))
}

func TestBn256GasBeforeIstanbul(t *testing.T) {
	t.Parallel()

	byzantium := &chain.ForksInTime{Byzantium: true}

	assert.Equal(t, uint64(500), (&bn256Add{}).Gas(nil, byzantium))
	assert.Equal(t, uint64(40000), (&bn256Mul{}).Gas(nil, byzantium))
	assert.Equal(t, uint64(100000+2*80000), (&bn256Pairing{}).Gas(make([]byte, 384), byzantium))
}

func keccakTail(pub []byte) []byte {
	return keccak.Keccak256(nil, pub)[12:]
}
