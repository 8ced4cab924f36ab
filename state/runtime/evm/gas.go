package evm

// Sha3 gas prices
const (
	// Sha3Gas once per SHA3 operation.
	Sha3Gas uint64 = 30
	// Sha3WordGas once per word of the SHA3 operation's data
	Sha3WordGas uint64 = 6
)

// SStore gas prices
const (
	// SstoreSetGas once per SSTORE operation from clean zero to non-zero.
	SstoreSetGas uint64 = 20000
	// SstoreResetGas once per SSTORE operation from clean non-zero.
	SstoreResetGas uint64 = 5000
	// SstoreSentryGasEIP2200 is the minimum gas left required to run SSTORE.
	SstoreSentryGasEIP2200 uint64 = 2300
	// NetSstoreNoopGas once per SSTORE operation if the value doesn't change.
	NetSstoreNoopGas uint64 = 200
)

// Fixed gas costs
const (
	GasQuickStep    uint64 = 2
	GasFastestStep  uint64 = 3
	GasFastStep     uint64 = 5
	GasMidStep      uint64 = 8
	GasSlowStep     uint64 = 10
	GasExtStep      uint64 = 20
	GasReturn       uint64 = 0
	GasStop         uint64 = 0
	GasContractByte uint64 = 200
	GasJumpDest     uint64 = 1
	GasBlockHash    uint64 = 20
	GasCreate       uint64 = 32000
	GasSelfBalance  uint64 = 5
	GasExp          uint64 = 10

	MemoryGas    uint64 = 3
	QuadCoeffDiv uint64 = 512
	CopyGas      uint64 = 3

	LogGas      uint64 = 375
	LogTopicGas uint64 = 375
	LogDataGas  uint64 = 8

	CallStipend          uint64 = 2300
	CallValueTransferGas uint64 = 9000
	CallNewAccountGas    uint64 = 25000

	// SelfdestructRefundGas is credited once per destroyed account
	SelfdestructRefundGas uint64 = 24000
)

// MaxCodeSize is the largest contract code that can be deployed (EIP-170)
const MaxCodeSize = 24576

// toWordSize returns the ceiled word size required for memory expansion.
func toWordSize(size uint64) uint64 {
	if size > maxUint64-31 {
		return maxUint64/32 + 1
	}

	return (size + 31) / 32
}

const maxUint64 = ^uint64(0)
