package chain

const (
	// TxGas per transaction not creating a contract
	TxGas uint64 = 21000
	// TxGasContractCreation per transaction that creates a contract
	TxGasContractCreation uint64 = 53000
	// TxDataZeroGas per byte of data attached to a transaction that equals zero
	TxDataZeroGas uint64 = 4
	// TxDataNonZeroGasFrontier per non zero byte of data before Istanbul
	TxDataNonZeroGasFrontier uint64 = 68
	// TxDataNonZeroGasEIP2028 per non zero byte of data from Istanbul
	TxDataNonZeroGasEIP2028 uint64 = 16
)

// GasTable stores the gas cost for the variable opcodes
type GasTable struct {
	ExtcodeSize     uint64
	ExtcodeCopy     uint64
	ExtcodeHash     uint64
	Balance         uint64
	SLoad           uint64
	Calls           uint64
	Suicide         uint64
	ExpByte         uint64
	CreateBySuicide uint64
}

// GasTableHomestead contain the gas prices for the homestead phase.
var GasTableHomestead = GasTable{
	ExtcodeSize: 20,
	ExtcodeCopy: 20,
	Balance:     20,
	SLoad:       50,
	Calls:       40,
	Suicide:     0,
	ExpByte:     10,
}

// GasTableEIP150 contain the gas prices for the EIP150 phase.
var GasTableEIP150 = GasTable{
	ExtcodeSize:     700,
	ExtcodeCopy:     700,
	Balance:         400,
	SLoad:           200,
	Calls:           700,
	Suicide:         5000,
	ExpByte:         10,
	CreateBySuicide: 25000,
}

// GasTableEIP158 contain the gas prices for the EIP158 phase.
var GasTableEIP158 = GasTable{
	ExtcodeSize:     700,
	ExtcodeCopy:     700,
	Balance:         400,
	SLoad:           200,
	Calls:           700,
	Suicide:         5000,
	ExpByte:         50,
	CreateBySuicide: 25000,
}

// GasTableConstantinople contain the gas prices for the constantinople phase.
var GasTableConstantinople = GasTable{
	ExtcodeSize:     700,
	ExtcodeCopy:     700,
	ExtcodeHash:     400,
	Balance:         400,
	SLoad:           200,
	Calls:           700,
	Suicide:         5000,
	ExpByte:         50,
	CreateBySuicide: 25000,
}

// GasTableIstanbul contain the gas prices for the istanbul phase (EIP-1884).
var GasTableIstanbul = GasTable{
	ExtcodeSize:     700,
	ExtcodeCopy:     700,
	ExtcodeHash:     700,
	Balance:         700,
	SLoad:           800,
	Calls:           700,
	Suicide:         5000,
	ExpByte:         50,
	CreateBySuicide: 25000,
}

// GasTable returns the gas table for the active rule set
func (f ForksInTime) GasTable() GasTable {
	switch {
	case f.Istanbul:
		return GasTableIstanbul
	case f.Constantinople:
		return GasTableConstantinople
	case f.EIP158:
		return GasTableEIP158
	case f.EIP150:
		return GasTableEIP150
	default:
		return GasTableHomestead
	}
}

// TxDataNonZeroGas returns the cost of a non zero calldata byte
func (f ForksInTime) TxDataNonZeroGas() uint64 {
	if f.Istanbul {
		return TxDataNonZeroGasEIP2028
	}

	return TxDataNonZeroGasFrontier
}
