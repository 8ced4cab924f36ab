package evm

import "github.com/0xPolygon/evm-bridge/chain"

type instruction func(c *state)

type handler struct {
	inst  instruction
	stack int
	gas   uint64

	// enabled gates the opcode behind a fork, nil means always available
	enabled func(*chain.ForksInTime) bool
}

var dispatchTable [256]handler

func register(op OpCode, h handler) {
	if dispatchTable[op].inst != nil {
		panic("instruction already exists") //nolint:gocritic
	}

	dispatchTable[op] = h
}

func registerRange(from, to OpCode, factory func(n int) instruction, stack func(n int) int, gas uint64) {
	c := 1
	for i := from; i <= to; i++ {
		register(i, handler{inst: factory(c), stack: stack(c), gas: gas})
		c++
	}
}

func homestead(f *chain.ForksInTime) bool      { return f.Homestead }
func byzantium(f *chain.ForksInTime) bool      { return f.Byzantium }
func constantinople(f *chain.ForksInTime) bool { return f.Constantinople }
func istanbul(f *chain.ForksInTime) bool       { return f.Istanbul }

func init() {
	// unsigned arithmetic operations
	register(STOP, handler{inst: opStop, stack: 0, gas: GasStop})
	register(ADD, handler{inst: opAdd, stack: 2, gas: GasFastestStep})
	register(SUB, handler{inst: opSub, stack: 2, gas: GasFastestStep})
	register(MUL, handler{inst: opMul, stack: 2, gas: GasFastStep})
	register(DIV, handler{inst: opDiv, stack: 2, gas: GasFastStep})
	register(SDIV, handler{inst: opSDiv, stack: 2, gas: GasFastStep})
	register(MOD, handler{inst: opMod, stack: 2, gas: GasFastStep})
	register(SMOD, handler{inst: opSMod, stack: 2, gas: GasFastStep})
	register(EXP, handler{inst: opExp, stack: 2, gas: GasExp})

	registerRange(PUSH1, PUSH32, opPush, func(int) int { return 0 }, GasFastestStep)
	registerRange(DUP1, DUP16, opDup, func(n int) int { return n }, GasFastestStep)
	registerRange(SWAP1, SWAP16, opSwap, func(n int) int { return n + 1 }, GasFastestStep)

	register(ADDMOD, handler{inst: opAddMod, stack: 3, gas: GasMidStep})
	register(MULMOD, handler{inst: opMulMod, stack: 3, gas: GasMidStep})

	register(AND, handler{inst: opAnd, stack: 2, gas: GasFastestStep})
	register(OR, handler{inst: opOr, stack: 2, gas: GasFastestStep})
	register(XOR, handler{inst: opXor, stack: 2, gas: GasFastestStep})
	register(BYTE, handler{inst: opByte, stack: 2, gas: GasFastestStep})

	register(NOT, handler{inst: opNot, stack: 1, gas: GasFastestStep})
	register(ISZERO, handler{inst: opIsZero, stack: 1, gas: GasFastestStep})

	register(EQ, handler{inst: opEq, stack: 2, gas: GasFastestStep})
	register(LT, handler{inst: opLt, stack: 2, gas: GasFastestStep})
	register(GT, handler{inst: opGt, stack: 2, gas: GasFastestStep})
	register(SLT, handler{inst: opSlt, stack: 2, gas: GasFastestStep})
	register(SGT, handler{inst: opSgt, stack: 2, gas: GasFastestStep})

	register(SIGNEXTEND, handler{inst: opSignExtension, stack: 2, gas: GasFastStep})

	register(SHL, handler{inst: opShl, stack: 2, gas: GasFastestStep, enabled: constantinople})
	register(SHR, handler{inst: opShr, stack: 2, gas: GasFastestStep, enabled: constantinople})
	register(SAR, handler{inst: opSar, stack: 2, gas: GasFastestStep, enabled: constantinople})

	register(CREATE, handler{inst: opCreate(CREATE), stack: 3, gas: GasCreate})
	register(CREATE2, handler{inst: opCreate(CREATE2), stack: 4, gas: GasCreate, enabled: constantinople})

	register(CALL, handler{inst: opCall(CALL), stack: 7, gas: 0})
	register(CALLCODE, handler{inst: opCall(CALLCODE), stack: 7, gas: 0})
	register(DELEGATECALL, handler{inst: opCall(DELEGATECALL), stack: 6, gas: 0, enabled: homestead})
	register(STATICCALL, handler{inst: opCall(STATICCALL), stack: 6, gas: 0, enabled: byzantium})

	register(REVERT, handler{inst: opHalt(REVERT), stack: 2, gas: GasReturn, enabled: byzantium})
	register(RETURN, handler{inst: opHalt(RETURN), stack: 2, gas: GasReturn})

	// memory
	register(MLOAD, handler{inst: opMload, stack: 1, gas: GasFastestStep})
	register(MSTORE, handler{inst: opMStore, stack: 2, gas: GasFastestStep})
	register(MSTORE8, handler{inst: opMStore8, stack: 2, gas: GasFastestStep})

	// store
	register(SLOAD, handler{inst: opSload, stack: 1, gas: 0})
	register(SSTORE, handler{inst: opSStore, stack: 2, gas: 0})

	// calldata
	register(CALLDATALOAD, handler{inst: opCallDataLoad, stack: 1, gas: GasFastestStep})
	register(CALLDATASIZE, handler{inst: opCallDataSize, stack: 0, gas: GasQuickStep})
	register(CODESIZE, handler{inst: opCodeSize, stack: 0, gas: GasQuickStep})
	register(EXTCODESIZE, handler{inst: opExtCodeSize, stack: 1, gas: 0})
	register(EXTCODEHASH, handler{inst: opExtCodeHash, stack: 1, gas: 0, enabled: constantinople})
	register(RETURNDATASIZE, handler{inst: opReturnDataSize, stack: 0, gas: GasQuickStep, enabled: byzantium})

	register(CALLDATACOPY, handler{inst: opCallDataCopy, stack: 3, gas: GasFastestStep})
	register(CODECOPY, handler{inst: opCodeCopy, stack: 3, gas: GasFastestStep})
	register(EXTCODECOPY, handler{inst: opExtCodeCopy, stack: 4, gas: 0})
	register(RETURNDATACOPY, handler{inst: opReturnDataCopy, stack: 3, gas: GasFastestStep, enabled: byzantium})

	// block information
	register(BLOCKHASH, handler{inst: opBlockHash, stack: 1, gas: GasBlockHash})
	register(COINBASE, handler{inst: opCoinbase, stack: 0, gas: GasQuickStep})
	register(TIMESTAMP, handler{inst: opTimestamp, stack: 0, gas: GasQuickStep})
	register(NUMBER, handler{inst: opNumber, stack: 0, gas: GasQuickStep})
	register(DIFFICULTY, handler{inst: opDifficulty, stack: 0, gas: GasQuickStep})
	register(GASLIMIT, handler{inst: opGasLimit, stack: 0, gas: GasQuickStep})
	register(CHAINID, handler{inst: opChainID, stack: 0, gas: GasQuickStep, enabled: istanbul})
	register(SELFBALANCE, handler{inst: opSelfBalance, stack: 0, gas: GasSelfBalance, enabled: istanbul})

	// execution context
	register(ADDRESS, handler{inst: opAddress, stack: 0, gas: GasQuickStep})
	register(BALANCE, handler{inst: opBalance, stack: 1, gas: 0})
	register(ORIGIN, handler{inst: opOrigin, stack: 0, gas: GasQuickStep})
	register(CALLER, handler{inst: opCaller, stack: 0, gas: GasQuickStep})
	register(CALLVALUE, handler{inst: opCallValue, stack: 0, gas: GasQuickStep})
	register(GASPRICE, handler{inst: opGasPrice, stack: 0, gas: GasQuickStep})

	register(SHA3, handler{inst: opSha3, stack: 2, gas: Sha3Gas})

	// logs
	for i := 0; i < 5; i++ {
		register(LOG0+OpCode(i), handler{inst: opLog(i), stack: i + 2, gas: LogGas})
	}

	// misc
	register(POP, handler{inst: opPop, stack: 1, gas: GasQuickStep})
	register(PC, handler{inst: opPC, stack: 0, gas: GasQuickStep})
	register(MSIZE, handler{inst: opMSize, stack: 0, gas: GasQuickStep})
	register(GAS, handler{inst: opGas, stack: 0, gas: GasQuickStep})
	register(JUMP, handler{inst: opJump, stack: 1, gas: GasMidStep})
	register(JUMPI, handler{inst: opJumpi, stack: 2, gas: GasSlowStep})
	register(JUMPDEST, handler{inst: opJumpDest, stack: 0, gas: GasJumpDest})
	register(SELFDESTRUCT, handler{inst: opSelfDestruct, stack: 1, gas: 0})
}
