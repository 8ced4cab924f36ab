package evm

import "fmt"

// OpCode is the EVM operation code
type OpCode byte

const (
	// STOP halts execution of the contract
	STOP OpCode = 0x0

	// ADD performs (u)int256 addition modulo 2**256
	ADD OpCode = 0x01

	// MUL performs (u)int256 multiplication modulo 2**256
	MUL OpCode = 0x02

	// SUB performs (u)int256 subtraction modulo 2**256
	SUB OpCode = 0x03

	// DIV performs uint256 division
	DIV OpCode = 0x04

	// SDIV performs int256 division
	SDIV OpCode = 0x05

	// MOD performs uint256 modulus
	MOD OpCode = 0x06

	// SMOD performs int256 modulus
	SMOD OpCode = 0x07

	// ADDMOD performs (u)int256 addition modulo N
	ADDMOD OpCode = 0x08

	// MULMOD performs (u)int256 multiplication modulo N
	MULMOD OpCode = 0x09

	// EXP performs uint256 exponentiation modulo 2**256
	EXP OpCode = 0x0A

	// SIGNEXTEND performs sign extends x from (b + 1) * 8 bits to 256 bits.
	SIGNEXTEND OpCode = 0x0B

	// LT performs int256 comparison
	LT OpCode = 0x10

	// GT performs int256 comparison
	GT OpCode = 0x11

	// SLT performs int256 comparison
	SLT OpCode = 0x12

	// SGT performs int256 comparison
	SGT OpCode = 0x13

	// EQ performs (u)int256 equality
	EQ OpCode = 0x14

	// ISZERO checks if (u)int256 is zero
	ISZERO OpCode = 0x15

	// AND performs 256-bit bitwise and
	AND OpCode = 0x16

	// OR performs 256-bit bitwise or
	OR OpCode = 0x17

	// XOR performs 256-bit bitwise xor
	XOR OpCode = 0x18

	// NOT performs 256-bit bitwise not
	NOT OpCode = 0x19

	// BYTE returns the ith byte of (u)int256 x counting from most significant byte
	BYTE OpCode = 0x1A

	// SHL performs a shift left
	SHL OpCode = 0x1B

	// SHR performs a logical shift right
	SHR OpCode = 0x1C

	// SAR performs an arithmetic shift right
	SAR OpCode = 0x1D

	// SHA3 performs the keccak256 hash function
	SHA3 OpCode = 0x20

	// ADDRESS returns the address of the executing contract
	ADDRESS OpCode = 0x30

	// BALANCE returns the address balance in wei
	BALANCE OpCode = 0x31

	// ORIGIN returns the transaction origin address
	ORIGIN OpCode = 0x32

	// CALLER returns the message caller address
	CALLER OpCode = 0x33

	// CALLVALUE returns the message funds in wei
	CALLVALUE OpCode = 0x34

	// CALLDATALOAD reads a (u)int256 from message data
	CALLDATALOAD OpCode = 0x35

	// CALLDATASIZE returns the message data length in bytes
	CALLDATASIZE OpCode = 0x36

	// CALLDATACOPY copies the message data
	CALLDATACOPY OpCode = 0x37

	// CODESIZE returns the length of the executing contract's code in bytes
	CODESIZE OpCode = 0x38

	// CODECOPY copies the executing contract bytecode
	CODECOPY OpCode = 0x39

	// GASPRICE returns the gas price of the transaction
	GASPRICE OpCode = 0x3A

	// EXTCODESIZE returns the size of the specified contract
	EXTCODESIZE OpCode = 0x3B

	// EXTCODECOPY copies the contract bytecode
	EXTCODECOPY OpCode = 0x3C

	// RETURNDATASIZE returns the size of the return data buffer
	RETURNDATASIZE OpCode = 0x3D

	// RETURNDATACOPY copies the return data
	RETURNDATACOPY OpCode = 0x3E

	// EXTCODEHASH returns the hash of the specified contract bytecode
	EXTCODEHASH OpCode = 0x3F

	// BLOCKHASH returns the hash of the specific block. Only valid for the last 256 most recent blocks
	BLOCKHASH OpCode = 0x40

	// COINBASE returns the address of the block beneficiary
	COINBASE OpCode = 0x41

	// TIMESTAMP returns the time of the block
	TIMESTAMP OpCode = 0x42

	// NUMBER returns the block number
	NUMBER OpCode = 0x43

	// DIFFICULTY returns the difficulty of the block
	DIFFICULTY OpCode = 0x44

	// GASLIMIT returns the gas limit of the block
	GASLIMIT OpCode = 0x45

	// CHAINID returns the id of the chain
	CHAINID OpCode = 0x46

	// SELFBALANCE returns the balance of the executing contract
	SELFBALANCE OpCode = 0x47

	// POP pops a (u)int256 off the stack and discards it
	POP OpCode = 0x50

	// MLOAD reads a (u)int256 from memory
	MLOAD OpCode = 0x51

	// MSTORE writes a (u)int256 to memory
	MSTORE OpCode = 0x52

	// MSTORE8 writes a uint8 to memory
	MSTORE8 OpCode = 0x53

	// SLOAD reads a (u)int256 from storage
	SLOAD OpCode = 0x54

	// SSTORE writes a (u)int256 to storage
	SSTORE OpCode = 0x55

	// JUMP performs an unconditional jump
	JUMP OpCode = 0x56

	// JUMPI performs a conditional jump if condition is truthy
	JUMPI OpCode = 0x57

	// PC returns the program counter
	PC OpCode = 0x58

	// MSIZE returns the size of memory for this contract execution, in bytes
	MSIZE OpCode = 0x59

	// GAS returns the remaining gas
	GAS OpCode = 0x5A

	// JUMPDEST corresponds to a possible jump destination
	JUMPDEST OpCode = 0x5B

	// PUSH1 pushes a 1-byte value onto the stack
	PUSH1 OpCode = 0x60

	// PUSH32 pushes a 32-byte value onto the stack
	PUSH32 OpCode = 0x7F

	// DUP1 clones the last value on the stack
	DUP1 OpCode = 0x80

	// DUP16 clones the 16th last value on the stack
	DUP16 OpCode = 0x8F

	// SWAP1 swaps the last two values on the stack
	SWAP1 OpCode = 0x90

	// SWAP16 swaps the top of the stack with the 17th last element
	SWAP16 OpCode = 0x9F

	// LOG0 fires an event without topics
	LOG0 OpCode = 0xA0

	// LOG1 fires an event with one topic
	LOG1 OpCode = 0xA1

	// LOG2 fires an event with two topics
	LOG2 OpCode = 0xA2

	// LOG3 fires an event with three topics
	LOG3 OpCode = 0xA3

	// LOG4 fires an event with four topics
	LOG4 OpCode = 0xA4

	// CREATE creates a child contract
	CREATE OpCode = 0xF0

	// CALL calls a method in another contract
	CALL OpCode = 0xF1

	// CALLCODE calls a method in another contract
	CALLCODE OpCode = 0xF2

	// RETURN returns from this contract call
	RETURN OpCode = 0xF3

	// DELEGATECALL calls a method in another contract using the storage of the current contract
	DELEGATECALL OpCode = 0xF4

	// CREATE2 creates a child contract with a salt
	CREATE2 OpCode = 0xF5

	// STATICCALL calls a method in another contract without state changes
	STATICCALL OpCode = 0xFA

	// REVERT stops execution and reverts state changes, without consuming all provided gas
	REVERT OpCode = 0xFD

	// INVALID is the designated invalid opcode
	INVALID OpCode = 0xFE

	// SELFDESTRUCT halts execution and registers account for later deletion
	SELFDESTRUCT OpCode = 0xFF
)

var opCodeToString = map[OpCode]string{
	STOP:           "STOP",
	ADD:            "ADD",
	MUL:            "MUL",
	SUB:            "SUB",
	DIV:            "DIV",
	SDIV:           "SDIV",
	MOD:            "MOD",
	SMOD:           "SMOD",
	ADDMOD:         "ADDMOD",
	MULMOD:         "MULMOD",
	EXP:            "EXP",
	SIGNEXTEND:     "SIGNEXTEND",
	LT:             "LT",
	GT:             "GT",
	SLT:            "SLT",
	SGT:            "SGT",
	EQ:             "EQ",
	ISZERO:         "ISZERO",
	AND:            "AND",
	OR:             "OR",
	XOR:            "XOR",
	NOT:            "NOT",
	BYTE:           "BYTE",
	SHL:            "SHL",
	SHR:            "SHR",
	SAR:            "SAR",
	SHA3:           "SHA3",
	ADDRESS:        "ADDRESS",
	BALANCE:        "BALANCE",
	ORIGIN:         "ORIGIN",
	CALLER:         "CALLER",
	CALLVALUE:      "CALLVALUE",
	CALLDATALOAD:   "CALLDATALOAD",
	CALLDATASIZE:   "CALLDATASIZE",
	CALLDATACOPY:   "CALLDATACOPY",
	CODESIZE:       "CODESIZE",
	CODECOPY:       "CODECOPY",
	GASPRICE:       "GASPRICE",
	EXTCODESIZE:    "EXTCODESIZE",
	EXTCODECOPY:    "EXTCODECOPY",
	RETURNDATASIZE: "RETURNDATASIZE",
	RETURNDATACOPY: "RETURNDATACOPY",
	EXTCODEHASH:    "EXTCODEHASH",
	BLOCKHASH:      "BLOCKHASH",
	COINBASE:       "COINBASE",
	TIMESTAMP:      "TIMESTAMP",
	NUMBER:         "NUMBER",
	DIFFICULTY:     "DIFFICULTY",
	GASLIMIT:       "GASLIMIT",
	CHAINID:        "CHAINID",
	SELFBALANCE:    "SELFBALANCE",
	POP:            "POP",
	MLOAD:          "MLOAD",
	MSTORE:         "MSTORE",
	MSTORE8:        "MSTORE8",
	SLOAD:          "SLOAD",
	SSTORE:         "SSTORE",
	JUMP:           "JUMP",
	JUMPI:          "JUMPI",
	PC:             "PC",
	MSIZE:          "MSIZE",
	GAS:            "GAS",
	JUMPDEST:       "JUMPDEST",
	LOG0:           "LOG0",
	LOG1:           "LOG1",
	LOG2:           "LOG2",
	LOG3:           "LOG3",
	LOG4:           "LOG4",
	CREATE:         "CREATE",
	CALL:           "CALL",
	CALLCODE:       "CALLCODE",
	RETURN:         "RETURN",
	DELEGATECALL:   "DELEGATECALL",
	CREATE2:        "CREATE2",
	STATICCALL:     "STATICCALL",
	REVERT:         "REVERT",
	INVALID:        "INVALID",
	SELFDESTRUCT:   "SELFDESTRUCT",
}

// String implements the stringer interface
func (op OpCode) String() string {
	if str, ok := opCodeToString[op]; ok {
		return str
	}

	switch {
	case op >= PUSH1 && op <= PUSH32:
		return fmt.Sprintf("PUSH%d", op-PUSH1+1)
	case op >= DUP1 && op <= DUP16:
		return fmt.Sprintf("DUP%d", op-DUP1+1)
	case op >= SWAP1 && op <= SWAP16:
		return fmt.Sprintf("SWAP%d", op-SWAP1+1)
	}

	return fmt.Sprintf("UNKNOWN(0x%x)", byte(op))
}
