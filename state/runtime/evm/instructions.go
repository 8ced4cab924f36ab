package evm

import (
	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/crypto"
	"github.com/0xPolygon/evm-bridge/helper/common"
	"github.com/0xPolygon/evm-bridge/helper/keccak"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/types"
)

var (
	wordSize = uint256.NewInt(32)
	one      = uint256.NewInt(1)
)

func opAdd(c *state) {
	a := c.pop()
	b := c.top()

	b.Add(a, b)
}

func opMul(c *state) {
	a := c.pop()
	b := c.top()

	b.Mul(a, b)
}

func opSub(c *state) {
	a := c.pop()
	b := c.top()

	b.Sub(a, b)
}

func opDiv(c *state) {
	a := c.pop()
	b := c.top()

	b.Div(a, b)
}

func opSDiv(c *state) {
	a := c.pop()
	b := c.top()

	b.SDiv(a, b)
}

func opMod(c *state) {
	a := c.pop()
	b := c.top()

	b.Mod(a, b)
}

func opSMod(c *state) {
	a := c.pop()
	b := c.top()

	b.SMod(a, b)
}

func opExp(c *state) {
	x := c.pop()
	y := c.top()

	gas := uint64(y.ByteLen()) * c.gasTable().ExpByte
	if !c.consumeGas(gas) {
		return
	}

	y.Exp(x, y)
}

func opAddMod(c *state) {
	a := c.pop()
	b := c.pop()
	z := c.top()

	z.AddMod(a, b, z)
}

func opMulMod(c *state) {
	a := c.pop()
	b := c.pop()
	z := c.top()

	z.MulMod(a, b, z)
}

func opAnd(c *state) {
	a := c.pop()
	b := c.top()

	b.And(a, b)
}

func opOr(c *state) {
	a := c.pop()
	b := c.top()

	b.Or(a, b)
}

func opXor(c *state) {
	a := c.pop()
	b := c.top()

	b.Xor(a, b)
}

func opByte(c *state) {
	x := c.pop()
	y := c.top()

	y.Byte(x)
}

func opNot(c *state) {
	a := c.top()

	a.Not(a)
}

func setBool(v *uint256.Int, b bool) {
	if b {
		v.SetOne()
	} else {
		v.Clear()
	}
}

func opIsZero(c *state) {
	a := c.top()

	setBool(a, a.IsZero())
}

func opEq(c *state) {
	a := c.pop()
	b := c.top()

	setBool(b, a.Eq(b))
}

func opLt(c *state) {
	a := c.pop()
	b := c.top()

	setBool(b, a.Lt(b))
}

func opGt(c *state) {
	a := c.pop()
	b := c.top()

	setBool(b, a.Gt(b))
}

func opSlt(c *state) {
	a := c.pop()
	b := c.top()

	setBool(b, a.Slt(b))
}

func opSgt(c *state) {
	a := c.pop()
	b := c.top()

	setBool(b, a.Sgt(b))
}

func opSignExtension(c *state) {
	ext := c.pop()
	x := c.top()

	x.ExtendSign(x, ext)
}

func opShl(c *state) {
	shift := c.pop()
	value := c.top()

	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
}

func opShr(c *state) {
	shift := c.pop()
	value := c.top()

	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
}

func opSar(c *state) {
	shift := c.pop()
	value := c.top()

	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}

		return
	}

	value.SRsh(value, uint(shift.Uint64()))
}

// memory operations

func opMload(c *state) {
	offset := c.top()

	if !c.checkMemory(offset, wordSize) {
		return
	}

	o := offset.Uint64()
	offset.SetBytes32(c.memory[o : o+32])
}

func opMStore(c *state) {
	offset := c.pop()
	val := c.pop()

	if !c.checkMemory(offset, wordSize) {
		return
	}

	o := offset.Uint64()
	val.WriteToSlice(c.memory[o : o+32])
}

func opMStore8(c *state) {
	offset := c.pop()
	val := c.pop()

	if !c.checkMemory(offset, one) {
		return
	}

	c.memory[offset.Uint64()] = byte(val.Uint64() & 0xff)
}

// --- storage ---

func opSload(c *state) {
	if !c.consumeGas(c.gasTable().SLoad) {
		return
	}

	loc := c.top()
	val := c.host.GetStorage(c.msg.Address, loc.Bytes32())
	loc.SetBytes32(val[:])
}

func opSStore(c *state) {
	if c.inStaticCall() {
		c.exit(errWriteProtection)

		return
	}

	if c.config.Istanbul && c.gas <= SstoreSentryGasEIP2200 {
		c.exit(errOutOfGas)

		return
	}

	key := c.popHash()
	val := c.popHash()

	legacyGasMetering := !c.config.Istanbul && (c.config.Petersburg || !c.config.Constantinople)

	status := c.host.SetStorage(c.msg.Address, key, val, c.config)
	cost := uint64(0)

	switch status {
	case runtime.StorageUnchanged, runtime.StorageModifiedAgain:
		switch {
		case c.config.Istanbul:
			cost = c.gasTable().SLoad
		case legacyGasMetering:
			cost = SstoreResetGas
		default:
			cost = NetSstoreNoopGas
		}

	case runtime.StorageModified, runtime.StorageDeleted:
		cost = SstoreResetGas

	case runtime.StorageAdded:
		cost = SstoreSetGas
	}

	c.consumeGas(cost)
}

func opSha3(c *state) {
	offset := c.pop()
	length := c.pop()

	var ok bool
	if c.tmp, ok = c.get2(c.tmp[:0], offset, length); !ok {
		return
	}

	if !c.consumeGas(toWordSize(length.Uint64()) * Sha3WordGas) {
		return
	}

	hash := keccak.Keccak256(nil, c.tmp)

	c.push1().SetBytes32(hash)
}

func opPop(c *state) {
	c.sp--
}

// context operations

func opAddress(c *state) {
	c.push1().SetBytes20(c.msg.Address.Bytes())
}

func opBalance(c *state) {
	if !c.consumeGas(c.gasTable().Balance) {
		return
	}

	addr := c.popAddr()
	c.push1().Set(c.host.GetBalance(addr))
}

func opSelfBalance(c *state) {
	c.push1().Set(c.host.GetBalance(c.msg.Address))
}

func opChainID(c *state) {
	c.push1().SetUint64(uint64(c.host.GetTxContext().ChainID))
}

func opOrigin(c *state) {
	c.push1().SetBytes20(c.msg.Origin.Bytes())
}

func opCaller(c *state) {
	c.push1().SetBytes20(c.msg.Caller.Bytes())
}

func opCallValue(c *state) {
	c.push1().Set(c.msg.Value)
}

func opCallDataLoad(c *state) {
	offset := c.top()

	if !offset.IsUint64() {
		offset.Clear()

		return
	}

	offset.SetBytes32(common.RightPadSlice(c.msg.Input, offset.Uint64(), 32))
}

func opCallDataSize(c *state) {
	c.push1().SetUint64(uint64(len(c.msg.Input)))
}

func opCodeSize(c *state) {
	c.push1().SetUint64(uint64(len(c.code)))
}

func opExtCodeSize(c *state) {
	if !c.consumeGas(c.gasTable().ExtcodeSize) {
		return
	}

	addr := c.popAddr()
	c.push1().SetUint64(uint64(c.host.GetCodeSize(addr)))
}

func opGasPrice(c *state) {
	price := c.host.GetTxContext().GasPrice
	c.push1().SetBytes32(price[:])
}

func opReturnDataSize(c *state) {
	c.push1().SetUint64(uint64(len(c.returnData)))
}

func opExtCodeHash(c *state) {
	if !c.consumeGas(c.gasTable().ExtcodeHash) {
		return
	}

	addr := c.popAddr()
	v := c.push1()

	if c.host.Empty(addr) {
		v.Clear()
	} else {
		hash := c.host.GetCodeHash(addr)
		v.SetBytes32(hash[:])
	}
}

func opPC(c *state) {
	c.push1().SetUint64(uint64(c.ip))
}

func opMSize(c *state) {
	c.push1().SetUint64(uint64(len(c.memory)))
}

func opGas(c *state) {
	c.push1().SetUint64(c.gas)
}

// copyToMemory charges the memory and copy costs and writes data[dataOffset:dataOffset+length]
// zero padded at memOffset
func (c *state) copyToMemory(data []byte, memOffset, dataOffset, length *uint256.Int) {
	if !c.checkMemory(memOffset, length) {
		return
	}

	size := length.Uint64()
	if !c.consumeGas(toWordSize(size) * CopyGas) {
		return
	}

	if size == 0 {
		return
	}

	from, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		from = maxUint64
	}

	o := memOffset.Uint64()
	copy(c.memory[o:o+size], common.RightPadSlice(data, from, size))
}

func opExtCodeCopy(c *state) {
	if !c.consumeGas(c.gasTable().ExtcodeCopy) {
		return
	}

	addr := c.popAddr()
	memOffset := c.pop()
	codeOffset := c.pop()
	length := c.pop()

	c.copyToMemory(c.host.GetCode(addr), memOffset, codeOffset, length)
}

func opCallDataCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	c.copyToMemory(c.msg.Input, memOffset, dataOffset, length)
}

func opReturnDataCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	end, overflow := new(uint256.Int).AddOverflow(dataOffset, length)
	if overflow || !end.IsUint64() || end.Uint64() > uint64(len(c.returnData)) {
		c.exit(errReturnDataOutOfBounds)

		return
	}

	c.copyToMemory(c.returnData, memOffset, dataOffset, length)
}

func opCodeCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	c.copyToMemory(c.code, memOffset, dataOffset, length)
}

// block information

func opBlockHash(c *state) {
	num := c.top()

	if !num.IsUint64() {
		num.Clear()

		return
	}

	n := int64(num.Uint64())
	lastBlock := c.host.GetTxContext().Number

	if n >= 0 && n < lastBlock && lastBlock-n <= 256 {
		hash := c.host.GetBlockHash(n)
		num.SetBytes32(hash[:])
	} else {
		num.Clear()
	}
}

func opCoinbase(c *state) {
	c.push1().SetBytes20(c.host.GetTxContext().Coinbase.Bytes())
}

func opTimestamp(c *state) {
	c.push1().SetUint64(uint64(c.host.GetTxContext().Timestamp))
}

func opNumber(c *state) {
	c.push1().SetUint64(uint64(c.host.GetTxContext().Number))
}

func opDifficulty(c *state) {
	difficulty := c.host.GetTxContext().Difficulty
	c.push1().SetBytes32(difficulty[:])
}

func opGasLimit(c *state) {
	c.push1().SetUint64(uint64(c.host.GetTxContext().GasLimit))
}

func opSelfDestruct(c *state) {
	if c.inStaticCall() {
		c.exit(errWriteProtection)

		return
	}

	address := c.popAddr()

	gas := c.gasTable().Suicide

	if c.config.EIP150 {
		if c.config.EIP158 {
			// new account charged only when value moves
			if c.host.Empty(address) && c.host.GetBalance(c.msg.Address).Sign() != 0 {
				gas += c.gasTable().CreateBySuicide
			}
		} else if !c.host.AccountExists(address) {
			gas += c.gasTable().CreateBySuicide
		}
	}

	if !c.consumeGas(gas) {
		return
	}

	c.host.Selfdestruct(c.msg.Address, address)
	c.halt()
}

func opJump(c *state) {
	dest := c.pop()

	if !c.validJumpdest(dest) {
		c.exit(errInvalidJump)

		return
	}

	c.ip = int(dest.Uint64()) - 1
}

func opJumpi(c *state) {
	dest := c.pop()
	cond := c.pop()

	if cond.IsZero() {
		return
	}

	if !c.validJumpdest(dest) {
		c.exit(errInvalidJump)

		return
	}

	c.ip = int(dest.Uint64()) - 1
}

func opJumpDest(c *state) {
}

func opPush(n int) instruction {
	size := uint64(n)

	return func(c *state) {
		ip := uint64(c.ip)
		codeLen := uint64(len(c.code))

		v := c.push1()
		if ip+1+size > codeLen {
			v.SetBytes(common.RightPadSlice(c.code, ip+1, size))
		} else {
			v.SetBytes(c.code[ip+1 : ip+1+size])
		}

		c.ip += n
	}
}

func opDup(n int) instruction {
	return func(c *state) {
		c.push(c.peekAt(n))
	}
}

func opSwap(n int) instruction {
	return func(c *state) {
		c.swap(n)
	}
}

func opLog(size int) instruction {
	return func(c *state) {
		if c.inStaticCall() {
			c.exit(errWriteProtection)

			return
		}

		mStart := c.pop()
		mSize := c.pop()

		topics := make([]types.Hash, size)
		for i := 0; i < size; i++ {
			topics[i] = c.popHash()
		}

		var ok bool

		c.tmp, ok = c.get2(c.tmp[:0], mStart, mSize)
		if !ok {
			return
		}

		if !c.consumeGas(uint64(size)*LogTopicGas + mSize.Uint64()*LogDataGas) {
			return
		}

		data := make([]byte, len(c.tmp))
		copy(data, c.tmp)

		c.host.EmitLog(c.msg.Address, topics, data)
	}
}

func opStop(c *state) {
	c.halt()
}

func opCreate(op OpCode) instruction {
	return func(c *state) {
		if c.inStaticCall() {
			c.exit(errWriteProtection)

			return
		}

		c.resetReturnData()

		contract, err := c.buildCreateContract(op)
		if err != nil {
			c.push1().Clear()

			if contract != nil {
				c.gas += contract.Gas
			}

			return
		}

		if contract == nil {
			return
		}

		result := c.host.Callx(contract, c.host)

		v := c.push1()
		if result.Failed() {
			v.Clear()
		} else {
			v.SetBytes20(contract.Address.Bytes())
		}

		c.gas += result.GasLeft

		if result.Reverted() {
			c.returnData = append(c.returnData[:0], result.ReturnValue...)
		}
	}
}

func (c *state) buildCreateContract(op OpCode) (*runtime.Contract, error) {
	value := c.pop().Clone()
	offset := c.pop()
	length := c.pop()

	var salt types.Hash
	if op == CREATE2 {
		salt = c.popHash()
	}

	input, ok := c.get2(nil, offset, length)
	if !ok {
		return nil, nil
	}

	if op == CREATE2 {
		// the address derivation hashes the init code
		if !c.consumeGas(toWordSize(length.Uint64()) * Sha3WordGas) {
			return nil, nil
		}
	}

	if !value.IsZero() && c.host.GetBalance(c.msg.Address).Lt(value) {
		return nil, runtime.ErrInsufficientBalance
	}

	gas := c.gas
	if c.config.EIP150 {
		gas -= gas / 64
	}

	if !c.consumeGas(gas) {
		return nil, nil
	}

	var address types.Address
	if op == CREATE {
		address = crypto.CreateAddress(c.msg.Address, c.host.GetNonce(c.msg.Address))
	} else {
		address = crypto.CreateAddress2(c.msg.Address, salt, input)
	}

	contract := runtime.NewContractCreation(
		c.msg.Depth+1,
		c.msg.Origin,
		c.msg.Address,
		address,
		value,
		gas,
		input,
	)

	if op == CREATE2 {
		contract.Type = runtime.Create2
		contract.Salt = salt
	}

	return contract, nil
}

func opCall(op OpCode) instruction {
	return func(c *state) {
		c.resetReturnData()

		if op == CALL && c.inStaticCall() {
			if val := c.peekAt(3); !val.IsZero() {
				c.exit(errWriteProtection)

				return
			}
		}

		contract, offset, size, err := c.buildCallContract(op)
		if err != nil {
			c.push1().Clear()

			if contract != nil {
				c.gas += contract.Gas
			}

			return
		}

		if contract == nil {
			return
		}

		result := c.host.Callx(contract, c.host)

		v := c.push1()
		if result.Succeeded() {
			v.SetOne()
		} else {
			v.Clear()
		}

		if result.Succeeded() || result.Reverted() {
			if len(result.ReturnValue) != 0 && size != 0 {
				copy(c.memory[offset:offset+size], result.ReturnValue)
			}
		}

		c.gas += result.GasLeft
		c.returnData = append(c.returnData[:0], result.ReturnValue...)
	}
}

func (c *state) buildCallContract(op OpCode) (*runtime.Contract, uint64, uint64, error) {
	initialGas := c.pop().Clone()
	addr := c.popAddr()

	value := new(uint256.Int)
	if op == CALL || op == CALLCODE {
		value.Set(c.pop())
	}

	inOffset := c.pop()
	inSize := c.pop()

	retOffset := c.pop()
	retSize := c.pop()

	args, ok := c.get2(nil, inOffset, inSize)
	if !ok {
		return nil, 0, 0, nil
	}

	if !c.checkMemory(retOffset, retSize) {
		return nil, 0, 0, nil
	}

	gasCost := c.gasTable().Calls
	transfersValue := (op == CALL || op == CALLCODE) && !value.IsZero()

	if op == CALL {
		if c.config.EIP158 {
			if transfersValue && c.host.Empty(addr) {
				gasCost += CallNewAccountGas
			}
		} else if !c.host.AccountExists(addr) {
			gasCost += CallNewAccountGas
		}
	}

	if transfersValue {
		gasCost += CallValueTransferGas
	}

	if !c.consumeGas(gasCost) {
		return nil, 0, 0, nil
	}

	gas, ok := c.callGas(initialGas)
	if !ok {
		return nil, 0, 0, nil
	}

	if !c.consumeGas(gas) {
		return nil, 0, 0, nil
	}

	if transfersValue {
		gas += CallStipend
	}

	parent := c.msg

	contract := runtime.NewContractCall(
		parent.Depth+1,
		parent.Origin,
		parent.Address,
		addr,
		value,
		gas,
		c.host.GetCode(addr),
		args,
	)

	switch op {
	case CALL:
		contract.Type = runtime.Call
	case CALLCODE:
		contract.Type = runtime.CallCode
		contract.Address = parent.Address
	case DELEGATECALL:
		contract.Type = runtime.DelegateCall
		contract.Address = parent.Address
		contract.Value = parent.Value
		contract.Caller = parent.Caller
	case STATICCALL:
		contract.Type = runtime.StaticCall
	}

	if op == STATICCALL || parent.Static {
		contract.Static = true
	}

	if transfersValue && c.host.GetBalance(parent.Address).Lt(value) {
		return contract, 0, 0, runtime.ErrInsufficientBalance
	}

	return contract, retOffset.Uint64(), retSize.Uint64(), nil
}

// callGas returns the gas forwarded to a child frame. After EIP150 at most
// all but one 64th of the remaining gas is forwarded.
func (c *state) callGas(requested *uint256.Int) (uint64, bool) {
	if c.config.EIP150 {
		available := c.gas - c.gas/64

		if !requested.IsUint64() || available < requested.Uint64() {
			return available, true
		}

		return requested.Uint64(), true
	}

	if !requested.IsUint64() {
		c.exit(errGasUintOverflow)

		return 0, false
	}

	return requested.Uint64(), true
}

func opHalt(op OpCode) instruction {
	return func(c *state) {
		offset := c.pop()
		size := c.pop()

		var ok bool

		c.ret, ok = c.get2(c.ret[:0], offset, size)
		if !ok {
			return
		}

		if op == REVERT {
			c.exit(errRevert)
		} else {
			c.halt()
		}
	}
}
