package evm

import (
	"errors"
	"strings"
	"sync"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/helper/common"
	"github.com/0xPolygon/evm-bridge/helper/hex"
	"github.com/0xPolygon/evm-bridge/state/runtime"
	"github.com/0xPolygon/evm-bridge/types"
)

var statePool = sync.Pool{
	New: func() interface{} {
		return &state{
			stack: make([]uint256.Int, stackSize+1),
		}
	},
}

func acquireState() *state {
	return statePool.Get().(*state)
}

func releaseState(s *state) {
	s.reset()
	statePool.Put(s)
}

const stackSize = 1024

var (
	errOutOfGas              = runtime.ErrOutOfGas
	errStackUnderflow        = runtime.ErrStackUnderflow
	errStackOverflow         = runtime.ErrStackOverflow
	errRevert                = runtime.ErrExecutionReverted
	errGasUintOverflow       = runtime.ErrGasUintOverflow
	errWriteProtection       = runtime.ErrWriteProtection
	errInvalidJump           = runtime.ErrInvalidJump
	errOpCodeNotFound        = runtime.ErrOpcodeNotFound
	errReturnDataOutOfBounds = runtime.ErrReturnDataOutOfBounds
)

// state is the interpreter frame of a single contract execution
type state struct {
	ip   int
	code []byte
	tmp  []byte

	host   runtime.Host
	msg    *runtime.Contract
	config *chain.ForksInTime

	// memory
	memory      []byte
	lastGasCost uint64

	// stack
	stack []uint256.Int
	sp    int

	err  error
	stop bool

	gas uint64

	bitmap bitmap

	returnData []byte
	ret        []byte
}

func (c *state) reset() {
	c.sp = 0
	c.ip = 0
	c.gas = 0
	c.lastGasCost = 0
	c.stop = false
	c.err = nil
	c.host = nil
	c.msg = nil
	c.config = nil

	c.bitmap.reset()

	for i := range c.memory {
		c.memory[i] = 0
	}

	c.tmp = c.tmp[:0]
	c.ret = c.ret[:0]
	c.code = c.code[:0]
	c.returnData = c.returnData[:0]
	c.memory = c.memory[:0]
}

func (c *state) validJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}

	udest := dest.Uint64()
	if udest >= uint64(len(c.code)) {
		return false
	}

	return c.bitmap.isSet(udest)
}

func (c *state) halt() {
	c.stop = true
}

func (c *state) exit(err error) {
	if err == nil {
		panic("cannot stop with none")
	}

	c.stop = true
	c.err = err
}

func (c *state) push(val *uint256.Int) {
	c.push1().Set(val)
}

// push1 reserves a new slot on top of the stack. The slot may alias a value
// popped earlier in the same instruction.
func (c *state) push1() *uint256.Int {
	v := &c.stack[c.sp]
	c.sp++

	return v
}

func (c *state) stackAtLeast(n int) bool {
	return c.sp >= n
}

func (c *state) popHash() types.Hash {
	return c.pop().Bytes32()
}

func (c *state) popAddr() types.Address {
	return types.Address(c.pop().Bytes20())
}

func (c *state) top() *uint256.Int {
	return &c.stack[c.sp-1]
}

func (c *state) pop() *uint256.Int {
	c.sp--

	return &c.stack[c.sp]
}

func (c *state) peekAt(n int) *uint256.Int {
	return &c.stack[c.sp-n]
}

func (c *state) swap(n int) {
	c.stack[c.sp-1], c.stack[c.sp-n-1] = c.stack[c.sp-n-1], c.stack[c.sp-1]
}

func (c *state) consumeGas(gas uint64) bool {
	if c.gas < gas {
		c.exit(errOutOfGas)

		return false
	}

	c.gas -= gas

	return true
}

func (c *state) resetReturnData() {
	c.returnData = c.returnData[:0]
}

// Run executes the virtual machine
func (c *state) Run() ([]byte, error) {
	var (
		tracer   = c.host.GetTracer()
		codeSize = len(c.code)
	)

	for !c.stop {
		if c.ip >= codeSize {
			c.halt()

			break
		}

		op := OpCode(c.code[c.ip])

		inst := dispatchTable[op]
		if inst.inst == nil || (inst.enabled != nil && !inst.enabled(c.config)) {
			c.exit(errOpCodeNotFound)

			break
		}

		// check if the depth of the stack is enough for the instruction
		if c.sp < inst.stack {
			c.exit(errStackUnderflow)

			break
		}

		if tracer != nil {
			tracer.CaptureState(uint64(c.ip), op.String(), c.gas, inst.gas, c.msg.Depth)
		}

		// consume the gas of the instruction
		if !c.consumeGas(inst.gas) {
			break
		}

		inst.inst(c)

		// check if stack size exceeds the max size
		if c.sp > stackSize {
			c.exit(errStackOverflow)

			break
		}

		c.ip++
	}

	return c.ret, c.err
}

func (c *state) inStaticCall() bool {
	return c.msg.Static
}

func (c *state) gasTable() chain.GasTable {
	return c.config.GasTable()
}

// Len returns the size of the active memory
func (c *state) Len() int {
	return len(c.memory)
}

// checkMemory charges the expansion cost of touching [offset, offset+size)
func (c *state) checkMemory(offset, size *uint256.Int) bool {
	if size.IsZero() {
		return true
	}

	if !offset.IsUint64() || !size.IsUint64() {
		c.exit(errOutOfGas)

		return false
	}

	o := offset.Uint64()
	s := size.Uint64()

	if o > 0xffffffffe0 || s > 0xffffffffe0 {
		c.exit(errOutOfGas)

		return false
	}

	m := uint64(len(c.memory))
	newSize := o + s

	if m < newSize {
		w := (newSize + 31) / 32
		newCost := MemoryGas*w + w*w/QuadCoeffDiv
		cost := newCost - c.lastGasCost
		c.lastGasCost = newCost

		if !c.consumeGas(cost) {
			return false
		}

		c.memory = common.ExtendByteSlice(c.memory, int(w*32))
	}

	return true
}

// get2 appends the memory slice [offset, offset+length) to dst
func (c *state) get2(dst []byte, offset, length *uint256.Int) ([]byte, bool) {
	if length.IsZero() {
		return nil, true
	}

	if !c.checkMemory(offset, length) {
		return nil, false
	}

	o := offset.Uint64()
	l := length.Uint64()

	dst = append(dst, c.memory[o:o+l]...)

	return dst, true
}

// Show renders the memory in rows of 16 bytes
func (c *state) Show() string {
	str := []string{}

	for i := 0; i < len(c.memory); i += 16 {
		j := i + 16
		if j > len(c.memory) {
			j = len(c.memory)
		}

		str = append(str, hex.EncodeToHex(c.memory[i:j]))
	}

	return strings.Join(str, "\n")
}

// isHaltingError reports whether err consumes all the gas of the frame
func isHaltingError(err error) bool {
	return err != nil && !errors.Is(err, errRevert)
}
