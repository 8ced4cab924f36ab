package evm

import "github.com/0xPolygon/evm-bridge/helper/common"

const bitmapSize = 8

type bitmap struct {
	buf []byte
}

func (b *bitmap) isSet(i uint64) bool {
	return b.buf[i/bitmapSize]&(1<<(i%bitmapSize)) != 0
}

func (b *bitmap) set(i uint64) {
	b.buf[i/bitmapSize] |= 1 << (i % bitmapSize)
}

func (b *bitmap) reset() {
	for i := range b.buf {
		b.buf[i] = 0
	}

	b.buf = b.buf[:0]
}

// setCode marks every JUMPDEST that is not part of PUSH data
func (b *bitmap) setCode(code []byte) {
	codeSize := uint64(len(code))
	b.buf = common.ExtendByteSlice(b.buf, int(codeSize/bitmapSize+1))

	for i := uint64(0); i < codeSize; {
		c := code[i]

		if isPushOp(c) {
			// skip the immediate bytes
			i += uint64(c-byte(PUSH1)) + 2
		} else {
			if OpCode(c) == JUMPDEST {
				b.set(i)
			}
			i++
		}
	}
}

func isPushOp(i byte) bool {
	return OpCode(i) >= PUSH1 && OpCode(i) <= PUSH32
}
