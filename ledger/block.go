package ledger

import (
	"encoding/binary"
	"sync"

	"github.com/0xPolygon/evm-bridge/helper/keccak"
	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/types"
)

var _ host.BlockContext = (*Block)(nil)

// Block is a block context that keeps the hashes of the blocks it sealed
type Block struct {
	lock   sync.RWMutex
	header *types.Header
	hashes map[uint64]types.Hash
}

// NewBlock starts a block context at header
func NewBlock(header *types.Header) *Block {
	return &Block{
		header: header.Copy(),
		hashes: map[uint64]types.Hash{},
	}
}

func (b *Block) Header() *types.Header {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.header.Copy()
}

func (b *Block) BlockHash(number uint64) types.Hash {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.hashes[number]
}

// Seal assigns a hash to the current block and moves to the next one
func (b *Block) Seal(timestamp uint64) types.Hash {
	b.lock.Lock()
	defer b.lock.Unlock()

	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], b.header.Number)
	binary.BigEndian.PutUint64(buf[8:], b.header.Timestamp)

	hash := types.BytesToHash(keccak.Keccak256(nil, append(b.header.Hash.Bytes(), buf...)))
	b.hashes[b.header.Number] = hash

	b.header.Hash = hash
	b.header.Number++
	b.header.Timestamp = timestamp

	return hash
}

// Restore records the hash of a block sealed before the context was created
func (b *Block) Restore(number uint64, hash types.Hash) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.hashes[number] = hash
}
