package storage

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	// ErrClosed is returned when the database has been closed
	ErrClosed = errors.New("storage closed")
)

// prefix

var (
	// CODE is the prefix for contract code, keyed by address
	CODE = []byte("c")

	// STORAGE is the prefix for contract storage, keyed by address and slot
	STORAGE = []byte("s")

	// BALANCE is the prefix for ledger balances, keyed by account id
	BALANCE = []byte("b")

	// NONCE is the prefix for account nonces, keyed by account id
	NONCE = []byte("n")

	// INDEX is the prefix for the address to account id index
	INDEX = []byte("i")

	// META is the prefix for bookkeeping entries
	META = []byte("m")
)

// KV is a key value storage interface
type KV interface {
	Set(k []byte, v []byte) error
	Get(k []byte) ([]byte, bool, error)
	Delete(k []byte) error

	// Iterate calls fn for every key starting with prefix, in key order,
	// until fn returns false. The slices are only valid inside fn.
	Iterate(prefix []byte, fn func(k, v []byte) bool) error

	NewBatch() Batch
	Close() error
}

// Batch accumulates writes that are applied atomically by Write
type Batch interface {
	Put(k []byte, v []byte)
	Delete(k []byte)
	Len() int
	Write() error
}

// Key joins a prefix and a set of key parts
func Key(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}

	k := make([]byte, 0, size)
	k = append(k, prefix...)

	for _, p := range parts {
		k = append(k, p...)
	}

	return k
}

// DeletePrefix queues the removal of every key under prefix into the batch
// and returns the number of keys found
func DeletePrefix(kv KV, b Batch, prefix []byte) (int, error) {
	count := 0

	err := kv.Iterate(prefix, func(k, _ []byte) bool {
		key := make([]byte, len(k))
		copy(key, k)

		b.Delete(key)
		count++

		return true
	})

	return count, err
}

// replayer writes a leveldb batch into any backend. The first failure is kept.
type replayer struct {
	put func(k, v []byte) error
	del func(k []byte) error
	err error
}

func (r *replayer) Put(k, v []byte) {
	if r.err == nil {
		r.err = r.put(k, v)
	}
}

func (r *replayer) Delete(k []byte) {
	if r.err == nil {
		r.err = r.del(k)
	}
}

// ReplayBatch is a Batch that buffers operations in a leveldb batch and
// replays them with the given callbacks on Write
type ReplayBatch struct {
	B     *leveldb.Batch
	apply func(b *leveldb.Batch) error
}

// NewReplayBatch creates a batch flushed by apply
func NewReplayBatch(apply func(b *leveldb.Batch) error) *ReplayBatch {
	return &ReplayBatch{
		B:     new(leveldb.Batch),
		apply: apply,
	}
}

func (b *ReplayBatch) Put(k []byte, v []byte) {
	b.B.Put(k, v)
}

func (b *ReplayBatch) Delete(k []byte) {
	b.B.Delete(k)
}

func (b *ReplayBatch) Len() int {
	return b.B.Len()
}

func (b *ReplayBatch) Write() error {
	return b.apply(b.B)
}

// Replay applies every operation in b through put and del
func Replay(b *leveldb.Batch, put func(k, v []byte) error, del func(k []byte) error) error {
	r := &replayer{put: put, del: del}

	if err := b.Replay(r); err != nil {
		return err
	}

	return r.err
}

// CloseAll closes every store and aggregates the failures
func CloseAll(logger hclog.Logger, stores ...KV) error {
	var result error

	for i, s := range stores {
		if s == nil {
			continue
		}

		if err := s.Close(); err != nil {
			logger.Error("failed to close storage", "index", i, "err", err)
			result = multierror.Append(result, fmt.Errorf("store %d: %w", i, err))
		}
	}

	return result
}
