package memory

import (
	"errors"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/0xPolygon/evm-bridge/storage"
)

var _ storage.KV = (*memoryKV)(nil)

// NewMemoryStorage creates the new storage reference with inmemory
func NewMemoryStorage(logger hclog.Logger) storage.KV {
	logger.Named("memory").Debug("opened in-memory database")

	return &memoryKV{db: memdb.New(comparer.DefaultComparer, 0)}
}

// memoryKV is an in memory implementation of the kv storage. Batches are
// applied under the write lock so readers never observe half of one.
type memoryKV struct {
	lock   sync.RWMutex
	db     *memdb.DB
	closed bool
}

func (m *memoryKV) Set(p []byte, v []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return storage.ErrClosed
	}

	return m.db.Put(p, v)
}

func (m *memoryKV) Get(p []byte) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.closed {
		return nil, false, storage.ErrClosed
	}

	v, err := m.db.Get(p)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	// memdb hands out slices of its own buffer
	data := make([]byte, len(v))
	copy(data, v)

	return data, true, nil
}

func (m *memoryKV) Delete(p []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.delete(p)
}

func (m *memoryKV) delete(p []byte) error {
	if m.closed {
		return storage.ErrClosed
	}

	if err := m.db.Delete(p); err != nil && !errors.Is(err, memdb.ErrNotFound) {
		return err
	}

	return nil
}

func (m *memoryKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.closed {
		return storage.ErrClosed
	}

	iter := m.db.NewIterator(util.BytesPrefix(prefix))
	defer iter.Release()

	for iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}

	return iter.Error()
}

func (m *memoryKV) NewBatch() storage.Batch {
	return storage.NewReplayBatch(func(b *leveldb.Batch) error {
		m.lock.Lock()
		defer m.lock.Unlock()

		if m.closed {
			return storage.ErrClosed
		}

		return storage.Replay(b, m.db.Put, m.delete)
	})
}

func (m *memoryKV) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.closed = true
	m.db.Reset()

	return nil
}
