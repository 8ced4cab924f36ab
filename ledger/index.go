package ledger

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/evm-bridge/host"
	"github.com/0xPolygon/evm-bridge/storage"
	"github.com/0xPolygon/evm-bridge/types"
)

var _ host.AccountIndex = (*Index)(nil)

var (
	addrPrefix = storage.Key(storage.INDEX, []byte("a"))
	idPrefix   = storage.Key(storage.INDEX, []byte("i"))
)

// Index is a persistent two way registry of addresses and account ids.
// Entries are memoised after the first read.
type Index struct {
	logger hclog.Logger
	kv     storage.KV

	lock  sync.RWMutex
	ids   map[types.Address]types.AccountID
	addrs map[types.AccountID]types.Address
}

// NewIndex creates an index over kv. A nil kv keeps the index in memory.
func NewIndex(kv storage.KV, logger hclog.Logger) *Index {
	return &Index{
		logger: logger.Named("index"),
		kv:     kv,
		ids:    map[types.Address]types.AccountID{},
		addrs:  map[types.AccountID]types.Address{},
	}
}

func (i *Index) Lookup(addr types.Address) (types.AccountID, bool) {
	i.lock.RLock()
	id, ok := i.ids[addr]
	i.lock.RUnlock()

	if ok || i.kv == nil {
		return id, ok
	}

	v, ok, err := i.kv.Get(storage.Key(addrPrefix, addr.Bytes()))
	if err != nil {
		i.logger.Error("failed to read index", "addr", addr, "err", err)

		return types.AccountID{}, false
	}

	if !ok {
		return types.AccountID{}, false
	}

	id = types.BytesToAccountID(v)
	i.memoise(addr, id)

	return id, true
}

func (i *Index) Address(id types.AccountID) (types.Address, bool) {
	i.lock.RLock()
	addr, ok := i.addrs[id]
	i.lock.RUnlock()

	if ok || i.kv == nil {
		return addr, ok
	}

	v, ok, err := i.kv.Get(storage.Key(idPrefix, id.Bytes()))
	if err != nil {
		i.logger.Error("failed to read index", "id", id, "err", err)

		return types.Address{}, false
	}

	if !ok {
		return types.Address{}, false
	}

	addr = types.BytesToAddress(v)
	i.memoise(addr, id)

	return addr, true
}

// Register records addr <-> id. Entries are never re-pointed: registering
// the same pair twice is a no-op, anything else that touches an existing
// entry fails.
func (i *Index) Register(addr types.Address, id types.AccountID) error {
	prev, ok := i.Lookup(addr)
	if ok {
		if prev == id {
			return nil
		}

		return fmt.Errorf("%w: %s is bound to %s", host.ErrAlreadyRegistered, addr, prev)
	}

	if other, ok := i.Address(id); ok {
		return fmt.Errorf("%w: %s is bound to %s", host.ErrAlreadyRegistered, id, other)
	}

	if i.kv != nil {
		b := i.kv.NewBatch()
		b.Put(storage.Key(addrPrefix, addr.Bytes()), id.Bytes())
		b.Put(storage.Key(idPrefix, id.Bytes()), addr.Bytes())

		if err := b.Write(); err != nil {
			return fmt.Errorf("failed to write index: %w", err)
		}
	}

	i.memoise(addr, id)

	return nil
}

func (i *Index) memoise(addr types.Address, id types.AccountID) {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.ids[addr] = id
	i.addrs[id] = addr
}
