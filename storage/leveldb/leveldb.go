package leveldb

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/0xPolygon/evm-bridge/storage"
)

const (
	// minCache is the minimum memory allocate to leveldb
	// half write, half read
	minCache = 16 // 16 MiB

	// minHandles is the minimum number of files handles to leveldb open files
	minHandles = 16

	DefaultCache               = 1024 // 1 GiB
	DefaultHandles             = 512  // files handles to leveldb open files
	DefaultBloomKeyBits        = 2048 // bloom filter bits (256 bytes)
	DefaultCompactionTableSize = 4    // 4  MiB
	DefaultCompactionTotalSize = 40   // 40 MiB
	DefaultNoSync              = false
)

var _ storage.KV = (*levelDBKV)(nil)

// Options are the tunables of the leveldb backend
type Options struct {
	CacheSize           int
	Handles             int
	BloomKeyBits        int
	CompactionTableSize int
	CompactionTotalSize int
	NoSync              bool
}

// DefaultOptions returns the default tunables
func DefaultOptions() *Options {
	return &Options{
		CacheSize:           DefaultCache,
		Handles:             DefaultHandles,
		BloomKeyBits:        DefaultBloomKeyBits,
		CompactionTableSize: DefaultCompactionTableSize,
		CompactionTotalSize: DefaultCompactionTotalSize,
		NoSync:              DefaultNoSync,
	}
}

func (o *Options) toLevelDB() *opt.Options {
	cache := o.CacheSize
	if cache < minCache {
		cache = minCache
	}

	handles := o.Handles
	if handles < minHandles {
		handles = minHandles
	}

	return &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		CompactionTableSize:    o.CompactionTableSize * opt.MiB,
		CompactionTotalSize:    o.CompactionTotalSize * opt.MiB,
		NoSync:                 o.NoSync,
	}
}

// NewLevelDBStorage opens a leveldb database at path
func NewLevelDBStorage(path string, options *Options, logger hclog.Logger) (storage.KV, error) {
	if options == nil {
		options = DefaultOptions()
	}

	db, err := leveldb.OpenFile(path, options.toLevelDB())
	if err != nil {
		return nil, err
	}

	logger.Named("leveldb").Info("opened database", "path", path, "cache", options.CacheSize)

	return &levelDBKV{db: db}, nil
}

// levelDBKV is the leveldb implementation of the kv storage
type levelDBKV struct {
	db *leveldb.DB
}

// Set sets the key-value pair in leveldb storage
func (l *levelDBKV) Set(p []byte, v []byte) error {
	return l.db.Put(p, v, nil)
}

// Get retrieves the key-value pair in leveldb storage
func (l *levelDBKV) Get(p []byte) ([]byte, bool, error) {
	data, err := l.db.Get(p, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return data, true, nil
}

func (l *levelDBKV) Delete(p []byte) error {
	return l.db.Delete(p, nil)
}

func (l *levelDBKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}

	return iter.Error()
}

func (l *levelDBKV) NewBatch() storage.Batch {
	return storage.NewReplayBatch(func(b *leveldb.Batch) error {
		return l.db.Write(b, nil)
	})
}

// Close closes the leveldb storage instance
func (l *levelDBKV) Close() error {
	return l.db.Close()
}
