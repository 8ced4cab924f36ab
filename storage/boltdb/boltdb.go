package boltdb

import (
	"bytes"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	bolt "go.etcd.io/bbolt"

	"github.com/0xPolygon/evm-bridge/storage"
)

var _ storage.KV = (*boltDBKV)(nil)

var bucket = []byte{'b'}

// NewBoltDBStorage creates the new storage reference with boltdb
func NewBoltDBStorage(path string, logger hclog.Logger) (storage.KV, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	logger.Named("boltdb").Info("opened database", "path", path)

	return &boltDBKV{db: db}, nil
}

// boltDBKV is the boltdb implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

func (l *boltDBKV) Set(p []byte, v []byte) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(p, v)
	})
}

func (l *boltDBKV) Get(p []byte) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)

	err := l.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get(p); v != nil {
			// v is only valid for the lifetime of the tx, therefore copying
			data = make([]byte, len(v))
			copy(data, v)
			found = true
		}

		return nil
	})

	return data, found, err
}

func (l *boltDBKV) Delete(p []byte) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete(p)
	})
}

func (l *boltDBKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	return l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !fn(k, v) {
				break
			}
		}

		return nil
	})
}

// NewBatch returns a batch written in a single bolt transaction
func (l *boltDBKV) NewBatch() storage.Batch {
	return storage.NewReplayBatch(func(b *leveldb.Batch) error {
		return l.db.Update(func(tx *bolt.Tx) error {
			bkt := tx.Bucket(bucket)

			return storage.Replay(b, bkt.Put, bkt.Delete)
		})
	})
}

func (l *boltDBKV) Close() error {
	return l.db.Close()
}
