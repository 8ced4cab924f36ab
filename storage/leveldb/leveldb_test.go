package leveldb

import (
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/evm-bridge/storage"
)

func newStorage(t *testing.T) (storage.KV, func()) {
	t.Helper()

	s, err := NewLevelDBStorage(t.TempDir(), nil, hclog.NewNullLogger())
	if err != nil {
		t.Fatal(err)
	}

	closeFn := func() {
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}

	return s, closeFn
}

func TestStorage(t *testing.T) {
	storage.TestStorage(t, newStorage)
}
