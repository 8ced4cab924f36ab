package memory

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/0xPolygon/evm-bridge/storage"
)

func newStorage(t *testing.T) (storage.KV, func()) {
	t.Helper()

	s := NewMemoryStorage(hclog.NewNullLogger())

	return s, func() {
		_ = s.Close()
	}
}

func TestStorage(t *testing.T) {
	storage.TestStorage(t, newStorage)
}

func TestClosed(t *testing.T) {
	t.Parallel()

	s := NewMemoryStorage(hclog.NewNullLogger())
	assert.NoError(t, s.Close())

	_, _, err := s.Get([]byte("a"))
	assert.ErrorIs(t, err, storage.ErrClosed)
	assert.ErrorIs(t, s.Set([]byte("a"), nil), storage.ErrClosed)
}
