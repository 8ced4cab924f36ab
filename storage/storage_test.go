package storage

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte("cab"), Key(CODE, []byte("a"), []byte("b")))
	assert.Equal(t, []byte("n"), Key(NONCE))
}

type closer struct {
	KV
	err error
}

func (c *closer) Close() error {
	return c.err
}

func TestCloseAll(t *testing.T) {
	t.Parallel()

	errA := errors.New("a")
	errB := errors.New("b")

	err := CloseAll(hclog.NewNullLogger(), &closer{err: errA}, nil, &closer{}, &closer{err: errB})
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	assert.NoError(t, CloseAll(hclog.NewNullLogger(), &closer{}))
}
