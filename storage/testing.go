package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PlaceholderStorage func(t *testing.T) (KV, func())

// TestStorage tests a set of tests on a storage
func TestStorage(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	t.Run("testSetGet", func(t *testing.T) {
		testSetGet(t, m)
	})
	t.Run("testDelete", func(t *testing.T) {
		testDelete(t, m)
	})
	t.Run("testIterate", func(t *testing.T) {
		testIterate(t, m)
	})
	t.Run("testBatch", func(t *testing.T) {
		testBatch(t, m)
	})
	t.Run("testDeletePrefix", func(t *testing.T) {
		testDeletePrefix(t, m)
	})
}

func testSetGet(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	_, ok, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set([]byte("a"), []byte{0x1}))

	v, ok, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x1}, v)

	// overwrite
	require.NoError(t, s.Set([]byte("a"), []byte{0x2}))

	v, _, err = s.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2}, v)
}

func testDelete(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	require.NoError(t, s.Set([]byte("a"), []byte{0x1}))
	require.NoError(t, s.Delete([]byte("a")))

	_, ok, err := s.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing key is not an error
	require.NoError(t, s.Delete([]byte("b")))
}

func testIterate(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	for _, k := range []string{"s1", "s3", "s2", "t1", "r1"} {
		require.NoError(t, s.Set([]byte(k), []byte(k)))
	}

	keys := []string{}
	err := s.Iterate([]byte("s"), func(k, v []byte) bool {
		assert.Equal(t, k, v)
		keys = append(keys, string(k))

		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, keys)

	// stop early
	count := 0
	err = s.Iterate([]byte("s"), func(_, _ []byte) bool {
		count++

		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func testBatch(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	require.NoError(t, s.Set([]byte("old"), []byte{0x1}))

	b := s.NewBatch()
	b.Put([]byte("new"), []byte{0x2})
	b.Delete([]byte("old"))
	assert.Equal(t, 2, b.Len())

	// nothing is visible before the write
	_, ok, err := s.Get([]byte("new"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Write())

	v, ok, err := s.Get([]byte("new"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x2}, v)

	_, ok, err = s.Get([]byte("old"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func testDeletePrefix(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	addr := []byte{0xaa}
	other := []byte{0xab}

	require.NoError(t, s.Set(Key(STORAGE, addr, []byte{1}), []byte{1}))
	require.NoError(t, s.Set(Key(STORAGE, addr, []byte{2}), []byte{2}))
	require.NoError(t, s.Set(Key(STORAGE, other, []byte{1}), []byte{3}))

	b := s.NewBatch()
	n, err := DeletePrefix(s, b, Key(STORAGE, addr))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, b.Write())

	_, ok, err := s.Get(Key(STORAGE, addr, []byte{1}))
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := s.Get(Key(STORAGE, other, []byte{1}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{3}, v)
}
