package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(1), Min(1, 2))
	assert.Equal(t, uint64(2), Max(1, 2))
}

func TestLeftPad(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte{0, 0, 1}, LeftPad([]byte{1}, 3))
	assert.Equal(t, []byte{1, 2, 3}, LeftPad([]byte{1, 2, 3}, 2))
}

func TestRightPadSlice(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3}

	assert.Equal(t, []byte{2, 3, 0, 0}, RightPadSlice(buf, 1, 4))
	assert.Equal(t, []byte{0, 0}, RightPadSlice(buf, 10, 2))
	assert.Equal(t, []byte{1, 2}, RightPadSlice(buf, 0, 2))
}

func TestExtendByteSlice(t *testing.T) {
	t.Parallel()

	b := make([]byte, 2, 8)
	b = ExtendByteSlice(b, 6)
	assert.Len(t, b, 6)
	assert.Equal(t, 8, cap(b))

	b = ExtendByteSlice(b, 20)
	assert.Len(t, b, 20)
}

func TestSetupDataDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, SetupDataDir(dir, []string{"state"}))
	assert.DirExists(t, filepath.Join(dir, "state"))
}
