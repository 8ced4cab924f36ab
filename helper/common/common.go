package common

import (
	"fmt"
	"os"
	"path/filepath"
)

// Min returns the strictly lower number
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}

	return b
}

// Max returns the strictly bigger number
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}

	return b
}

// LeftPad returns buf left padded with zeros up to n bytes.
// buf is returned as is when it is already n bytes or longer.
func LeftPad(buf []byte, n int) []byte {
	l := len(buf)
	if l >= n {
		return buf
	}

	tmp := make([]byte, n)
	copy(tmp[n-l:], buf)

	return tmp
}

// RightPadSlice copies buf[offset:offset+size] into a new slice, zero filling
// whatever falls outside buf.
func RightPadSlice(buf []byte, offset, size uint64) []byte {
	out := make([]byte, size)

	if offset >= uint64(len(buf)) {
		return out
	}

	end := offset + size
	if end > uint64(len(buf)) || end < offset {
		end = uint64(len(buf))
	}

	copy(out, buf[offset:end])

	return out
}

// ExtendByteSlice grows b to needLen, reusing its capacity when possible
func ExtendByteSlice(b []byte, needLen int) []byte {
	b = b[:cap(b)]
	if n := needLen - cap(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}

	return b[:needLen]
}

// SetupDataDir sets up the data directory and the corresponding sub-directories
func SetupDataDir(dataDir string, paths []string) error {
	if err := createDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: (%s): %w", dataDir, err)
	}

	for _, path := range paths {
		path := filepath.Join(dataDir, path)
		if err := createDir(path); err != nil {
			return fmt.Errorf("failed to create path: (%s): %w", path, err)
		}
	}

	return nil
}

// createDir creates a file system directory if it doesn't exist
func createDir(path string) error {
	_, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, os.ModePerm); err != nil {
			return err
		}
	}

	return nil
}
