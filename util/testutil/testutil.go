package testutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

// CreateDummyBuf creates a byte slice that is `size` big.
// It's filled with the repeating numbers [0...254].
func CreateDummyBuf(size int64) []byte {
	buf := make([]byte, size)

	for i := int64(0); i < size; i++ {
		// Be evil and stripe the data:
		buf[i] = byte(i % 255)
	}

	return buf
}

// CreateImage writes a fake image of `size` bytes into a fresh temporary
// directory and returns its path. The name ends in ".xz".
// Use Remover(t, filepath.Dir(path)) to clean up.
func CreateImage(t *testing.T, size int64) string {
	dir, err := ioutil.TempDir("", "gctl-test")
	if err != nil {
		t.Fatalf("cannot create temp dir: %v", err)
	}

	path := filepath.Join(dir, "rootfs.tar.xz")
	if err := ioutil.WriteFile(path, CreateDummyBuf(size), 0600); err != nil {
		t.Fatalf("cannot write image: %v", err)
	}

	return path
}

// CreateSparseImage works like CreateImage, but does not write any data.
// The file is truncated to `size`, which is cheap even for huge sizes.
func CreateSparseImage(t *testing.T, size int64) string {
	path := CreateImage(t, 0)
	if err := os.Truncate(path, size); err != nil {
		t.Fatalf("cannot truncate image: %v", err)
	}

	return path
}

// Remover removes all files in paths recursively and errors when it fails.
// It is no error if there's nothing to delete. It's useful in defer statements.
func Remover(t *testing.T, paths ...string) {
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			t.Errorf("removing temp directory failed: %v", err)
		}
	}
}
