// File-based CAS. Objects are zstd-compressed at rest; the hash always
// covers the uncompressed bytes, so on-disk corruption is detectable.
package cas

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FileCAS implements CAS using file system storage.
type FileCAS struct {
	root string
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// NewFileCAS creates a new file-based CAS in the given directory.
func NewFileCAS(root string) (*FileCAS, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create CAS directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &FileCAS{root: root, enc: enc, dec: dec}, nil
}

// getPath returns the file path for a given hash.
// Uses a two-level directory structure to avoid too many files in one directory.
func (f *FileCAS) getPath(hash Hash) string {
	hexStr := hash.String()
	// First 2 chars as directory, rest as filename, e.g. ab/cdef1234...
	return filepath.Join(f.root, hexStr[:2], hexStr[2:])
}

// Put implements CAS.Put.
func (f *FileCAS) Put(hash Hash, data []byte) error {
	// Verify the hash matches the data
	computed := SumB3(data)
	if computed != hash {
		return fmt.Errorf("hash mismatch: expected %s, got %s", hash.String(), computed.String())
	}

	path := f.getPath(hash)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Content-addressed, so an existing object never needs rewriting.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	compressed := f.enc.EncodeAll(data, nil)

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	_, err = file.Write(compressed)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Get implements CAS.Get.
func (f *FileCAS) Get(hash Hash) ([]byte, error) {
	path := f.getPath(hash)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("hash not found: %s", hash.String())
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	compressed, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	data, err := f.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress object %s: %w", hash.String(), err)
	}

	// Verify the hash matches
	computed := SumB3(data)
	if computed != hash {
		return nil, fmt.Errorf("corrupted data: hash mismatch for %s", hash.String())
	}

	return data, nil
}

// Has implements CAS.Has.
func (f *FileCAS) Has(hash Hash) (bool, error) {
	_, err := os.Stat(f.getPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file: %w", err)
	}
	return true, nil
}

// Compressed reports whether the stored form of an object differs from its
// raw bytes. Mostly useful for diagnostics.
func (f *FileCAS) Compressed(hash Hash) (bool, error) {
	raw, err := f.Get(hash)
	if err != nil {
		return false, err
	}
	stored, err := os.ReadFile(f.getPath(hash))
	if err != nil {
		return false, fmt.Errorf("failed to read stored object: %w", err)
	}
	return !bytes.Equal(raw, stored), nil
}
