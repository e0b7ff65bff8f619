// Package cas provides the content-addressable object store backing
// savepoint repositories, with BLAKE3 hashing utilities.
package cas

import (
	"encoding/hex"
	"fmt"
	"sync"

	"lukechampine.com/blake3"
)

// Hash represents a BLAKE3-256 hash value.
type Hash [32]byte

// String returns the hexadecimal representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// SumB3 computes the BLAKE3 hash of the given data.
func SumB3(data []byte) Hash {
	return blake3.Sum256(data)
}

// ParseHash decodes a 64-character hexadecimal hash string.
func ParseHash(s string) (Hash, error) {
	if len(s) != 64 {
		return Hash{}, fmt.Errorf("invalid hash length: %d", len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

// CAS is the storage contract the object layer writes through. Every
// operation is keyed by the content hash of the canonical object bytes.
type CAS interface {
	// Put stores data under hash. Storing the same hash twice is a no-op.
	Put(hash Hash, data []byte) error

	// Get returns the data stored under hash.
	Get(hash Hash) ([]byte, error)

	// Has reports whether hash is present.
	Has(hash Hash) (bool, error)
}

// MemoryCAS keeps objects in a map, guarded for concurrent use. Tests use
// it in place of the on-disk store.
type MemoryCAS struct {
	mu   sync.RWMutex
	data map[Hash][]byte
}

// NewMemoryCAS returns an empty in-memory store.
func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{
		data: make(map[Hash][]byte),
	}
}

// Put stores data after checking it actually hashes to hash.
func (m *MemoryCAS) Put(hash Hash, data []byte) error {
	computed := SumB3(data)
	if computed != hash {
		return fmt.Errorf("hash mismatch: expected %s, got %s", hash, computed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Callers may reuse their buffer after Put.
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	m.data[hash] = dataCopy

	return nil
}

// Get returns a copy of the stored bytes.
func (m *MemoryCAS) Get(hash Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.data[hash]
	if !exists {
		return nil, fmt.Errorf("hash not found: %s", hash)
	}

	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Has reports whether hash is present.
func (m *MemoryCAS) Has(hash Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.data[hash]
	return exists, nil
}

// Len counts stored objects.
func (m *MemoryCAS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
