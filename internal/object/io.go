package object

import (
	"fmt"

	"github.com/javanhut/savepoint/internal/cas"
)

// Store helpers pair canonical encoding with CAS storage.

// PutBlob stores file content as a blob and returns its hash.
func PutBlob(store cas.CAS, content []byte) (cas.Hash, error) {
	data := EncodeBlob(content)
	hash := cas.SumB3(data)
	if err := store.Put(hash, data); err != nil {
		return cas.Hash{}, fmt.Errorf("failed to store blob: %w", err)
	}
	return hash, nil
}

// GetBlob retrieves and decodes a blob.
func GetBlob(store cas.CAS, hash cas.Hash) (*Blob, error) {
	data, err := store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s: %w", hash, err)
	}
	return DecodeBlob(data)
}

// PutTree stores a tree and returns its hash.
func PutTree(store cas.CAS, tree *Tree) (cas.Hash, error) {
	data := EncodeTree(tree)
	hash := cas.SumB3(data)
	if err := store.Put(hash, data); err != nil {
		return cas.Hash{}, fmt.Errorf("failed to store tree: %w", err)
	}
	return hash, nil
}

// GetTree retrieves and decodes a tree.
func GetTree(store cas.CAS, hash cas.Hash) (*Tree, error) {
	data, err := store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get tree %s: %w", hash, err)
	}
	return DecodeTree(data)
}

// PutCommit stores a commit and returns its hash.
func PutCommit(store cas.CAS, commit *Commit) (cas.Hash, error) {
	data := EncodeCommit(commit)
	hash := cas.SumB3(data)
	if err := store.Put(hash, data); err != nil {
		return cas.Hash{}, fmt.Errorf("failed to store commit: %w", err)
	}
	return hash, nil
}

// GetCommit retrieves and decodes a commit.
func GetCommit(store cas.CAS, hash cas.Hash) (*Commit, error) {
	data, err := store.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}
	return DecodeCommit(data)
}
