// Package store persists repository metadata in a bbolt database: branch
// refs, per-worktree state, and repository-level keys. Commit and tree
// objects themselves live in the CAS, never here.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
)

// Buckets
var (
	BucketBranches  = []byte("branches")  // branch name -> commit hash hex
	BucketWorktrees = []byte("worktrees") // worktree name -> WorktreeState JSON
	BucketMeta      = []byte("meta")      // repository-level keys
)

// Meta keys
const (
	MetaRootCommit = "root-commit"
	MetaCreatedAt  = "created-at"
)

// ErrNotFound is returned when a branch, worktree, or meta key is absent.
var ErrNotFound = errors.New("not found")

// WorktreeState records which branch and commit a worktree currently has
// checked out. Detached means the worktree points at a raw commit with no
// branch association.
type WorktreeState struct {
	Branch   string `json:"branch"`
	Head     string `json:"head"`
	Detached bool   `json:"detached"`
}

type DB struct{ *bbolt.DB }

// Open opens (creating if necessary) the metadata database at path.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0666, nil)
	if err != nil {
		return nil, err
	}
	// Ensure buckets exist
	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{BucketBranches, BucketWorktrees, BucketMeta} {
			if _, e := tx.CreateBucketIfNotExists(bucket); e != nil {
				return e
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func (db *DB) Close() error { return db.DB.Close() }

// PutBranch stores or moves a branch ref.
func (db *DB) PutBranch(name, commitHex string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketBranches).Put([]byte(name), []byte(commitHex))
	})
}

// GetBranch returns the commit hash hex a branch points at.
func (db *DB) GetBranch(name string) (string, error) {
	var commitHex string
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketBranches).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("branch %s: %w", name, ErrNotFound)
		}
		commitHex = string(v)
		return nil
	})
	return commitHex, err
}

// HasBranch reports whether a branch ref exists.
func (db *DB) HasBranch(name string) (bool, error) {
	var exists bool
	err := db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(BucketBranches).Get([]byte(name)) != nil
		return nil
	})
	return exists, err
}

// ListBranches returns all branch names in key order.
func (db *DB) ListBranches() ([]string, error) {
	var names []string
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketBranches).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// DeleteBranch removes a branch ref. Deleting a missing branch is not an error.
func (db *DB) DeleteBranch(name string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketBranches).Delete([]byte(name))
	})
}

// PutWorktree stores worktree state.
func (db *DB) PutWorktree(name string, state WorktreeState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode worktree state: %w", err)
	}
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketWorktrees).Put([]byte(name), data)
	})
}

// GetWorktree returns the state of a registered worktree.
func (db *DB) GetWorktree(name string) (WorktreeState, error) {
	var state WorktreeState
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketWorktrees).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("worktree %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(v, &state)
	})
	return state, err
}

// ListWorktrees returns all registered worktree names.
func (db *DB) ListWorktrees() ([]string, error) {
	var names []string
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketWorktrees).ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// DeleteWorktree removes a worktree registration.
func (db *DB) DeleteWorktree(name string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketWorktrees).Delete([]byte(name))
	})
}

// PutMeta stores a repository-level key.
func (db *DB) PutMeta(key, value string) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketMeta).Put([]byte(key), []byte(value))
	})
}

// GetMeta retrieves a repository-level key.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketMeta).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("meta key %s: %w", key, ErrNotFound)
		}
		value = string(v)
		return nil
	})
	return value, err
}
