package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "refs.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBranchLifecycle(t *testing.T) {
	db := openTestDB(t)

	if err := db.PutBranch("hero1-main", "aa11"); err != nil {
		t.Fatalf("PutBranch failed: %v", err)
	}

	commitHex, err := db.GetBranch("hero1-main")
	if err != nil {
		t.Fatalf("GetBranch failed: %v", err)
	}
	if commitHex != "aa11" {
		t.Errorf("expected aa11, got %s", commitHex)
	}

	exists, err := db.HasBranch("hero1-main")
	if err != nil || !exists {
		t.Errorf("HasBranch = %v, %v; want true, nil", exists, err)
	}

	// Move the ref
	if err := db.PutBranch("hero1-main", "bb22"); err != nil {
		t.Fatalf("PutBranch (move) failed: %v", err)
	}
	commitHex, _ = db.GetBranch("hero1-main")
	if commitHex != "bb22" {
		t.Errorf("expected moved ref bb22, got %s", commitHex)
	}

	names, err := db.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches failed: %v", err)
	}
	if len(names) != 1 || names[0] != "hero1-main" {
		t.Errorf("unexpected branch list: %v", names)
	}

	if err := db.DeleteBranch("hero1-main"); err != nil {
		t.Fatalf("DeleteBranch failed: %v", err)
	}
	if _, err := db.GetBranch("hero1-main"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestWorktreeState(t *testing.T) {
	db := openTestDB(t)

	state := WorktreeState{Branch: "hero1-main", Head: "cc33", Detached: false}
	if err := db.PutWorktree("Hero1", state); err != nil {
		t.Fatalf("PutWorktree failed: %v", err)
	}

	got, err := db.GetWorktree("Hero1")
	if err != nil {
		t.Fatalf("GetWorktree failed: %v", err)
	}
	if got != state {
		t.Errorf("expected %+v, got %+v", state, got)
	}

	names, err := db.ListWorktrees()
	if err != nil {
		t.Fatalf("ListWorktrees failed: %v", err)
	}
	if len(names) != 1 || names[0] != "Hero1" {
		t.Errorf("unexpected worktree list: %v", names)
	}

	if _, err := db.GetWorktree("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing worktree, got %v", err)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)

	if err := db.PutMeta(MetaRootCommit, "dd44"); err != nil {
		t.Fatalf("PutMeta failed: %v", err)
	}
	value, err := db.GetMeta(MetaRootCommit)
	if err != nil {
		t.Fatalf("GetMeta failed: %v", err)
	}
	if value != "dd44" {
		t.Errorf("expected dd44, got %s", value)
	}

	if _, err := db.GetMeta("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
