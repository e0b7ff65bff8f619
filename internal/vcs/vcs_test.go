package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func initTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func writeWorktreeFile(t *testing.T, repo *Repository, worktree, rel, content string) {
	t.Helper()
	full := filepath.Join(repo.WorktreePath(worktree), rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir for %s failed: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write %s failed: %v", rel, err)
	}
}

func readWorktreeFile(t *testing.T, repo *Repository, worktree, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(repo.WorktreePath(worktree), rel))
	if err != nil {
		t.Fatalf("read %s failed: %v", rel, err)
	}
	return string(data)
}

func TestInitAndOpen(t *testing.T) {
	root := t.TempDir()

	repo, err := Init(root)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	repo.Close()

	if !IsRepository(root) {
		t.Error("IsRepository returned false after Init")
	}
	if _, err := Init(root); err == nil {
		t.Error("expected error initializing twice")
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	reopened.Close()

	if _, err := Open(t.TempDir()); !errors.Is(err, ErrNotRepository) {
		t.Errorf("expected ErrNotRepository, got %v", err)
	}
}

func TestCommitChain(t *testing.T) {
	repo := initTestRepo(t)

	if err := repo.AddWorktree("Hero1", "hero1-main"); err != nil {
		t.Fatalf("AddWorktree failed: %v", err)
	}
	writeWorktreeFile(t, repo, "Hero1", "player.json", `{"hp": 100}`)
	writeWorktreeFile(t, repo, "Hero1", "maps/overmap.sav", "terrain")

	first, err := repo.CreateCommit("Hero1", "Initial commit for Hero1", "tester")
	if err != nil {
		t.Fatalf("CreateCommit failed: %v", err)
	}
	if len(first.Parents) != 0 {
		t.Errorf("initial commit should have no parents, got %d", len(first.Parents))
	}

	head, err := repo.BranchHead("hero1-main")
	if err != nil {
		t.Fatalf("BranchHead failed: %v", err)
	}
	if head != first.Hash {
		t.Errorf("branch head %s != commit %s", head, first.Hash)
	}

	writeWorktreeFile(t, repo, "Hero1", "player.json", `{"hp": 50}`)
	second, err := repo.CreateCommit("Hero1", "add loot", "tester")
	if err != nil {
		t.Fatalf("second CreateCommit failed: %v", err)
	}
	if second.Hash == first.Hash {
		t.Error("second commit should have a distinct hash")
	}
	if len(second.Parents) != 1 || second.Parents[0] != first.Hash {
		t.Errorf("second commit parent = %v, want [%s]", second.Parents, first.Hash)
	}

	info, err := repo.CommitInfo(second.Hash)
	if err != nil {
		t.Fatalf("CommitInfo failed: %v", err)
	}
	if info.Message != "add loot" {
		t.Errorf("expected message %q, got %q", "add loot", info.Message)
	}
}

func TestIdenticalContentDistinctCommits(t *testing.T) {
	repo := initTestRepo(t)
	if err := repo.AddWorktree("Hero1", "hero1-main"); err != nil {
		t.Fatalf("AddWorktree failed: %v", err)
	}
	writeWorktreeFile(t, repo, "Hero1", "a.sav", "same content")

	first, err := repo.CreateCommit("Hero1", "first", "tester")
	if err != nil {
		t.Fatalf("CreateCommit failed: %v", err)
	}
	second, err := repo.CreateCommit("Hero1", "second", "tester")
	if err != nil {
		t.Fatalf("CreateCommit failed: %v", err)
	}
	if first.Hash == second.Hash {
		t.Error("commits with identical trees but distinct messages must differ")
	}
	if len(second.Parents) != 1 || second.Parents[0] != first.Hash {
		t.Errorf("second commit parent = %v, want [%s]", second.Parents, first.Hash)
	}
}

func TestResetToCommit(t *testing.T) {
	repo := initTestRepo(t)
	if err := repo.AddWorktree("Hero1", "hero1-main"); err != nil {
		t.Fatalf("AddWorktree failed: %v", err)
	}
	writeWorktreeFile(t, repo, "Hero1", "player.json", "v1")
	first, _ := repo.CreateCommit("Hero1", "first", "tester")
	writeWorktreeFile(t, repo, "Hero1", "player.json", "v2")
	writeWorktreeFile(t, repo, "Hero1", "extra.sav", "junk")
	second, _ := repo.CreateCommit("Hero1", "second", "tester")

	// Uncommitted noise on top
	writeWorktreeFile(t, repo, "Hero1", "scratch.tmp", "noise")

	if err := repo.ResetToCommit("Hero1", first.Hash); err != nil {
		t.Fatalf("ResetToCommit failed: %v", err)
	}

	if got := readWorktreeFile(t, repo, "Hero1", "player.json"); got != "v1" {
		t.Errorf("player.json = %q, want %q", got, "v1")
	}
	for _, gone := range []string{"extra.sav", "scratch.tmp"} {
		if _, err := os.Stat(filepath.Join(repo.WorktreePath("Hero1"), gone)); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed by reset", gone)
		}
	}

	// Branch ref untouched: reset is a working-tree move.
	branchHead, _ := repo.BranchHead("hero1-main")
	if branchHead != second.Hash {
		t.Errorf("branch head moved by reset: %s, want %s", branchHead, second.Hash)
	}
	head, _ := repo.HeadCommit("Hero1")
	if head != first.Hash {
		t.Errorf("worktree head = %s, want %s", head, first.Hash)
	}
	name, detached, _ := repo.CurrentBranch("Hero1")
	if name != "hero1-main" || detached {
		t.Errorf("reset should keep the branch: %q detached=%v", name, detached)
	}

	status, err := repo.Status("Hero1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Clean() {
		t.Errorf("worktree not clean after reset: %+v", status)
	}

	// Commit after reset: parent is the restored commit, branch moves on.
	writeWorktreeFile(t, repo, "Hero1", "player.json", "v3")
	third, err := repo.CreateCommit("Hero1", "diverge", "tester")
	if err != nil {
		t.Fatalf("CreateCommit after reset failed: %v", err)
	}
	if len(third.Parents) != 1 || third.Parents[0] != first.Hash {
		t.Errorf("post-reset commit parent = %v, want [%s]", third.Parents, first.Hash)
	}
	branchHead, _ = repo.BranchHead("hero1-main")
	if branchHead != third.Hash {
		t.Errorf("branch head = %s, want %s", branchHead, third.Hash)
	}
	// The orphaned commit stays reachable by hash.
	if _, err := repo.CommitInfo(second.Hash); err != nil {
		t.Errorf("orphaned commit unreadable: %v", err)
	}
}

func TestBranchesAndCheckout(t *testing.T) {
	repo := initTestRepo(t)
	if err := repo.AddWorktree("Hero1", "hero1-main"); err != nil {
		t.Fatalf("AddWorktree failed: %v", err)
	}
	writeWorktreeFile(t, repo, "Hero1", "player.json", "v1")
	first, _ := repo.CreateCommit("Hero1", "first", "tester")
	writeWorktreeFile(t, repo, "Hero1", "player.json", "v2")
	second, _ := repo.CreateCommit("Hero1", "second", "tester")

	// CreateBranch does not touch the worktree.
	if err := repo.CreateBranch("hero1-explore", first.Hash); err != nil {
		t.Fatalf("CreateBranch failed: %v", err)
	}
	if got := readWorktreeFile(t, repo, "Hero1", "player.json"); got != "v2" {
		t.Errorf("CreateBranch modified the worktree: %q", got)
	}
	if err := repo.CreateBranch("hero1-explore", first.Hash); !errors.Is(err, ErrBranchExists) {
		t.Errorf("expected ErrBranchExists, got %v", err)
	}

	exists, _ := repo.BranchExists("hero1-explore")
	if !exists {
		t.Error("BranchExists returned false for created branch")
	}
	names, _ := repo.ListBranches()
	if len(names) != 2 {
		t.Errorf("expected 2 branches, got %v", names)
	}

	if err := repo.CheckoutBranch("Hero1", "hero1-explore"); err != nil {
		t.Fatalf("CheckoutBranch failed: %v", err)
	}
	if got := readWorktreeFile(t, repo, "Hero1", "player.json"); got != "v1" {
		t.Errorf("checkout content = %q, want %q", got, "v1")
	}
	name, detached, _ := repo.CurrentBranch("Hero1")
	if name != "hero1-explore" || detached {
		t.Errorf("CurrentBranch = %q detached=%v", name, detached)
	}

	if err := repo.CheckoutBranch("Hero1", "nope"); !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("expected ErrBranchNotFound, got %v", err)
	}

	if err := repo.CheckoutCommit("Hero1", second.Hash); err != nil {
		t.Fatalf("CheckoutCommit failed: %v", err)
	}
	name, detached, _ = repo.CurrentBranch("Hero1")
	if name != "" || !detached {
		t.Errorf("expected detached state, got %q detached=%v", name, detached)
	}
}

func TestStatusSets(t *testing.T) {
	repo := initTestRepo(t)
	if err := repo.AddWorktree("Hero1", "hero1-main"); err != nil {
		t.Fatalf("AddWorktree failed: %v", err)
	}
	writeWorktreeFile(t, repo, "Hero1", "keep.sav", "keep")
	writeWorktreeFile(t, repo, "Hero1", "change.sav", "before")
	writeWorktreeFile(t, repo, "Hero1", "remove.sav", "bye")
	if _, err := repo.CreateCommit("Hero1", "base", "tester"); err != nil {
		t.Fatalf("CreateCommit failed: %v", err)
	}

	writeWorktreeFile(t, repo, "Hero1", "change.sav", "after")
	writeWorktreeFile(t, repo, "Hero1", "new.sav", "hello")
	if err := os.Remove(filepath.Join(repo.WorktreePath("Hero1"), "remove.sav")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	status, err := repo.Status("Hero1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(status.Added) != 1 || status.Added[0] != "new.sav" {
		t.Errorf("Added = %v", status.Added)
	}
	if len(status.Modified) != 1 || status.Modified[0] != "change.sav" {
		t.Errorf("Modified = %v", status.Modified)
	}
	if len(status.Removed) != 1 || status.Removed[0] != "remove.sav" {
		t.Errorf("Removed = %v", status.Removed)
	}
	if status.Clean() {
		t.Error("Clean() should be false with pending changes")
	}
}

func TestMultipleWorktreesShareRepository(t *testing.T) {
	repo := initTestRepo(t)

	for _, save := range []struct{ name, branch string }{
		{"Hero1", "hero1-main"},
		{"Hero2", "hero2-main"},
	} {
		if err := repo.AddWorktree(save.name, save.branch); err != nil {
			t.Fatalf("AddWorktree %s failed: %v", save.name, err)
		}
		writeWorktreeFile(t, repo, save.name, "player.json", save.name)
		if _, err := repo.CreateCommit(save.name, "Initial commit for "+save.name, "tester"); err != nil {
			t.Fatalf("CreateCommit %s failed: %v", save.name, err)
		}
	}

	worktrees, err := repo.ListWorktrees()
	if err != nil {
		t.Fatalf("ListWorktrees failed: %v", err)
	}
	if len(worktrees) != 2 {
		t.Errorf("expected 2 worktrees, got %v", worktrees)
	}

	// Each save keeps its own content and branch.
	if got := readWorktreeFile(t, repo, "Hero2", "player.json"); got != "Hero2" {
		t.Errorf("Hero2 content = %q", got)
	}
	name, _, _ := repo.CurrentBranch("Hero2")
	if name != "hero2-main" {
		t.Errorf("Hero2 branch = %q", name)
	}
}

func TestEmptyCommit(t *testing.T) {
	repo := initTestRepo(t)
	if err := repo.AddWorktree("Empty", "empty-main"); err != nil {
		t.Fatalf("AddWorktree failed: %v", err)
	}

	info, err := repo.CreateCommit("Empty", "Initial commit for Empty", "tester")
	if err != nil {
		t.Fatalf("empty CreateCommit failed: %v", err)
	}
	if info.Hash.IsZero() {
		t.Error("empty commit produced zero hash")
	}

	status, err := repo.Status("Empty")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.Clean() {
		t.Errorf("empty worktree not clean: %+v", status)
	}
}

func TestCommitRejectsNewlineNames(t *testing.T) {
	repo := initTestRepo(t)
	if err := repo.AddWorktree("save1", "save1-main"); err != nil {
		t.Fatalf("AddWorktree failed: %v", err)
	}
	writeWorktreeFile(t, repo, "save1", "good.sav", "ok")
	if _, err := repo.CreateCommit("save1", "baseline", "tester <t@local>"); err != nil {
		t.Fatalf("baseline commit failed: %v", err)
	}
	head, err := repo.BranchHead("save1-main")
	if err != nil {
		t.Fatalf("BranchHead failed: %v", err)
	}

	writeWorktreeFile(t, repo, "save1", "evil\nname.sav", "bad")
	_, err = repo.CreateCommit("save1", "should fail", "tester <t@local>")
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	// The failed commit must not move the branch or poison the worktree.
	after, err := repo.BranchHead("save1-main")
	if err != nil {
		t.Fatalf("BranchHead after failure: %v", err)
	}
	if after != head {
		t.Error("branch head moved on rejected commit")
	}
	if err := repo.ResetToCommit("save1", head); err != nil {
		t.Fatalf("restore after rejected commit failed: %v", err)
	}
	if got := readWorktreeFile(t, repo, "save1", "good.sav"); got != "ok" {
		t.Errorf("restored content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(repo.WorktreePath("save1"), "evil\nname.sav")); !os.IsNotExist(err) {
		t.Error("offending file survived restore")
	}
	if _, err := repo.CreateCommit("save1", "clean again", "tester <t@local>"); err != nil {
		t.Fatalf("commit after cleanup failed: %v", err)
	}
}
