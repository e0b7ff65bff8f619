package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/javanhut/savepoint/internal/cas"
	"github.com/javanhut/savepoint/internal/object"
	"github.com/javanhut/savepoint/internal/store"
)

// Repository implements Adapter over a file-backed CAS and a bbolt
// metadata database, both living under <root>/.savepoint.
type Repository struct {
	root    string
	objects cas.CAS
	db      *store.DB
}

var _ Adapter = (*Repository)(nil)

// IsRepository reports whether root contains an initialized repository.
func IsRepository(root string) bool {
	info, err := os.Stat(filepath.Join(root, ControlDirName))
	return err == nil && info.IsDir()
}

// Init creates a new repository at root. The root directory is created if
// absent. Initialization writes one empty root commit so the repository is
// never without a reachable tree, matching the on-disk contract.
func Init(root string) (*Repository, error) {
	controlDir := filepath.Join(root, ControlDirName)
	if IsRepository(root) {
		return nil, fmt.Errorf("init %s: repository already exists", root)
	}
	if err := os.MkdirAll(controlDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create control directory: %w", err)
	}

	objects, err := cas.NewFileCAS(filepath.Join(controlDir, "objects"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	db, err := store.Open(filepath.Join(controlDir, "refs.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open refs database: %w", err)
	}

	repo := &Repository{root: root, objects: objects, db: db}

	// Empty root commit: empty tree, no parents.
	emptyTree, err := object.PutTree(objects, &object.Tree{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to store empty tree: %w", err)
	}
	rootCommit := &object.Commit{
		TreeHash: emptyTree,
		Author:   "savepoint <savepoint@localhost>",
		Time:     time.Now(),
		Message:  "Repository created",
	}
	rootHash, err := object.PutCommit(objects, rootCommit)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to store root commit: %w", err)
	}
	if err := db.PutMeta(store.MetaRootCommit, rootHash.String()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record root commit: %w", err)
	}
	if err := db.PutMeta(store.MetaCreatedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record creation time: %w", err)
	}

	return repo, nil
}

// Open opens an existing repository at root.
func Open(root string) (*Repository, error) {
	if !IsRepository(root) {
		return nil, fmt.Errorf("open %s: %w", root, ErrNotRepository)
	}
	controlDir := filepath.Join(root, ControlDirName)

	objects, err := cas.NewFileCAS(filepath.Join(controlDir, "objects"))
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}
	db, err := store.Open(filepath.Join(controlDir, "refs.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open refs database: %w", err)
	}

	return &Repository{root: root, objects: objects, db: db}, nil
}

// Root returns the repository root directory.
func (r *Repository) Root() string { return r.root }

// Close releases the metadata database.
func (r *Repository) Close() error { return r.db.Close() }

// WorktreePath returns the directory a named worktree occupies.
func (r *Repository) WorktreePath(name string) string {
	return filepath.Join(r.root, name)
}

// hashFromRef decodes a stored ref value. An empty value marks an unborn
// branch and decodes to the zero hash.
func hashFromRef(hex string) (cas.Hash, error) {
	if hex == "" {
		return cas.Hash{}, nil
	}
	return cas.ParseHash(hex)
}

// ---------------------------
// Branch primitives
// ---------------------------

// ListBranches returns every branch name in the repository, across all
// save-game namespaces.
func (r *Repository) ListBranches() ([]string, error) {
	return r.db.ListBranches()
}

// BranchExists reports whether a branch ref exists.
func (r *Repository) BranchExists(name string) (bool, error) {
	return r.db.HasBranch(name)
}

// BranchHead returns the commit a branch points at. The zero hash marks an
// unborn branch that has no commits yet.
func (r *Repository) BranchHead(name string) (cas.Hash, error) {
	hex, err := r.db.GetBranch(name)
	if err != nil {
		return cas.Hash{}, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	return hashFromRef(hex)
}

// CreateBranch creates a new ref pointing at the given commit without
// touching any worktree.
func (r *Repository) CreateBranch(name string, at cas.Hash) error {
	exists, err := r.db.HasBranch(name)
	if err != nil {
		return fmt.Errorf("failed to check branch %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}
	if _, err := object.GetCommit(r.objects, at); err != nil {
		return fmt.Errorf("branch target %s unreadable: %w", at, err)
	}
	return r.db.PutBranch(name, at.String())
}

// DeleteBranch removes a branch ref. Commits stay reachable by hash.
func (r *Repository) DeleteBranch(name string) error {
	return r.db.DeleteBranch(name)
}

// ---------------------------
// Worktree primitives
// ---------------------------

// AddWorktree registers a worktree bound to a fresh branch. The branch is
// created unborn: its first commit will have no parents, so a save game's
// history never reaches outside its own namespace.
func (r *Repository) AddWorktree(name, branch string) error {
	if _, err := r.db.GetWorktree(name); err == nil {
		return fmt.Errorf("%w: %s", ErrWorktreeExists, name)
	}
	exists, err := r.db.HasBranch(branch)
	if err != nil {
		return fmt.Errorf("failed to check branch %s: %w", branch, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrBranchExists, branch)
	}

	if err := os.MkdirAll(r.WorktreePath(name), 0755); err != nil {
		return fmt.Errorf("failed to create worktree directory: %w", err)
	}
	if err := r.db.PutBranch(branch, ""); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return r.db.PutWorktree(name, store.WorktreeState{Branch: branch})
}

// ListWorktrees returns all registered worktree names.
func (r *Repository) ListWorktrees() ([]string, error) {
	return r.db.ListWorktrees()
}

// RemoveWorktree removes the worktree registration. The directory and its
// files are left untouched.
func (r *Repository) RemoveWorktree(name string) error {
	return r.db.DeleteWorktree(name)
}

func (r *Repository) worktreeState(name string) (store.WorktreeState, error) {
	state, err := r.db.GetWorktree(name)
	if err != nil {
		return store.WorktreeState{}, fmt.Errorf("%w: %s", ErrWorktreeNotFound, name)
	}
	return state, nil
}

// CurrentBranch returns the branch a worktree has checked out, or
// detached=true when it points at a raw commit.
func (r *Repository) CurrentBranch(worktree string) (string, bool, error) {
	state, err := r.worktreeState(worktree)
	if err != nil {
		return "", false, err
	}
	return state.Branch, state.Detached, nil
}

// HeadCommit returns the commit a worktree currently has checked out. The
// zero hash means the worktree's branch has no commits yet.
func (r *Repository) HeadCommit(worktree string) (cas.Hash, error) {
	state, err := r.worktreeState(worktree)
	if err != nil {
		return cas.Hash{}, err
	}
	return hashFromRef(state.Head)
}

// ---------------------------
// Commit primitives
// ---------------------------

// CommitInfo resolves a commit's metadata by hash.
func (r *Repository) CommitInfo(hash cas.Hash) (*CommitInfo, error) {
	if hash.IsZero() {
		return nil, ErrNoCommits
	}
	commit, err := object.GetCommit(r.objects, hash)
	if err != nil {
		return nil, err
	}
	return &CommitInfo{
		Hash:    hash,
		Parents: commit.Parents,
		Author:  commit.Author,
		Time:    commit.Time,
		Message: commit.Message,
	}, nil
}

// CreateCommit stages the entire current content of the worktree and
// commits it. The parent is the worktree's current head commit, which after
// a reset may be older than the branch tip; the branch ref then moves to
// the new commit.
func (r *Repository) CreateCommit(worktree, message, author string) (*CommitInfo, error) {
	state, err := r.worktreeState(worktree)
	if err != nil {
		return nil, err
	}

	treeHash, err := r.snapshotTree(r.WorktreePath(worktree))
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot worktree %s: %w", worktree, err)
	}

	head, err := hashFromRef(state.Head)
	if err != nil {
		return nil, fmt.Errorf("corrupt head for worktree %s: %w", worktree, err)
	}

	commit := &object.Commit{
		TreeHash: treeHash,
		Author:   author,
		Time:     time.Now(),
		Message:  message,
	}
	if !head.IsZero() {
		commit.Parents = []cas.Hash{head}
	}

	hash, err := object.PutCommit(r.objects, commit)
	if err != nil {
		return nil, fmt.Errorf("failed to store commit: %w", err)
	}

	if state.Branch != "" && !state.Detached {
		if err := r.db.PutBranch(state.Branch, hash.String()); err != nil {
			return nil, fmt.Errorf("failed to move branch %s: %w", state.Branch, err)
		}
	}
	state.Head = hash.String()
	if err := r.db.PutWorktree(worktree, state); err != nil {
		return nil, fmt.Errorf("failed to update worktree state: %w", err)
	}

	return &CommitInfo{
		Hash:    hash,
		Parents: commit.Parents,
		Author:  commit.Author,
		Time:    commit.Time,
		Message: commit.Message,
	}, nil
}

// ResetToCommit hard-resets the worktree content to the given commit,
// discarding uncommitted differences. The branch association is kept and
// the branch ref is NOT moved: a reset is a working-tree move, not history
// rewriting.
func (r *Repository) ResetToCommit(worktree string, hash cas.Hash) error {
	state, err := r.worktreeState(worktree)
	if err != nil {
		return err
	}
	if err := r.materialize(worktree, hash); err != nil {
		return err
	}
	state.Head = hash.String()
	return r.db.PutWorktree(worktree, state)
}

// CheckoutCommit checks out a raw commit, leaving the worktree detached.
func (r *Repository) CheckoutCommit(worktree string, hash cas.Hash) error {
	state, err := r.worktreeState(worktree)
	if err != nil {
		return err
	}
	if err := r.materialize(worktree, hash); err != nil {
		return err
	}
	state.Branch = ""
	state.Head = hash.String()
	state.Detached = true
	return r.db.PutWorktree(worktree, state)
}

// CheckoutBranch checks out a branch head, replacing the worktree content
// on disk. Uncommitted changes are discarded.
func (r *Repository) CheckoutBranch(worktree, branch string) error {
	state, err := r.worktreeState(worktree)
	if err != nil {
		return err
	}
	head, err := r.BranchHead(branch)
	if err != nil {
		return err
	}
	if err := r.materialize(worktree, head); err != nil {
		return err
	}
	state.Branch = branch
	state.Head = head.String()
	state.Detached = false
	return r.db.PutWorktree(worktree, state)
}
