// Package vcs implements the version-control adapter for save-game
// repositories: a content-addressed commit/ref store where every save
// game's directory is a live worktree of the shared per-family repository.
//
// One Repository instance is bound to one repository root. Worktree-scoped
// operations are keyed by worktree name (the save game's directory name
// under the root). A commit always stages the entire current content of the
// worktree; there is no partial staging area.
package vcs

import (
	"errors"
	"time"

	"github.com/javanhut/savepoint/internal/cas"
)

// ControlDirName is the repository control directory under the root.
const ControlDirName = ".savepoint"

// Sentinel errors for callers that branch on category.
var (
	ErrNotRepository    = errors.New("not a savepoint repository")
	ErrBranchExists     = errors.New("branch already exists")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrWorktreeExists   = errors.New("worktree already exists")
	ErrWorktreeNotFound = errors.New("worktree not found")
	ErrNoCommits        = errors.New("no commits")
	ErrInvalidName      = errors.New("invalid file name")
)

// CommitInfo is the resolved metadata of a single commit.
type CommitInfo struct {
	Hash    cas.Hash
	Parents []cas.Hash
	Author  string
	Time    time.Time
	Message string
}

// Status describes how a worktree differs from its checked-out commit.
type Status struct {
	Added    []string // Files on disk but not in the commit
	Modified []string // Files whose content differs
	Removed  []string // Files in the commit but gone from disk
}

// Clean reports whether the worktree matches its commit exactly.
func (s *Status) Clean() bool {
	return len(s.Added) == 0 && len(s.Modified) == 0 && len(s.Removed) == 0
}

// Adapter is the narrow contract the timeline engine depends on. One
// adapter is bound to one repository; worktree-scoped calls name the
// worktree they target.
type Adapter interface {
	// Read-only primitives.
	CurrentBranch(worktree string) (name string, detached bool, err error)
	ListBranches() ([]string, error)
	BranchExists(name string) (bool, error)
	BranchHead(name string) (cas.Hash, error)
	HeadCommit(worktree string) (cas.Hash, error)
	CommitInfo(hash cas.Hash) (*CommitInfo, error)
	Status(worktree string) (*Status, error)

	// Mutating primitives. CreateCommit stages the full worktree content.
	CreateCommit(worktree, message, author string) (*CommitInfo, error)
	ResetToCommit(worktree string, hash cas.Hash) error
	CheckoutCommit(worktree string, hash cas.Hash) error
	CheckoutBranch(worktree, branch string) error
	CreateBranch(name string, at cas.Hash) error
	DeleteBranch(name string) error

	// Worktree lifecycle.
	AddWorktree(name, branch string) error
	ListWorktrees() ([]string, error)
	RemoveWorktree(name string) error

	Root() string
	Close() error
}
