// Package timeline implements the save-game timeline engine: the
// checkpoint/branch data model, the per-save-game TimelineTree aggregate,
// and the Manager that orchestrates repositories, worktrees, and events.
package timeline

import (
	"strings"
	"time"

	"github.com/javanhut/savepoint/internal/paths"
	"github.com/javanhut/savepoint/internal/vcs"
)

// Status describes the lifecycle state of a TimelineTree.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusInactive     Status = "INACTIVE"
	StatusError        Status = "ERROR"
	StatusInitializing Status = "INITIALIZING"
)

// SaveGame identifies one save directory. Identity is external; the
// timeline engine does not own it.
type SaveGame struct {
	Name   string
	Family paths.GameFamily
	Path   string
}

// Checkpoint is an immutable snapshot record. Created once, never mutated.
type Checkpoint struct {
	Hash         string
	Timestamp    time.Time
	Message      string
	Author       string
	ParentHashes []string
}

// Branch is a named mutable pointer over a chain of checkpoints.
//
// Checkpoints is a partial index, not a guaranteed-complete one: branches
// created from a source checkpoint are seeded with only that checkpoint,
// and history queries always re-derive ancestry from the adapter.
type Branch struct {
	Name        string
	Checkpoints map[string]*Checkpoint
	Head        string
	IsMain      bool
	CreatedAt   time.Time
}

// TimelineTree is the aggregate for one save game: its branches, current
// position, and status.
type TimelineTree struct {
	Name              string
	Family            paths.GameFamily
	SavePath          string
	WorktreePath      string
	RepoPath          string
	MainBranch        *Branch
	CurrentBranch     *Branch
	CurrentCheckpoint *Checkpoint
	Branches          map[string]*Branch
	Status            Status
	CreatedAt         time.Time
	LastUpdated       time.Time
}

// Slug normalizes a save name for use in branch names: lowercase, spaces
// become hyphens, anything outside [a-z0-9_-] is dropped.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// MainBranchName returns the reserved primary branch name for a save.
func MainBranchName(saveName string) string {
	return Slug(saveName) + "-main"
}

// BranchRef returns the namespaced branch name for a save-local suffix.
func BranchRef(saveName, suffix string) string {
	return Slug(saveName) + "-" + suffix
}

// checkpointFromInfo converts adapter commit metadata into the model form.
func checkpointFromInfo(info *vcs.CommitInfo) *Checkpoint {
	parents := make([]string, 0, len(info.Parents))
	for _, p := range info.Parents {
		parents = append(parents, p.String())
	}
	return &Checkpoint{
		Hash:         info.Hash.String(),
		Timestamp:    info.Time,
		Message:      info.Message,
		Author:       info.Author,
		ParentHashes: parents,
	}
}
