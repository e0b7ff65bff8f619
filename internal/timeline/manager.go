package timeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/javanhut/savepoint/internal/cas"
	"github.com/javanhut/savepoint/internal/config"
	"github.com/javanhut/savepoint/internal/events"
	"github.com/javanhut/savepoint/internal/paths"
	"github.com/javanhut/savepoint/internal/vcs"
)

// Branch name validation per the engine contract: suffixes are ascii word
// characters plus hyphen, at most 100 characters, and never a name the
// underlying store reserves.
var (
	branchNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	reservedBranches  = map[string]bool{"HEAD": true, "master": true, "main": true}
)

const maxMessageLength = 500

// Manager orchestrates repository lifecycle per game family, timeline
// creation, checkpointing, restoration, branching, and discovery.
//
// Operations perform direct filesystem I/O on the calling goroutine. A
// single mutex serializes them; callers still must not run destructive
// operations while the game is writing to the save directory.
type Manager struct {
	mu sync.Mutex

	cfg   *config.Config
	paths *paths.Service
	bus   events.Emitter
	log   *slog.Logger

	// One adapter per game family for the process lifetime.
	repos map[string]vcs.Adapter
	// family name -> save name -> aggregate
	timelines map[string]map[string]*TimelineTree
}

// NewManager creates a timeline manager. The event bus may be nil when no
// one is listening.
func NewManager(cfg *config.Config, pathSvc *paths.Service, bus events.Emitter) *Manager {
	return &Manager{
		cfg:       cfg,
		paths:     pathSvc,
		bus:       bus,
		log:       slog.Default().With("component", "timeline"),
		repos:     make(map[string]vcs.Adapter),
		timelines: make(map[string]map[string]*TimelineTree),
	}
}

func (m *Manager) emit(eventType events.Type, payload map[string]any) {
	if m.bus == nil {
		return
	}
	m.bus.Emit(events.Event{Type: eventType, Payload: payload})
}

// Initialize opens or creates the repository for a game family and
// reconstructs a TimelineTree for every worktree registered under it.
// A family without a saves directory is recorded as an empty namespace.
// Per-worktree reconstruction failures are logged, not fatal.
func (m *Manager) Initialize(family paths.GameFamily) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	savesDir := m.paths.SavesDir(family)
	if _, err := os.Stat(savesDir); os.IsNotExist(err) {
		m.log.Info("no saves directory for family", "family", family.Name, "dir", savesDir)
		m.timelines[family.Name] = make(map[string]*TimelineTree)
		return nil
	}

	// Re-initializing a family reuses its open adapter: the refs database
	// holds a file lock, so a second open would block.
	repo, ok := m.repos[family.Name]
	if !ok {
		var err error
		if vcs.IsRepository(savesDir) {
			repo, err = vcs.Open(savesDir)
		} else {
			repo, err = vcs.Init(savesDir)
		}
		if err != nil {
			return newError(KindRepository, "initialize", "", err)
		}
		m.repos[family.Name] = repo
	}
	m.timelines[family.Name] = make(map[string]*TimelineTree)

	worktrees, err := repo.ListWorktrees()
	if err != nil {
		return newError(KindRepository, "initialize", "", err)
	}
	for _, name := range worktrees {
		if _, err := os.Stat(filepath.Join(savesDir, name)); err != nil {
			m.log.Warn("worktree directory missing, skipping", "family", family.Name, "save", name)
			continue
		}
		tree, err := m.reconstruct(repo, name, family)
		if err != nil {
			m.log.Warn("failed to reconstruct timeline", "family", family.Name, "save", name, "error", err)
			continue
		}
		m.timelines[family.Name][tree.Name] = tree
	}

	m.log.Info("family initialized", "family", family.Name, "timelines", len(m.timelines[family.Name]))
	return nil
}

// FromWorktree reconstructs a TimelineTree by reading existing repository
// state. It is idempotent and side-effect-free except for one self-heal: a
// detached worktree is checked out back onto its main branch.
func (m *Manager) FromWorktree(path string, family paths.GameFamily) (*TimelineTree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	root := filepath.Dir(path)
	if repo, ok := m.repos[family.Name]; ok && repo.Root() == root {
		return m.reconstruct(repo, filepath.Base(path), family)
	}

	repo, err := vcs.Open(root)
	if err != nil {
		return nil, newError(KindRepository, "from_worktree", filepath.Base(path), err)
	}
	defer repo.Close()
	return m.reconstruct(repo, filepath.Base(path), family)
}

// reconstruct builds the aggregate for one worktree of an open repository.
func (m *Manager) reconstruct(repo vcs.Adapter, worktree string, family paths.GameFamily) (*TimelineTree, error) {
	const op = "from_worktree"
	saveName := worktree
	mainName := MainBranchName(saveName)

	allBranches, err := repo.ListBranches()
	if err != nil {
		return nil, newError(KindRepository, op, saveName, err)
	}
	hasMain := false
	for _, name := range allBranches {
		if name == mainName {
			hasMain = true
			break
		}
	}
	if !hasMain {
		// The save data is considered uninitialized or corrupt.
		return nil, errorf(KindValidation, op, saveName, "main branch %q not found", mainName)
	}

	current, detached, err := repo.CurrentBranch(worktree)
	if err != nil {
		return nil, newError(KindRepository, op, saveName, err)
	}
	prefix := Slug(saveName) + "-"
	if detached || current == "" || !strings.HasPrefix(current, prefix) {
		// Self-heal a detached or foreign checkout back onto main.
		m.log.Warn("worktree detached, checking out main branch", "save", saveName, "branch", mainName)
		if err := repo.CheckoutBranch(worktree, mainName); err != nil {
			return nil, newError(KindRepository, op, saveName, err)
		}
		current = mainName
	}

	head, err := repo.HeadCommit(worktree)
	if err != nil {
		return nil, newError(KindRepository, op, saveName, err)
	}
	if head.IsZero() {
		return nil, errorf(KindRepository, op, saveName, "worktree has no commits")
	}
	headInfo, err := repo.CommitInfo(head)
	if err != nil {
		return nil, newError(KindCheckpoint, op, saveName, err)
	}

	branches := make(map[string]*Branch)
	for _, name := range allBranches {
		// Branches of other save games sharing the repository are never
		// loaded into this aggregate.
		if name != mainName && !strings.HasPrefix(name, prefix) {
			continue
		}
		branchHead, err := repo.BranchHead(name)
		if err != nil {
			return nil, newError(KindRepository, op, saveName, err)
		}
		checkpoints, err := m.walkAncestry(repo, branchHead, 0)
		if err != nil {
			return nil, newError(KindCheckpoint, op, saveName, err)
		}
		index := make(map[string]*Checkpoint, len(checkpoints))
		for _, cp := range checkpoints {
			index[cp.Hash] = cp
		}
		branches[name] = &Branch{
			Name:        name,
			Checkpoints: index,
			Head:        branchHead.String(),
			IsMain:      name == mainName,
			CreatedAt:   time.Now(),
		}
	}

	now := time.Now()
	tree := &TimelineTree{
		Name:              saveName,
		Family:            family,
		SavePath:          filepath.Join(repo.Root(), worktree),
		WorktreePath:      filepath.Join(repo.Root(), worktree),
		RepoPath:          repo.Root(),
		MainBranch:        branches[mainName],
		CurrentBranch:     branches[current],
		CurrentCheckpoint: checkpointFromInfo(headInfo),
		Branches:          branches,
		Status:            StatusActive,
		CreatedAt:         now,
		LastUpdated:       now,
	}
	return tree, nil
}

// walkAncestry materializes checkpoints newest-first from a head commit.
// limit <= 0 walks the full chain.
func (m *Manager) walkAncestry(repo vcs.Adapter, head cas.Hash, limit int) ([]*Checkpoint, error) {
	var result []*Checkpoint
	for !head.IsZero() {
		if limit > 0 && len(result) >= limit {
			break
		}
		info, err := repo.CommitInfo(head)
		if err != nil {
			return nil, fmt.Errorf("failed to read commit %s: %w", head, err)
		}
		result = append(result, checkpointFromInfo(info))
		if len(info.Parents) == 0 {
			break
		}
		head = info.Parents[0]
	}
	return result, nil
}

// DiscoverSaveGames lists plain save subdirectories for a family,
// independent of whether a timeline exists for them.
func (m *Manager) DiscoverSaveGames(family paths.GameFamily) ([]SaveGame, error) {
	savesDir := m.paths.SavesDir(family)
	entries, err := os.ReadDir(savesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newError(KindFile, "discover_save_games", "", err)
	}

	var saves []SaveGame
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == vcs.ControlDirName {
			continue
		}
		// Leftover relocation directories are not save games.
		if strings.HasSuffix(entry.Name(), ".staging") {
			continue
		}
		saves = append(saves, SaveGame{
			Name:   entry.Name(),
			Family: family,
			Path:   filepath.Join(savesDir, entry.Name()),
		})
	}
	return saves, nil
}

// GetTimeline returns the aggregate for a save game, if one is loaded.
func (m *Manager) GetTimeline(family paths.GameFamily, saveName string) (*TimelineTree, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tree, ok := m.timelines[family.Name][saveName]
	return tree, ok
}

// GetTimelinesForGame returns every loaded timeline of a family.
func (m *Manager) GetTimelinesForGame(family paths.GameFamily) []*TimelineTree {
	m.mu.Lock()
	defer m.mu.Unlock()
	trees := make([]*TimelineTree, 0, len(m.timelines[family.Name]))
	for _, tree := range m.timelines[family.Name] {
		trees = append(trees, tree)
	}
	return trees
}

func (m *Manager) repoFor(family paths.GameFamily, op, save string) (vcs.Adapter, error) {
	repo, ok := m.repos[family.Name]
	if !ok {
		return nil, errorf(KindRepository, op, save, "repository not initialized for family %q", family.Name)
	}
	return repo, nil
}

func validateSaveGame(save SaveGame, op string) error {
	if strings.TrimSpace(save.Name) == "" {
		return errorf(KindValidation, op, save.Name, "save game name is empty")
	}
	if save.Path == "" {
		return errorf(KindValidation, op, save.Name, "save game path is empty")
	}
	if Slug(save.Name) == "" {
		return errorf(KindValidation, op, save.Name, "save game name %q has no usable characters", save.Name)
	}
	return nil
}

func validateMessage(message, op, save string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", errorf(KindValidation, op, save, "checkpoint message is empty")
	}
	if utf8.RuneCountInString(trimmed) > maxMessageLength {
		return "", errorf(KindValidation, op, save, "checkpoint message exceeds %d characters", maxMessageLength)
	}
	return trimmed, nil
}

// CreateTimeline creates a fresh worktree, main branch, and initial commit
// for a save game. The save directory's current content becomes the first
// checkpoint; an empty directory yields an empty initial commit.
func (m *Manager) CreateTimeline(save SaveGame) (*TimelineTree, error) {
	const op = "create_timeline"
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateSaveGame(save, op); err != nil {
		return nil, err
	}
	repo, err := m.repoFor(save.Family, op, save.Name)
	if err != nil {
		return nil, err
	}
	if _, exists := m.timelines[save.Family.Name][save.Name]; exists {
		return nil, errorf(KindValidation, op, save.Name, "timeline already exists")
	}

	worktree := filepath.Base(save.Path)
	mainName := MainBranchName(save.Name)

	// Worktree creation needs an empty or absent target: relocate any
	// existing content aside and move it back once the worktree exists.
	staging, err := m.relocateAside(save.Path)
	if err != nil {
		return nil, newError(KindFile, op, save.Name, err)
	}

	if err := repo.AddWorktree(worktree, mainName); err != nil {
		if staging != "" {
			m.restoreStaged(staging, save.Path)
		}
		return nil, newError(KindRepository, op, save.Name, err)
	}
	if staging != "" {
		if err := m.moveContentBack(staging, save.Path); err != nil {
			return nil, newError(KindFile, op, save.Name, err)
		}
	}

	info, err := repo.CreateCommit(worktree, fmt.Sprintf("Initial commit for %s", save.Name), m.cfg.Author())
	if err != nil {
		return nil, newError(KindRepository, op, save.Name, err)
	}

	cp := checkpointFromInfo(info)
	now := time.Now()
	main := &Branch{
		Name:        mainName,
		Checkpoints: map[string]*Checkpoint{cp.Hash: cp},
		Head:        cp.Hash,
		IsMain:      true,
		CreatedAt:   now,
	}
	tree := &TimelineTree{
		Name:              save.Name,
		Family:            save.Family,
		SavePath:          save.Path,
		WorktreePath:      filepath.Join(repo.Root(), worktree),
		RepoPath:          repo.Root(),
		MainBranch:        main,
		CurrentBranch:     main,
		CurrentCheckpoint: cp,
		Branches:          map[string]*Branch{mainName: main},
		Status:            StatusActive,
		CreatedAt:         now,
		LastUpdated:       now,
	}

	if m.timelines[save.Family.Name] == nil {
		m.timelines[save.Family.Name] = make(map[string]*TimelineTree)
	}
	m.timelines[save.Family.Name][save.Name] = tree

	m.log.Info("timeline created", "save", save.Name, "branch", mainName, "checkpoint", cp.Hash)
	m.emit(events.TimelineCreated, map[string]any{
		"save":   save.Name,
		"family": save.Family.Name,
		"branch": mainName,
	})
	return tree, nil
}

// relocateAside moves a non-empty save directory to a staging sibling and
// returns the staging path, or "" when there was nothing to relocate.
func (m *Manager) relocateAside(savePath string) (string, error) {
	entries, err := os.ReadDir(savePath)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read save directory: %w", err)
	}
	if len(entries) == 0 {
		return "", nil
	}
	staging := savePath + ".staging"
	if err := os.Rename(savePath, staging); err != nil {
		return "", fmt.Errorf("failed to relocate save content: %w", err)
	}
	return staging, nil
}

// restoreStaged undoes a relocation after a failed worktree creation so no
// save content is left stranded under the staging name.
func (m *Manager) restoreStaged(staging, savePath string) {
	os.Remove(savePath)
	if err := os.Rename(staging, savePath); err != nil {
		m.log.Warn("failed to restore relocated save content",
			"staging", staging, "save", savePath, "error", err)
	}
}

// moveContentBack moves every entry of the staging directory into the
// worktree and removes the staging directory.
func (m *Manager) moveContentBack(staging, savePath string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, entry := range entries {
		from := filepath.Join(staging, entry.Name())
		to := filepath.Join(savePath, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to move %s back: %w", entry.Name(), err)
		}
	}
	return os.Remove(staging)
}

// CreateCheckpoint stages the full current worktree content and commits it
// on the save's current branch. Never a no-op: identical content with a
// new message still yields a new checkpoint whose parent is the previous
// head.
func (m *Manager) CreateCheckpoint(save SaveGame, message string) (*Checkpoint, error) {
	const op = "create_checkpoint"
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateSaveGame(save, op); err != nil {
		return nil, err
	}
	trimmed, err := validateMessage(message, op, save.Name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(save.Path); err != nil {
		return nil, errorf(KindFile, op, save.Name, "save directory inaccessible: %v", err)
	}

	tree, ok := m.timelines[save.Family.Name][save.Name]
	if !ok {
		return nil, errorf(KindCheckpoint, op, save.Name, "no timeline found")
	}
	repo, err := m.repoFor(save.Family, op, save.Name)
	if err != nil {
		return nil, err
	}

	info, err := repo.CreateCommit(filepath.Base(tree.WorktreePath), trimmed, m.cfg.Author())
	if err != nil {
		return nil, newError(KindRepository, op, save.Name, err)
	}

	cp := checkpointFromInfo(info)
	tree.CurrentBranch.Checkpoints[cp.Hash] = cp
	tree.CurrentBranch.Head = cp.Hash
	tree.CurrentCheckpoint = cp
	tree.LastUpdated = time.Now()

	m.log.Info("checkpoint created", "save", save.Name, "checkpoint", cp.Hash, "message", trimmed)
	m.emit(events.CheckpointCreated, map[string]any{
		"save":       save.Name,
		"family":     save.Family.Name,
		"checkpoint": cp.Hash,
		"message":    trimmed,
	})
	return cp, nil
}

// RestoreCheckpoint hard-resets the worktree to the given checkpoint,
// discarding all uncommitted differences. Destructive and irreversible for
// anything not already checkpointed. A restore is a working-tree move:
// only the current checkpoint changes, branch heads are never rewritten.
func (m *Manager) RestoreCheckpoint(save SaveGame, checkpoint *Checkpoint) error {
	const op = "restore_checkpoint"
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateSaveGame(save, op); err != nil {
		return err
	}
	if checkpoint == nil {
		return errorf(KindValidation, op, save.Name, "checkpoint is nil")
	}
	tree, ok := m.timelines[save.Family.Name][save.Name]
	if !ok {
		return errorf(KindCheckpoint, op, save.Name, "no timeline found")
	}
	repo, err := m.repoFor(save.Family, op, save.Name)
	if err != nil {
		return err
	}

	hash, err := cas.ParseHash(checkpoint.Hash)
	if err != nil {
		return errorf(KindValidation, op, save.Name, "malformed checkpoint hash %q", checkpoint.Hash)
	}
	info, err := repo.CommitInfo(hash)
	if err != nil {
		return newError(KindCheckpoint, op, save.Name, err)
	}

	m.log.Warn("restoring checkpoint, uncommitted changes will be discarded",
		"save", save.Name, "checkpoint", checkpoint.Hash)

	if err := repo.ResetToCommit(filepath.Base(tree.WorktreePath), hash); err != nil {
		return newError(KindRepository, op, save.Name, err)
	}

	tree.CurrentCheckpoint = checkpointFromInfo(info)
	tree.LastUpdated = time.Now()

	m.emit(events.CheckpointRestored, map[string]any{
		"save":       save.Name,
		"family":     save.Family.Name,
		"checkpoint": checkpoint.Hash,
	})
	return nil
}

// CreateBranch creates a new namespaced branch at a source checkpoint
// without checking it out. With a nil source the current checkpoint is
// used. The new Branch is seeded with only the source checkpoint; full
// ancestry is re-derived on demand.
func (m *Manager) CreateBranch(save SaveGame, name string, from *Checkpoint) (*Branch, error) {
	const op = "create_branch"
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateSaveGame(save, op); err != nil {
		return nil, err
	}
	if !branchNamePattern.MatchString(name) {
		return nil, errorf(KindValidation, op, save.Name, "branch name %q contains invalid characters", name)
	}
	if len(name) > 100 {
		return nil, errorf(KindValidation, op, save.Name, "branch name exceeds 100 characters")
	}
	if reservedBranches[name] {
		return nil, errorf(KindValidation, op, save.Name, "branch name %q is reserved", name)
	}

	tree, ok := m.timelines[save.Family.Name][save.Name]
	if !ok {
		return nil, errorf(KindBranch, op, save.Name, "no timeline found")
	}
	repo, err := m.repoFor(save.Family, op, save.Name)
	if err != nil {
		return nil, err
	}

	ref := BranchRef(save.Name, name)
	if _, exists := tree.Branches[ref]; exists {
		return nil, errorf(KindBranch, op, save.Name, "branch %q already exists", name)
	}
	if exists, err := repo.BranchExists(ref); err != nil {
		return nil, newError(KindRepository, op, save.Name, err)
	} else if exists {
		return nil, errorf(KindBranch, op, save.Name, "branch %q already exists", name)
	}

	source := from
	if source == nil {
		source = tree.CurrentCheckpoint
	}
	if source == nil {
		return nil, errorf(KindBranch, op, save.Name, "no source commit available")
	}
	hash, err := cas.ParseHash(source.Hash)
	if err != nil {
		return nil, errorf(KindValidation, op, save.Name, "malformed source checkpoint hash %q", source.Hash)
	}
	info, err := repo.CommitInfo(hash)
	if err != nil {
		return nil, newError(KindCheckpoint, op, save.Name, err)
	}

	if err := repo.CreateBranch(ref, hash); err != nil {
		return nil, newError(KindRepository, op, save.Name, err)
	}

	cp := checkpointFromInfo(info)
	branch := &Branch{
		Name:        ref,
		Checkpoints: map[string]*Checkpoint{cp.Hash: cp},
		Head:        cp.Hash,
		CreatedAt:   time.Now(),
	}
	tree.Branches[ref] = branch
	tree.LastUpdated = time.Now()

	m.log.Info("branch created", "save", save.Name, "branch", ref, "at", cp.Hash)
	m.emit(events.BranchCreated, map[string]any{
		"save":       save.Name,
		"family":     save.Family.Name,
		"branch":     ref,
		"checkpoint": cp.Hash,
	})
	return branch, nil
}

// resolveBranch accepts either a save-local suffix or a full namespaced
// branch name and returns the branch if loaded.
func resolveBranch(tree *TimelineTree, name string) (*Branch, bool) {
	if branch, ok := tree.Branches[name]; ok {
		return branch, true
	}
	branch, ok := tree.Branches[BranchRef(tree.Name, name)]
	return branch, ok
}

// SwitchBranch checks out another branch of the save game, replacing the
// worktree content on disk. Destructive to uncommitted changes, same as a
// restore. A missing branch fails before any mutation.
func (m *Manager) SwitchBranch(save SaveGame, name string) error {
	const op = "switch_branch"
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateSaveGame(save, op); err != nil {
		return err
	}
	tree, ok := m.timelines[save.Family.Name][save.Name]
	if !ok {
		return errorf(KindBranch, op, save.Name, "no timeline found")
	}
	repo, err := m.repoFor(save.Family, op, save.Name)
	if err != nil {
		return err
	}

	branch, ok := resolveBranch(tree, name)
	if !ok {
		return errorf(KindBranch, op, save.Name, "branch %q not found", name)
	}

	m.log.Warn("switching branch, uncommitted changes will be discarded",
		"save", save.Name, "branch", branch.Name)

	worktree := filepath.Base(tree.WorktreePath)
	if err := repo.CheckoutBranch(worktree, branch.Name); err != nil {
		return newError(KindRepository, op, save.Name, err)
	}

	head, err := repo.HeadCommit(worktree)
	if err != nil {
		return newError(KindRepository, op, save.Name, err)
	}
	info, err := repo.CommitInfo(head)
	if err != nil {
		return newError(KindCheckpoint, op, save.Name, err)
	}

	cp := checkpointFromInfo(info)
	branch.Checkpoints[cp.Hash] = cp
	branch.Head = cp.Hash
	tree.CurrentBranch = branch
	tree.CurrentCheckpoint = cp
	tree.LastUpdated = time.Now()

	m.emit(events.BranchSwitched, map[string]any{
		"save":   save.Name,
		"family": save.Family.Name,
		"branch": branch.Name,
	})
	return nil
}

// GetCommitHistory walks a branch's ancestry newest-first, bounded by
// limit (limit <= 0 means unbounded). History is always re-derived from
// the adapter, never served from the in-memory branch index. Failures
// degrade to an empty slice with a log line: history backs best-effort
// display only.
func (m *Manager) GetCommitHistory(save SaveGame, branchName string, limit int) []*Checkpoint {
	const op = "get_commit_history"
	m.mu.Lock()
	defer m.mu.Unlock()

	tree, ok := m.timelines[save.Family.Name][save.Name]
	if !ok {
		m.log.Warn("no timeline for history query", "save", save.Name)
		return nil
	}
	repo, ok := m.repos[save.Family.Name]
	if !ok {
		m.log.Warn("no repository for history query", "save", save.Name)
		return nil
	}

	branch := tree.CurrentBranch
	if branchName != "" {
		if resolved, ok := resolveBranch(tree, branchName); ok {
			branch = resolved
		} else {
			m.log.Warn("unknown branch for history query", "save", save.Name, "branch", branchName)
			return nil
		}
	}

	head, err := repo.BranchHead(branch.Name)
	if err != nil {
		m.log.Warn("failed to resolve branch head", "save", save.Name, "branch", branch.Name, "error", err)
		return nil
	}
	checkpoints, err := m.walkAncestry(repo, head, limit)
	if err != nil {
		m.log.Warn("failed to walk history", "save", save.Name, "branch", branch.Name, "error", err)
		return nil
	}
	return checkpoints
}

// GetRepositoryStatus returns the worktree's pending changes. Read-only;
// failures degrade to nil with a log line.
func (m *Manager) GetRepositoryStatus(save SaveGame) *vcs.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked(save)
}

func (m *Manager) statusLocked(save SaveGame) *vcs.Status {
	tree, ok := m.timelines[save.Family.Name][save.Name]
	if !ok {
		m.log.Warn("no timeline for status query", "save", save.Name)
		return nil
	}
	repo, ok := m.repos[save.Family.Name]
	if !ok {
		return nil
	}
	status, err := repo.Status(filepath.Base(tree.WorktreePath))
	if err != nil {
		m.log.Warn("failed to read repository status", "save", save.Name, "error", err)
		return nil
	}
	return status
}

// HasUncommittedChanges reports whether the worktree differs from its
// checked-out checkpoint. Failures degrade to false.
func (m *Manager) HasUncommittedChanges(save SaveGame) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := m.statusLocked(save)
	return status != nil && !status.Clean()
}

// DeleteTimeline removes the save game's branch refs and worktree
// registration and forgets the aggregate. The save directory and all
// commit objects are left in place: checkpoints stay reachable by hash.
func (m *Manager) DeleteTimeline(save SaveGame) error {
	const op = "delete_timeline"
	m.mu.Lock()
	defer m.mu.Unlock()

	tree, ok := m.timelines[save.Family.Name][save.Name]
	if !ok {
		return errorf(KindCheckpoint, op, save.Name, "no timeline found")
	}
	repo, err := m.repoFor(save.Family, op, save.Name)
	if err != nil {
		return err
	}

	for name := range tree.Branches {
		if err := repo.DeleteBranch(name); err != nil {
			return newError(KindRepository, op, save.Name, err)
		}
	}
	if err := repo.RemoveWorktree(filepath.Base(tree.WorktreePath)); err != nil {
		return newError(KindRepository, op, save.Name, err)
	}

	delete(m.timelines[save.Family.Name], save.Name)
	tree.Status = StatusInactive

	m.log.Info("timeline deleted", "save", save.Name)
	m.emit(events.TimelineDeleted, map[string]any{
		"save":   save.Name,
		"family": save.Family.Name,
	})
	return nil
}

// Shutdown releases every repository and clears in-memory state. Commits
// already on disk need no further flushing.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for family, repo := range m.repos {
		if err := repo.Close(); err != nil {
			m.log.Warn("failed to close repository", "family", family, "error", err)
		}
	}
	m.repos = make(map[string]vcs.Adapter)
	m.timelines = make(map[string]map[string]*TimelineTree)
}
