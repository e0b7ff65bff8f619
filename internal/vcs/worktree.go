package vcs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/javanhut/savepoint/internal/cas"
	"github.com/javanhut/savepoint/internal/object"
)

// Worktree scanning and materialization. A worktree is the save game's
// live directory: snapshotTree turns its full content into tree/blob
// objects, materialize does the reverse, syncing the directory to a
// committed tree and deleting everything else.

// snapshotTree stores the directory's content as blob and tree objects and
// returns the root tree hash. Empty directories are preserved as empty
// subtrees. Names the tree encoding cannot represent are rejected before
// anything is stored, so no commit can be created that cannot be decoded.
func (r *Repository) snapshotTree(dir string) (cas.Hash, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return cas.Hash{}, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	tree := &object.Tree{}
	for _, de := range entries {
		if de.Name() == ControlDirName {
			continue
		}
		if strings.ContainsRune(de.Name(), '\n') {
			return cas.Hash{}, fmt.Errorf("%w: %q", ErrInvalidName, de.Name())
		}
		path := filepath.Join(dir, de.Name())

		if de.IsDir() {
			subHash, err := r.snapshotTree(path)
			if err != nil {
				return cas.Hash{}, err
			}
			tree.Entries = append(tree.Entries, object.Entry{
				Name: de.Name(),
				Hash: subHash,
				Kind: object.TreeEntry,
			})
			continue
		}

		info, err := de.Info()
		if err != nil {
			return cas.Hash{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return cas.Hash{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		blobHash, err := object.PutBlob(r.objects, content)
		if err != nil {
			return cas.Hash{}, err
		}
		tree.Entries = append(tree.Entries, object.Entry{
			Mode: uint32(info.Mode().Perm()),
			Name: de.Name(),
			Hash: blobHash,
			Kind: object.BlobEntry,
		})
	}

	return object.PutTree(r.objects, tree)
}

// collectTree walks a stored tree, filling files (relative path -> entry)
// and dirs (relative path of every directory, including empty ones).
func (r *Repository) collectTree(treeHash cas.Hash, prefix string, files map[string]object.Entry, dirs map[string]bool) error {
	tree, err := object.GetTree(r.objects, treeHash)
	if err != nil {
		return err
	}

	for _, entry := range tree.Entries {
		rel := entry.Name
		if prefix != "" {
			rel = prefix + string(filepath.Separator) + entry.Name
		}
		switch entry.Kind {
		case object.BlobEntry:
			files[rel] = entry
		case object.TreeEntry:
			dirs[rel] = true
			if err := r.collectTree(entry.Hash, rel, files, dirs); err != nil {
				return err
			}
		}
	}
	return nil
}

// commitManifest resolves the file manifest of a commit. The zero hash
// stands for an unborn branch and yields an empty manifest.
func (r *Repository) commitManifest(hash cas.Hash) (map[string]object.Entry, map[string]bool, error) {
	files := make(map[string]object.Entry)
	dirs := make(map[string]bool)
	if hash.IsZero() {
		return files, dirs, nil
	}

	commit, err := object.GetCommit(r.objects, hash)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	if err := r.collectTree(commit.TreeHash, "", files, dirs); err != nil {
		return nil, nil, fmt.Errorf("failed to read tree of commit %s: %w", hash, err)
	}
	return files, dirs, nil
}

// scanFiles hashes every file currently in the worktree directory.
func (r *Repository) scanFiles(dir string) (map[string]cas.Hash, error) {
	found := make(map[string]cas.Hash)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ControlDirName {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rel, err)
		}
		found[rel] = object.HashBlob(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// materialize syncs the worktree directory to the given commit's tree:
// target files are written, extraneous files removed, and directories left
// empty by removals pruned.
func (r *Repository) materialize(worktree string, hash cas.Hash) error {
	wtPath := r.WorktreePath(worktree)
	if err := os.MkdirAll(wtPath, 0755); err != nil {
		return fmt.Errorf("failed to create worktree directory: %w", err)
	}

	files, dirs, err := r.commitManifest(hash)
	if err != nil {
		return err
	}

	onDisk, err := r.scanFiles(wtPath)
	if err != nil {
		return fmt.Errorf("failed to scan worktree %s: %w", worktree, err)
	}

	// Remove files not present in the target tree.
	for rel := range onDisk {
		if _, keep := files[rel]; keep {
			continue
		}
		full := filepath.Join(wtPath, rel)
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", rel, err)
		}
		r.pruneEmptyDirs(filepath.Dir(full), wtPath, dirs)
	}

	// Write files whose content differs or is missing.
	for rel, entry := range files {
		if diskHash, ok := onDisk[rel]; ok && diskHash == entry.Hash {
			continue
		}
		blob, err := object.GetBlob(r.objects, entry.Hash)
		if err != nil {
			return fmt.Errorf("failed to load content for %s: %w", rel, err)
		}
		full := filepath.Join(wtPath, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		mode := os.FileMode(entry.Mode)
		if mode == 0 {
			mode = 0644
		}
		if err := os.WriteFile(full, blob.Content, mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}

	// Recreate empty directories the tree records.
	for rel := range dirs {
		if err := os.MkdirAll(filepath.Join(wtPath, rel), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", rel, err)
		}
	}

	return nil
}

// pruneEmptyDirs removes directories left empty by a file removal, walking
// up until the worktree root or a directory the target tree still wants.
func (r *Repository) pruneEmptyDirs(dir, wtPath string, keep map[string]bool) {
	for dir != wtPath && dir != "." {
		rel, err := filepath.Rel(wtPath, dir)
		if err != nil || keep[rel] {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// Status compares the worktree's current content against its checked-out
// commit. With an unborn head everything on disk reports as added.
func (r *Repository) Status(worktree string) (*Status, error) {
	state, err := r.worktreeState(worktree)
	if err != nil {
		return nil, err
	}
	head, err := hashFromRef(state.Head)
	if err != nil {
		return nil, fmt.Errorf("corrupt head for worktree %s: %w", worktree, err)
	}

	committed, _, err := r.commitManifest(head)
	if err != nil {
		return nil, err
	}
	onDisk, err := r.scanFiles(r.WorktreePath(worktree))
	if err != nil {
		return nil, fmt.Errorf("failed to scan worktree %s: %w", worktree, err)
	}

	status := &Status{}
	for rel, diskHash := range onDisk {
		entry, ok := committed[rel]
		switch {
		case !ok:
			status.Added = append(status.Added, rel)
		case entry.Hash != diskHash:
			status.Modified = append(status.Modified, rel)
		}
	}
	for rel := range committed {
		if _, ok := onDisk[rel]; !ok {
			status.Removed = append(status.Removed, rel)
		}
	}

	sort.Strings(status.Added)
	sort.Strings(status.Modified)
	sort.Strings(status.Removed)
	return status, nil
}
