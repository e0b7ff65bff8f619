// Package object implements the repository object model: blobs for file
// content, trees for directory snapshots, and commits for checkpoints.
//
// All three kinds use a canonical byte encoding that is hashed with BLAKE3
// before storage, so object identity is content identity:
// - Blob: "blob <size>\x00" + content
// - Tree: one line per entry, entries sorted by name
// - Commit: header lines (tree, parent, author), blank line, message
package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/javanhut/savepoint/internal/cas"
)

// EntryKind distinguishes tree entry types.
type EntryKind uint8

const (
	BlobEntry EntryKind = iota + 1
	TreeEntry
)

// Blob holds raw file content.
type Blob struct {
	Size    int
	Content []byte
}

// Entry is a single named member of a tree.
type Entry struct {
	Mode uint32 // File mode bits, 0 for subtrees
	Name string
	Hash cas.Hash
	Kind EntryKind
}

// Tree is an immutable directory snapshot.
type Tree struct {
	Entries []Entry // Sorted by name
}

// Commit is an immutable checkpoint record.
type Commit struct {
	TreeHash cas.Hash
	Parents  []cas.Hash
	Author   string
	Time     time.Time
	Message  string
}

// ---------------------------
// Blob encoding
// ---------------------------

func blobHeader(size int) []byte {
	return []byte(fmt.Sprintf("blob %d\x00", size))
}

// EncodeBlob returns the canonical bytes for a blob.
func EncodeBlob(content []byte) []byte {
	h := blobHeader(len(content))
	out := make([]byte, 0, len(h)+len(content))
	out = append(out, h...)
	out = append(out, content...)
	return out
}

// DecodeBlob parses canonical blob bytes.
func DecodeBlob(data []byte) (*Blob, error) {
	sep := bytes.IndexByte(data, 0x00)
	if sep < 0 {
		return nil, fmt.Errorf("invalid blob: missing NUL after header")
	}
	header := string(data[:sep])
	content := data[sep+1:]

	var size int
	n, err := fmt.Sscanf(header, "blob %d", &size)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("invalid blob header %q", header)
	}
	if size != len(content) {
		return nil, fmt.Errorf("blob size mismatch: header %d, content %d", size, len(content))
	}
	return &Blob{Size: size, Content: content}, nil
}

// HashBlob computes the hash of a file's content in blob form.
func HashBlob(content []byte) cas.Hash {
	return cas.SumB3(EncodeBlob(content))
}

// ---------------------------
// Tree encoding
// ---------------------------

// Sort orders entries by name, the canonical order for hashing.
func (t *Tree) Sort() {
	sort.Slice(t.Entries, func(i, j int) bool {
		return t.Entries[i].Name < t.Entries[j].Name
	})
}

// EncodeTree returns the canonical bytes for a tree. Entries are sorted as
// a side effect so equal directory contents always produce equal hashes.
func EncodeTree(t *Tree) []byte {
	t.Sort()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %d\n", len(t.Entries))
	for _, e := range t.Entries {
		kind := "blob"
		if e.Kind == TreeEntry {
			kind = "tree"
		}
		// Name last: it may contain spaces.
		fmt.Fprintf(&buf, "%o %s %s %s\n", e.Mode, kind, e.Hash.String(), e.Name)
	}
	return buf.Bytes()
}

// DecodeTree parses canonical tree bytes.
func DecodeTree(data []byte) (*Tree, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("invalid tree: empty")
	}

	var count int
	n, err := fmt.Sscanf(lines[0], "tree %d", &count)
	if err != nil || n != 1 {
		return nil, fmt.Errorf("invalid tree header %q", lines[0])
	}

	tree := &Tree{}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid tree entry %q", line)
		}

		mode, err := strconv.ParseUint(parts[0], 8, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid mode in tree entry %q: %w", line, err)
		}

		var kind EntryKind
		switch parts[1] {
		case "blob":
			kind = BlobEntry
		case "tree":
			kind = TreeEntry
		default:
			return nil, fmt.Errorf("unknown tree entry kind %q", parts[1])
		}

		hash, err := cas.ParseHash(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid hash in tree entry %q: %w", line, err)
		}

		tree.Entries = append(tree.Entries, Entry{
			Mode: uint32(mode),
			Name: parts[3],
			Hash: hash,
			Kind: kind,
		})
	}

	if len(tree.Entries) != count {
		return nil, fmt.Errorf("tree entry count mismatch: header %d, parsed %d", count, len(tree.Entries))
	}
	return tree, nil
}

// ---------------------------
// Commit encoding
// ---------------------------

// EncodeCommit returns the canonical bytes for a commit.
func EncodeCommit(c *Commit) []byte {
	var buf bytes.Buffer

	buf.WriteString("tree ")
	buf.WriteString(c.TreeHash.String())
	buf.WriteByte('\n')

	for _, parent := range c.Parents {
		buf.WriteString("parent ")
		buf.WriteString(parent.String())
		buf.WriteByte('\n')
	}

	buf.WriteString("author ")
	buf.WriteString(c.Author)
	buf.WriteByte(' ')
	buf.WriteString(strconv.FormatInt(c.Time.Unix(), 10))
	buf.WriteString(" +0000\n") // UTC timezone

	buf.WriteByte('\n')

	buf.WriteString(c.Message)
	if !strings.HasSuffix(c.Message, "\n") {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// DecodeCommit parses canonical commit bytes.
func DecodeCommit(data []byte) (*Commit, error) {
	lines := bytes.Split(data, []byte{'\n'})
	commit := &Commit{}

	var messageStart int
	for i, line := range lines {
		if len(line) == 0 {
			// Empty line indicates start of message
			messageStart = i + 1
			break
		}

		parts := bytes.SplitN(line, []byte{' '}, 2)
		if len(parts) < 2 {
			continue
		}

		key := string(parts[0])
		value := string(parts[1])

		switch key {
		case "tree":
			hash, err := cas.ParseHash(value)
			if err != nil {
				return nil, fmt.Errorf("invalid tree hash: %w", err)
			}
			commit.TreeHash = hash

		case "parent":
			hash, err := cas.ParseHash(value)
			if err != nil {
				return nil, fmt.Errorf("invalid parent hash: %w", err)
			}
			commit.Parents = append(commit.Parents, hash)

		case "author":
			fields := strings.Fields(value)
			if len(fields) >= 2 {
				commit.Author = strings.Join(fields[:len(fields)-2], " ")
				if ts, err := strconv.ParseInt(fields[len(fields)-2], 10, 64); err == nil {
					commit.Time = time.Unix(ts, 0)
				}
			}
		}
	}

	if messageStart > 0 && messageStart < len(lines) {
		messageBytes := bytes.Join(lines[messageStart:], []byte{'\n'})
		messageBytes = bytes.TrimSuffix(messageBytes, []byte{'\n'})
		commit.Message = string(messageBytes)
	}

	return commit, nil
}

// HashCommit computes the hash of a commit object.
func HashCommit(c *Commit) cas.Hash {
	return cas.SumB3(EncodeCommit(c))
}
