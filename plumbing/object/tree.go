package object

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/filemode"
)

// TreeEntry is one child of a Tree: a name, its mode, and the object it
// points at (a Blob for a file or symlink, another Tree for a subtree).
type TreeEntry struct {
	Name string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// Tree is a directory listing: an ordered set of named entries, each
// pointing at a blob or another tree.
type Tree struct {
	Hash    plumbing.Hash
	Entries []TreeEntry
}

// Entry returns the entry named name, if present.
func (t *Tree) Entry(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// DecodeTree parses a tree object's payload:
// a sequence of "<mode> <name>\x00<20-byte hash>" records, with no
// separators between records.
func DecodeTree(o plumbing.EncodedObject) (*Tree, error) {
	if o.Type() != plumbing.TreeObject {
		return nil, plumbing.ErrInvalidType
	}
	content, err := o.Reader()
	if err != nil {
		return nil, err
	}

	t := &Tree{Hash: o.Hash()}
	for len(content) > 0 {
		sp := bytes.IndexByte(content, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("object: malformed tree entry: missing mode separator")
		}
		mode, err := filemode.New(string(content[:sp]))
		if err != nil {
			return nil, err
		}

		rest := content[sp+1:]
		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("object: malformed tree entry: missing name terminator")
		}
		name := string(rest[:nul])

		rest = rest[nul+1:]
		if len(rest) < plumbing.HashSize {
			return nil, fmt.Errorf("object: malformed tree entry: truncated hash")
		}
		hash, _ := plumbing.FromBytes(rest[:plumbing.HashSize])

		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: mode, Hash: hash})
		content = rest[plumbing.HashSize:]
	}
	return t, nil
}

// NewTree builds and hashes a Tree from entries, sorting them into Git's
// tree order first.
func NewTree(entries []TreeEntry) *Tree {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	SortTreeEntries(sorted)

	t := &Tree{Entries: sorted}
	t.Hash = plumbing.ComputeHash(plumbing.TreeObject, t.encode())
	return t
}

// SortTreeEntries orders entries the way Git does: byte-wise on the name,
// except a directory's name is compared as if a trailing "/" were appended,
// so "foo.c" sorts before the directory "foo" even though 'o' < '.' is
// false for the bare strings.
func SortTreeEntries(entries []TreeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})
}

func treeSortKey(e TreeEntry) string {
	if e.Mode.IsDir() {
		return e.Name + "/"
	}
	return e.Name
}

func (t *Tree) encode() []byte {
	buf := &bytes.Buffer{}
	for _, e := range t.Entries {
		fmt.Fprintf(buf, "%s %s\x00", e.Mode.String(), e.Name)
		buf.Write(e.Hash.Bytes())
	}
	return buf.Bytes()
}

// EncodedObject returns the in-memory encoded form lit's object stores
// persist.
func (t *Tree) EncodedObject() plumbing.EncodedObject {
	return plumbing.NewMemoryObject(plumbing.TreeObject, t.encode())
}
