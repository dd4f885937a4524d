package diff

import (
	"sort"

	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
)

// ChangeAction classifies how a path differs between two trees.
type ChangeAction int8

const (
	Added ChangeAction = iota
	Deleted
	Modified
	TypeChanged
)

func (a ChangeAction) String() string {
	switch a {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	case TypeChanged:
		return "type-changed"
	default:
		return "unknown"
	}
}

// Change describes one path-level difference found while walking two
// trees. From is nil for Added, To is nil for Deleted; both are set for
// Modified and TypeChanged.
type Change struct {
	Action ChangeAction
	Path   string
	From   *object.TreeEntry
	To     *object.TreeEntry
}

// TreeGetter resolves a tree hash to its decoded contents, letting DiffTree
// descend into subtrees without depending on a concrete storage backend.
type TreeGetter interface {
	TreeObject(plumbing.Hash) (*object.Tree, error)
}

// DiffTree walks from and to in Git's sorted tree order and reports every
// path that was Added, Deleted, Modified or TypeChanged. Rename detection
// is not attempted: a file moved to a new path shows up as a delete at the
// old path and an add at the new one.
func DiffTree(g TreeGetter, from, to *object.Tree) ([]Change, error) {
	var changes []Change
	if err := diffTreeAt(g, "", from, to, &changes); err != nil {
		return nil, err
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

func diffTreeAt(g TreeGetter, prefix string, from, to *object.Tree, out *[]Change) error {
	fromEntries := treeEntriesByName(from)
	toEntries := treeEntriesByName(to)

	names := make(map[string]struct{}, len(fromEntries)+len(toEntries))
	for n := range fromEntries {
		names[n] = struct{}{}
	}
	for n := range toEntries {
		names[n] = struct{}{}
	}

	for name := range names {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		fe, inFrom := fromEntries[name]
		te, inTo := toEntries[name]

		switch {
		case inFrom && !inTo:
			if err := emitRemoved(g, path, fe, out); err != nil {
				return err
			}
		case !inFrom && inTo:
			if err := emitAdded(g, path, te, out); err != nil {
				return err
			}
		default:
			if err := diffEntry(g, path, fe, te, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func treeEntriesByName(t *object.Tree) map[string]object.TreeEntry {
	m := make(map[string]object.TreeEntry, len(t.Entries))
	for _, e := range t.Entries {
		m[e.Name] = e
	}
	return m
}

func emitRemoved(g TreeGetter, path string, e object.TreeEntry, out *[]Change) error {
	if e.Mode.IsDir() {
		sub, err := g.TreeObject(e.Hash)
		if err != nil {
			return err
		}
		return diffTreeAt(g, path, sub, &object.Tree{}, out)
	}
	fe := e
	*out = append(*out, Change{Action: Deleted, Path: path, From: &fe})
	return nil
}

func emitAdded(g TreeGetter, path string, e object.TreeEntry, out *[]Change) error {
	if e.Mode.IsDir() {
		sub, err := g.TreeObject(e.Hash)
		if err != nil {
			return err
		}
		return diffTreeAt(g, path, &object.Tree{}, sub, out)
	}
	te := e
	*out = append(*out, Change{Action: Added, Path: path, To: &te})
	return nil
}

func diffEntry(g TreeGetter, path string, from, to object.TreeEntry, out *[]Change) error {
	fromIsDir := from.Mode.IsDir()
	toIsDir := to.Mode.IsDir()

	switch {
	case fromIsDir && toIsDir:
		if from.Hash == to.Hash {
			return nil
		}
		fromSub, err := g.TreeObject(from.Hash)
		if err != nil {
			return err
		}
		toSub, err := g.TreeObject(to.Hash)
		if err != nil {
			return err
		}
		return diffTreeAt(g, path, fromSub, toSub, out)
	case fromIsDir != toIsDir:
		ff, tt := from, to
		*out = append(*out, Change{Action: TypeChanged, Path: path, From: &ff, To: &tt})
		if fromIsDir {
			sub, err := g.TreeObject(from.Hash)
			if err != nil {
				return err
			}
			return diffTreeAt(g, path, sub, &object.Tree{}, out)
		}
		sub, err := g.TreeObject(to.Hash)
		if err != nil {
			return err
		}
		return diffTreeAt(g, path, &object.Tree{}, sub, out)
	default:
		if from.Hash == to.Hash && from.Mode == to.Mode {
			return nil
		}
		ff, tt := from, to
		*out = append(*out, Change{Action: Modified, Path: path, From: &ff, To: &tt})
		return nil
	}
}
