package merge

import (
	"strings"

	"github.com/firiho/lit/plumbing/filemode"
	"github.com/firiho/lit/plumbing/object"
)

// FullGetter is everything VirtualBase needs: commit lookups to recurse
// merge-base computation, plus the tree/blob lookups MergeTrees needs to
// synthesize an intermediate tree.
type FullGetter interface {
	object.CommitGetter
	ObjectGetter
}

// VirtualBase collapses however many best common ancestors MergeBase
// returned into a single tree a three-way merge can use as its base.
// With zero candidates (unrelated histories) it returns an empty tree, so
// every path on both sides looks added. With one, it returns that commit's
// tree directly. With more than one — a criss-cross merge history — it
// folds them together pairwise: merge each one against the running fold
// using the recursive merge-base of the first candidate and that one as
// the pair's own base, falling back to the "ours" side of any unresolved
// conflict in the fold (a virtual base is a heuristic input to the real
// merge, not itself a commit anyone inspects).
func VirtualBase(g FullGetter, bases []*object.Commit, strategy Strategy, preferOurs bool) (*object.Tree, error) {
	switch len(bases) {
	case 0:
		return &object.Tree{}, nil
	case 1:
		return g.TreeObject(bases[0].Tree)
	}

	first := bases[0]
	fold, err := g.TreeObject(first.Tree)
	if err != nil {
		return nil, err
	}

	for _, next := range bases[1:] {
		subBases, err := object.MergeBase(g, first.Hash, next.Hash)
		if err != nil {
			return nil, err
		}
		subBaseTree, err := VirtualBase(g, subBases, strategy, preferOurs)
		if err != nil {
			return nil, err
		}

		nextTree, err := g.TreeObject(next.Tree)
		if err != nil {
			return nil, err
		}

		results, err := MergeTrees(g, subBaseTree, fold, nextTree, strategy, preferOurs)
		if err != nil {
			return nil, err
		}
		fold = materializeTree(results)
	}
	return fold, nil
}

type node struct {
	entry    *object.TreeEntry
	children map[string]*node
}

func insertNode(root *node, parts []string, e object.TreeEntry) {
	if len(parts) == 1 {
		child := root.children[parts[0]]
		if child == nil {
			child = &node{}
			root.children[parts[0]] = child
		}
		child.entry = &e
		return
	}
	child := root.children[parts[0]]
	if child == nil {
		child = &node{children: map[string]*node{}}
		root.children[parts[0]] = child
	}
	insertNode(child, parts[1:], e)
}

func treeFromNode(n *node) *object.Tree {
	var entries []object.TreeEntry
	for name, child := range n.children {
		if child.entry != nil {
			e := *child.entry
			e.Name = name
			entries = append(entries, e)
			continue
		}
		sub := treeFromNode(child)
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: sub.Hash})
	}
	return object.NewTree(entries)
}

func buildTree(paths map[string]object.TreeEntry) *object.Tree {
	root := &node{children: map[string]*node{}}
	for path, e := range paths {
		insertNode(root, strings.Split(path, "/"), e)
	}
	return treeFromNode(root)
}

func materializeTree(results []PathMerge) *object.Tree {
	entries := map[string]object.TreeEntry{}
	for _, r := range results {
		if r.Outcome == Clean {
			if r.Deleted {
				continue
			}
			entries[r.Path] = object.TreeEntry{Mode: r.Mode, Hash: r.Hash}
			continue
		}
		switch {
		case r.Ours != nil:
			entries[r.Path] = *r.Ours
		case r.Theirs != nil:
			entries[r.Path] = *r.Theirs
		}
	}
	return buildTree(entries)
}
