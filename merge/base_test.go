package merge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firiho/lit/merge"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
)

type fakeFullGetter struct {
	*fakeObjects
	commits map[plumbing.Hash]*object.Commit
}

func newFakeFullGetter() *fakeFullGetter {
	return &fakeFullGetter{fakeObjects: newFakeObjects(), commits: map[plumbing.Hash]*object.Commit{}}
}

func (f *fakeFullGetter) CommitObject(h plumbing.Hash) (*object.Commit, error) {
	c, ok := f.commits[h]
	if !ok {
		return nil, plumbing.ErrInvalidType
	}
	return c, nil
}

func (f *fakeFullGetter) putCommit(hashSeed byte, tree *object.Tree, parents ...plumbing.Hash) *object.Commit {
	var h plumbing.Hash
	h[0] = hashSeed
	c := &object.Commit{Hash: h, Tree: tree.Hash, Parents: parents}
	f.commits[h] = c
	return c
}

func TestVirtualBaseSingleCandidate(t *testing.T) {
	g := newFakeFullGetter()
	tree := g.putTree([]object.TreeEntry{named("f.txt", g.putBlob("content"))})
	c := g.putCommit(1, tree)

	base, err := merge.VirtualBase(g, []*object.Commit{c}, merge.Manual, false)
	require.NoError(t, err)
	require.Equal(t, tree.Hash, base.Hash)
}

func TestVirtualBaseNoCandidates(t *testing.T) {
	g := newFakeFullGetter()
	base, err := merge.VirtualBase(g, nil, merge.Manual, false)
	require.NoError(t, err)
	require.Empty(t, base.Entries)
}

func TestVirtualBaseFoldsMultipleCandidates(t *testing.T) {
	g := newFakeFullGetter()

	rootTree := g.putTree([]object.TreeEntry{named("f.txt", g.putBlob("root"))})
	root := g.putCommit(1, rootTree)

	treeA := g.putTree([]object.TreeEntry{named("f.txt", g.putBlob("root")), named("a.txt", g.putBlob("a"))})
	a := g.putCommit(2, treeA, root.Hash)

	treeB := g.putTree([]object.TreeEntry{named("f.txt", g.putBlob("root")), named("b.txt", g.putBlob("b"))})
	b := g.putCommit(3, treeB, root.Hash)

	result, err := merge.VirtualBase(g, []*object.Commit{a, b}, merge.Union, false)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range result.Entries {
		names[e.Name] = true
	}
	require.True(t, names["f.txt"])
	require.True(t, names["a.txt"])
	require.True(t, names["b.txt"])
}
