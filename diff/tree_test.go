package diff_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firiho/lit/diff"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/filemode"
	"github.com/firiho/lit/plumbing/object"
)

type fakeTreeGetter map[plumbing.Hash]*object.Tree

func (f fakeTreeGetter) TreeObject(h plumbing.Hash) (*object.Tree, error) {
	t, ok := f[h]
	if !ok {
		return nil, plumbing.ErrInvalidType
	}
	return t, nil
}

func blobEntry(name string, seed byte) object.TreeEntry {
	var h plumbing.Hash
	h[0] = seed
	return object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: h}
}

func TestDiffTreeFlat(t *testing.T) {
	from := &object.Tree{Entries: []object.TreeEntry{
		blobEntry("a.txt", 1),
		blobEntry("b.txt", 2),
	}}
	to := &object.Tree{Entries: []object.TreeEntry{
		blobEntry("b.txt", 3),
		blobEntry("c.txt", 4),
	}}

	changes, err := diff.DiffTree(fakeTreeGetter{}, from, to)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	byPath := map[string]diff.Change{}
	for _, c := range changes {
		byPath[c.Path] = c
	}
	require.Equal(t, diff.Deleted, byPath["a.txt"].Action)
	require.Equal(t, diff.Modified, byPath["b.txt"].Action)
	require.Equal(t, diff.Added, byPath["c.txt"].Action)
}

func TestDiffTreeNested(t *testing.T) {
	var subFromHash, subToHash plumbing.Hash
	subFromHash[0] = 0xaa
	subToHash[0] = 0xbb

	subFrom := &object.Tree{Entries: []object.TreeEntry{blobEntry("nested.txt", 5)}}
	subTo := &object.Tree{Entries: []object.TreeEntry{blobEntry("nested.txt", 6)}}

	from := &object.Tree{Entries: []object.TreeEntry{
		{Name: "dir", Mode: filemode.Dir, Hash: subFromHash},
	}}
	to := &object.Tree{Entries: []object.TreeEntry{
		{Name: "dir", Mode: filemode.Dir, Hash: subToHash},
	}}

	getter := fakeTreeGetter{subFromHash: subFrom, subToHash: subTo}
	changes, err := diff.DiffTree(getter, from, to)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, "dir/nested.txt", changes[0].Path)
	require.Equal(t, diff.Modified, changes[0].Action)
}

func TestDiffTreeUnchangedSubtreeSkipped(t *testing.T) {
	var h plumbing.Hash
	h[0] = 0xcc

	from := &object.Tree{Entries: []object.TreeEntry{{Name: "dir", Mode: filemode.Dir, Hash: h}}}
	to := &object.Tree{Entries: []object.TreeEntry{{Name: "dir", Mode: filemode.Dir, Hash: h}}}

	changes, err := diff.DiffTree(fakeTreeGetter{}, from, to)
	require.NoError(t, err)
	require.Empty(t, changes)
}

func TestDiffTreeTypeChanged(t *testing.T) {
	var subHash plumbing.Hash
	subHash[0] = 0xdd
	sub := &object.Tree{Entries: []object.TreeEntry{blobEntry("x.txt", 7)}}

	from := &object.Tree{Entries: []object.TreeEntry{blobEntry("thing", 8)}}
	to := &object.Tree{Entries: []object.TreeEntry{{Name: "thing", Mode: filemode.Dir, Hash: subHash}}}

	getter := fakeTreeGetter{subHash: sub}
	changes, err := diff.DiffTree(getter, from, to)
	require.NoError(t, err)

	require.Len(t, changes, 2)
	var sawTypeChange, sawNestedAdd bool
	for _, c := range changes {
		if c.Path == "thing" && c.Action == diff.TypeChanged {
			sawTypeChange = true
		}
		if c.Path == "thing/x.txt" && c.Action == diff.Added {
			sawNestedAdd = true
		}
	}
	require.True(t, sawTypeChange)
	require.True(t, sawNestedAdd)
}
