package merge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firiho/lit/merge"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/filemode"
	"github.com/firiho/lit/plumbing/object"
)

type fakeObjects struct {
	trees map[plumbing.Hash]*object.Tree
	blobs map[plumbing.Hash]*object.Blob
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{trees: map[plumbing.Hash]*object.Tree{}, blobs: map[plumbing.Hash]*object.Blob{}}
}

func (f *fakeObjects) TreeObject(h plumbing.Hash) (*object.Tree, error) {
	t, ok := f.trees[h]
	if !ok {
		return nil, plumbing.ErrInvalidType
	}
	return t, nil
}

func (f *fakeObjects) BlobObject(h plumbing.Hash) (*object.Blob, error) {
	b, ok := f.blobs[h]
	if !ok {
		return nil, plumbing.ErrInvalidType
	}
	return b, nil
}

func (f *fakeObjects) putBlob(content string) object.TreeEntry {
	b := object.NewBlob([]byte(content))
	f.blobs[b.Hash] = b
	return object.TreeEntry{Mode: filemode.Regular, Hash: b.Hash}
}

func (f *fakeObjects) putTree(entries []object.TreeEntry) *object.Tree {
	t := object.NewTree(entries)
	f.trees[t.Hash] = t
	return t
}

func named(name string, e object.TreeEntry) object.TreeEntry {
	e.Name = name
	return e
}

func TestMergeTreesCleanRows(t *testing.T) {
	objs := newFakeObjects()

	base := objs.putTree([]object.TreeEntry{
		named("unchanged.txt", objs.putBlob("same")),
		named("ours-only-change.txt", objs.putBlob("base")),
		named("theirs-only-change.txt", objs.putBlob("base")),
		named("ours-deletes.txt", objs.putBlob("base")),
		named("theirs-deletes.txt", objs.putBlob("base")),
	})
	ours := objs.putTree([]object.TreeEntry{
		named("unchanged.txt", objs.putBlob("same")),
		named("ours-only-change.txt", objs.putBlob("changed-by-ours")),
		named("theirs-only-change.txt", objs.putBlob("base")),
		named("theirs-deletes.txt", objs.putBlob("base")),
		named("added-by-ours.txt", objs.putBlob("new")),
	})
	theirs := objs.putTree([]object.TreeEntry{
		named("unchanged.txt", objs.putBlob("same")),
		named("ours-only-change.txt", objs.putBlob("base")),
		named("theirs-only-change.txt", objs.putBlob("changed-by-theirs")),
		named("ours-deletes.txt", objs.putBlob("base")),
		named("added-by-theirs.txt", objs.putBlob("new2")),
	})

	results, err := merge.MergeTrees(objs, base, ours, theirs, merge.Manual, false)
	require.NoError(t, err)

	byPath := map[string]merge.PathMerge{}
	for _, r := range results {
		byPath[r.Path] = r
	}

	require.Equal(t, merge.Clean, byPath["unchanged.txt"].Outcome)
	require.False(t, byPath["unchanged.txt"].Deleted)

	require.Equal(t, merge.Clean, byPath["ours-only-change.txt"].Outcome)
	require.Equal(t, objs.blobs[byPath["ours-only-change.txt"].Hash].Contents(), []byte("changed-by-ours"))

	require.Equal(t, merge.Clean, byPath["theirs-only-change.txt"].Outcome)
	require.Equal(t, objs.blobs[byPath["theirs-only-change.txt"].Hash].Contents(), []byte("changed-by-theirs"))

	require.Equal(t, merge.Clean, byPath["ours-deletes.txt"].Outcome)
	require.True(t, byPath["ours-deletes.txt"].Deleted)

	require.Equal(t, merge.Clean, byPath["theirs-deletes.txt"].Outcome)
	require.True(t, byPath["theirs-deletes.txt"].Deleted)

	require.Equal(t, merge.Clean, byPath["added-by-ours.txt"].Outcome)
	require.Equal(t, merge.Clean, byPath["added-by-theirs.txt"].Outcome)
}

func TestMergeTreesAddAddConflict(t *testing.T) {
	objs := newFakeObjects()
	base := objs.putTree(nil)
	ours := objs.putTree([]object.TreeEntry{named("f.txt", objs.putBlob("ours-version"))})
	theirs := objs.putTree([]object.TreeEntry{named("f.txt", objs.putBlob("theirs-version"))})

	results, err := merge.MergeTrees(objs, base, ours, theirs, merge.Manual, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, merge.Conflict, results[0].Outcome)
	require.Equal(t, merge.AddAddConflict, results[0].Kind)
}

func TestMergeTreesModifyDeleteConflict(t *testing.T) {
	objs := newFakeObjects()
	base := objs.putTree([]object.TreeEntry{named("f.txt", objs.putBlob("base"))})
	ours := objs.putTree([]object.TreeEntry{named("f.txt", objs.putBlob("ours-changed"))})
	theirs := objs.putTree(nil)

	results, err := merge.MergeTrees(objs, base, ours, theirs, merge.Manual, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, merge.Conflict, results[0].Outcome)
	require.Equal(t, merge.ModifyDeleteConflict, results[0].Kind)
}

func TestMergeTreesContentConflictAutoResolved(t *testing.T) {
	objs := newFakeObjects()
	base := objs.putTree([]object.TreeEntry{named("f.txt", objs.putBlob("one\ntwo\nthree\n"))})
	ours := objs.putTree([]object.TreeEntry{named("f.txt", objs.putBlob("one\nOURS\nthree\n"))})
	theirs := objs.putTree([]object.TreeEntry{named("f.txt", objs.putBlob("one\nTHEIRS\nthree\n"))})

	results, err := merge.MergeTrees(objs, base, ours, theirs, merge.Ours, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, merge.Clean, results[0].Outcome)

	manual, err := merge.MergeTrees(objs, base, ours, theirs, merge.Manual, false)
	require.NoError(t, err)
	require.Equal(t, merge.Conflict, manual[0].Outcome)
	require.Equal(t, merge.ContentConflict, manual[0].Kind)
	require.Contains(t, manual[0].Merged, "<<<<<<< ours")
}
