package object

import (
	"testing"
	"time"

	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/filemode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobRoundTrip(t *testing.T) {
	b := NewBlob([]byte("hello world\n"))
	assert.Equal(t, plumbing.ComputeHash(plumbing.BlobObject, []byte("hello world\n")), b.Hash)

	decoded, err := DecodeBlob(b.EncodedObject())
	require.NoError(t, err)
	assert.Equal(t, b.Hash, decoded.Hash)
	assert.Equal(t, []byte("hello world\n"), decoded.Contents())
}

func TestTreeSortOrder(t *testing.T) {
	entries := []TreeEntry{
		{Name: "foo", Mode: filemode.Dir},
		{Name: "foo.c", Mode: filemode.Regular},
		{Name: "bar", Mode: filemode.Regular},
	}
	tr := NewTree(entries)

	var names []string
	for _, e := range tr.Entries {
		names = append(names, e.Name)
	}
	// "foo.c" sorts before the directory "foo" because Git compares the
	// directory name as if it had a trailing slash.
	assert.Equal(t, []string{"bar", "foo.c", "foo"}, names)
}

func TestTreeRoundTrip(t *testing.T) {
	blob := NewBlob([]byte("content"))
	tr := NewTree([]TreeEntry{
		{Name: "a.txt", Mode: filemode.Regular, Hash: blob.Hash},
	})

	decoded, err := DecodeTree(tr.EncodedObject())
	require.NoError(t, err)
	assert.Equal(t, tr.Hash, decoded.Hash)
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, "a.txt", decoded.Entries[0].Name)
	assert.Equal(t, filemode.Regular, decoded.Entries[0].Mode)
	assert.Equal(t, blob.Hash, decoded.Entries[0].Hash)
}

func testSig(name string) Signature {
	return Signature{Name: name, Email: name + "@example.com", When: time.Unix(1700000000, 0).UTC()}
}

func TestSignatureRoundTrip(t *testing.T) {
	sig := testSig("Jane Doe")
	encoded := sig.Encode()

	var decoded Signature
	decoded.Decode(encoded)

	assert.Equal(t, "Jane Doe", decoded.Name)
	assert.Equal(t, "Jane Doe@example.com", decoded.Email)
	assert.Equal(t, sig.When.Unix(), decoded.When.Unix())
}

func TestCommitRoundTrip(t *testing.T) {
	tree := NewTree(nil)
	c := NewCommit(tree.Hash, nil, testSig("Author"), testSig("Author"), "initial commit\n")

	decoded, err := DecodeCommit(c.EncodedObject())
	require.NoError(t, err)
	assert.Equal(t, c.Hash, decoded.Hash)
	assert.Equal(t, tree.Hash, decoded.Tree)
	assert.Empty(t, decoded.Parents)
	assert.Equal(t, "initial commit", decoded.Message)
	assert.False(t, decoded.IsMerge())
}

func TestCommitMergeParents(t *testing.T) {
	tree := NewTree(nil)
	p1 := NewCommit(tree.Hash, nil, testSig("A"), testSig("A"), "p1").Hash
	p2 := NewCommit(tree.Hash, nil, testSig("A"), testSig("A"), "p2").Hash
	merge := NewCommit(tree.Hash, []plumbing.Hash{p1, p2}, testSig("A"), testSig("A"), "merge")

	decoded, err := DecodeCommit(merge.EncodedObject())
	require.NoError(t, err)
	assert.True(t, decoded.IsMerge())
	assert.Equal(t, 2, decoded.NumParents())
	assert.Equal(t, []plumbing.Hash{p1, p2}, decoded.Parents)
}

func TestTagRoundTrip(t *testing.T) {
	tree := NewTree(nil)
	c := NewCommit(tree.Hash, nil, testSig("A"), testSig("A"), "release commit")
	tag := NewTag(c.Hash, plumbing.CommitObject, "v1.0.0", testSig("Releaser"), "first release\n")

	decoded, err := DecodeTag(tag.EncodedObject())
	require.NoError(t, err)
	assert.Equal(t, tag.Hash, decoded.Hash)
	assert.Equal(t, c.Hash, decoded.Target)
	assert.Equal(t, plumbing.CommitObject, decoded.TargetType)
	assert.Equal(t, "v1.0.0", decoded.Name)
	assert.Equal(t, "first release", decoded.Message)
}
