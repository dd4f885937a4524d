package object

import (
	"testing"
	"time"

	"github.com/firiho/lit/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCommitStore is a minimal in-memory CommitGetter for graph tests.
type memCommitStore map[plumbing.Hash]*Commit

func (m memCommitStore) CommitObject(h plumbing.Hash) (*Commit, error) {
	c, ok := m[h]
	if !ok {
		return nil, plumbing.ErrInvalidType
	}
	return c, nil
}

// buildLine builds a straight-line history of n commits, each one second
// apart, and returns the store plus the commits oldest-to-newest.
func buildLine(n int) (memCommitStore, []*Commit) {
	store := memCommitStore{}
	tree := NewTree(nil)
	var commits []*Commit
	var parent []plumbing.Hash
	for i := 0; i < n; i++ {
		sig := Signature{Name: "a", Email: "a@example.com", When: epoch(i)}
		c := NewCommit(tree.Hash, parent, sig, sig, "commit")
		store[c.Hash] = c
		commits = append(commits, c)
		parent = []plumbing.Hash{c.Hash}
	}
	return store, commits
}

func epoch(offsetSeconds int) time.Time {
	return time.Unix(int64(1700000000+offsetSeconds), 0).UTC()
}

func TestCommitIterDFSOrder(t *testing.T) {
	store, commits := buildLine(3)
	head := commits[2].Hash

	it, err := NewCommitIter(store, LogOrderDFS, head)
	require.NoError(t, err)

	var got []plumbing.Hash
	require.NoError(t, it.ForEach(func(c *Commit) error {
		got = append(got, c.Hash)
		return nil
	}))

	assert.Equal(t, []plumbing.Hash{commits[2].Hash, commits[1].Hash, commits[0].Hash}, got)
}

func TestCommitIterTopoOrderNewestFirst(t *testing.T) {
	store, commits := buildLine(3)
	head := commits[2].Hash

	it, err := NewCommitIter(store, LogOrderDefault, head)
	require.NoError(t, err)

	var got []plumbing.Hash
	require.NoError(t, it.ForEach(func(c *Commit) error {
		got = append(got, c.Hash)
		return nil
	}))

	assert.Equal(t, []plumbing.Hash{commits[2].Hash, commits[1].Hash, commits[0].Hash}, got)
}

func TestMergeBaseLinearHistory(t *testing.T) {
	store, commits := buildLine(3)

	bases, err := MergeBase(store, commits[2].Hash, commits[1].Hash)
	require.NoError(t, err)
	require.Len(t, bases, 1)
	assert.Equal(t, commits[1].Hash, bases[0].Hash)
}

func TestMergeBaseDivergentBranches(t *testing.T) {
	store, commits := buildLine(2)
	tree := NewTree(nil)

	base := commits[1]
	sigA := Signature{Name: "a", Email: "a@example.com", When: epoch(10)}
	sigB := Signature{Name: "b", Email: "b@example.com", When: epoch(11)}
	left := NewCommit(tree.Hash, []plumbing.Hash{base.Hash}, sigA, sigA, "left")
	right := NewCommit(tree.Hash, []plumbing.Hash{base.Hash}, sigB, sigB, "right")
	store[left.Hash] = left
	store[right.Hash] = right

	bases, err := MergeBase(store, left.Hash, right.Hash)
	require.NoError(t, err)
	require.Len(t, bases, 1)
	assert.Equal(t, base.Hash, bases[0].Hash)
}

func TestIsAncestor(t *testing.T) {
	store, commits := buildLine(3)

	ok, err := IsAncestor(store, commits[0].Hash, commits[2].Hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsAncestor(store, commits[2].Hash, commits[0].Hash)
	require.NoError(t, err)
	assert.False(t, ok)
}
