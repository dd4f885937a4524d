package lit_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/firiho/lit"
	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/merge"
	"github.com/firiho/lit/plumbing/object"
)

func newRepo(t *testing.T) *lit.Repository {
	t.Helper()
	dir := t.TempDir()
	r, err := lit.Init(dir, false)
	require.NoError(t, err)
	t.Setenv("LIT_AUTHOR_NAME", "Ada Lovelace")
	t.Setenv("LIT_AUTHOR_EMAIL", "ada@example.com")
	t.Setenv("LIT_COMMITTER_NAME", "Ada Lovelace")
	t.Setenv("LIT_COMMITTER_EMAIL", "ada@example.com")
	return r
}

func writeFile(t *testing.T, r *lit.Repository, path, content string) {
	t.Helper()
	wt, err := r.Worktree()
	require.NoError(t, err)
	full := filepath.Join(wt.Filesystem().Root(), path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestInitCommitLog(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "hello\n")
	require.NoError(t, wt.Add("a.txt"))

	h, err := r.Commit("first commit", lit.CommitOptions{})
	require.NoError(t, err)
	require.False(t, h.IsZero())

	head, err := r.HeadCommit()
	require.NoError(t, err)
	require.Equal(t, "first commit", head.Message)
	require.Len(t, head.Parents, 0)

	commits, err := r.Log(lit.LogOptions{})
	require.NoError(t, err)
	require.Len(t, commits, 1)
}

func TestStatusUntrackedAndModified(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "v1\n")
	require.NoError(t, wt.Add("a.txt"))
	_, err = r.Commit("v1", lit.CommitOptions{})
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "v2\n")
	writeFile(t, r, "b.txt", "new\n")

	status, err := wt.Status()
	require.NoError(t, err)
	require.Equal(t, lit.Modified, status["a.txt"].Worktree)
	require.Equal(t, lit.Untracked, status["b.txt"].Worktree)
}

func TestBranchCheckoutAndMerge(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "base\n")
	require.NoError(t, wt.Add("a.txt"))
	base, err := r.Commit("base", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", base.String()))
	require.NoError(t, r.Checkout("feature"))

	writeFile(t, r, "b.txt", "feature\n")
	require.NoError(t, wt.Add("b.txt"))
	_, err = r.Commit("add b", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Checkout("main"))
	result, err := r.Merge("feature", "merge feature", lit.MergeOptions{})
	require.NoError(t, err)
	require.False(t, result.FastForward)
	require.False(t, result.Commit.IsZero())

	head, err := r.HeadCommit()
	require.NoError(t, err)
	require.Len(t, head.Parents, 2)
}

func TestMergeFastForward(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "base\n")
	require.NoError(t, wt.Add("a.txt"))
	base, err := r.Commit("base", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", base.String()))
	require.NoError(t, r.Checkout("feature"))
	writeFile(t, r, "b.txt", "feature\n")
	require.NoError(t, wt.Add("b.txt"))
	featureHead, err := r.Commit("add b", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Checkout("main"))
	result, err := r.Merge("feature", "merge feature", lit.MergeOptions{})
	require.NoError(t, err)
	require.True(t, result.FastForward)
	require.Equal(t, featureHead, result.Commit)
}

func TestMergeConflictAndContinue(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "base\n")
	require.NoError(t, wt.Add("a.txt"))
	base, err := r.Commit("base", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", base.String()))
	require.NoError(t, r.Checkout("feature"))
	writeFile(t, r, "a.txt", "feature change\n")
	require.NoError(t, wt.Add("a.txt"))
	_, err = r.Commit("feature edit", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Checkout("main"))
	writeFile(t, r, "a.txt", "main change\n")
	require.NoError(t, wt.Add("a.txt"))
	_, err = r.Commit("main edit", lit.CommitOptions{})
	require.NoError(t, err)

	_, err = r.Merge("feature", "merge feature", lit.MergeOptions{})
	require.Error(t, err)
	var conflictErr *errkind.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Contains(t, conflictErr.Paths, "a.txt")

	writeFile(t, r, "a.txt", "resolved\n")
	require.NoError(t, wt.Add("a.txt"))
	h, err := r.MergeContinue("merge feature")
	require.NoError(t, err)
	require.False(t, h.IsZero())

	inProgress, err := r.Log(lit.LogOptions{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(inProgress), 3)
}

func TestCherryPick(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "base\n")
	require.NoError(t, wt.Add("a.txt"))
	base, err := r.Commit("base", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", base.String()))
	require.NoError(t, r.Checkout("feature"))
	writeFile(t, r, "b.txt", "picked\n")
	require.NoError(t, wt.Add("b.txt"))
	pick, err := r.Commit("add b", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Checkout("main"))
	result, err := r.CherryPick(pick.String(), lit.MergeOptions{})
	require.NoError(t, err)
	require.False(t, result.Commit.IsZero())

	head, err := r.HeadCommit()
	require.NoError(t, err)
	require.Len(t, head.Parents, 1)
}

func TestMergeRecentStrategyPicksLaterCommitterTimestamp(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "base\n")
	require.NoError(t, wt.Add("a.txt"))
	base, err := r.Commit("base", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", base.String()))
	require.NoError(t, r.Checkout("feature"))
	writeFile(t, r, "a.txt", "feature change\n")
	require.NoError(t, wt.Add("a.txt"))
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = r.Commit("feature edit", lit.CommitOptions{
		Committer: &object.Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: earlier},
	})
	require.NoError(t, err)

	require.NoError(t, r.Checkout("main"))
	writeFile(t, r, "a.txt", "main change\n")
	require.NoError(t, wt.Add("a.txt"))
	later := earlier.Add(24 * time.Hour)
	_, err = r.Commit("main edit", lit.CommitOptions{
		Committer: &object.Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: later},
	})
	require.NoError(t, err)

	result, err := r.Merge("feature", "merge feature", lit.MergeOptions{Strategy: merge.Recent})
	require.NoError(t, err)
	require.Empty(t, result.Conflicts)

	content, err := os.ReadFile(filepath.Join(wt.Filesystem().Root(), "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "main change\n", string(content))
}

func TestResetHard(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "v1\n")
	require.NoError(t, wt.Add("a.txt"))
	first, err := r.Commit("v1", lit.CommitOptions{})
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "v2\n")
	require.NoError(t, wt.Add("a.txt"))
	_, err = r.Commit("v2", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Reset(first.String(), lit.ResetHard))
	head, err := r.HeadHash()
	require.NoError(t, err)
	require.Equal(t, first, head)

	content, err := os.ReadFile(filepath.Join(wt.Filesystem().Root(), "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "v1\n", string(content))
}

func TestStashPushAndPop(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "v1\n")
	require.NoError(t, wt.Add("a.txt"))
	_, err = r.Commit("v1", lit.CommitOptions{})
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "dirty\n")
	entry, err := r.StashPush("wip")
	require.NoError(t, err)
	require.False(t, entry.Stash.IsZero())

	content, err := os.ReadFile(filepath.Join(wt.Filesystem().Root(), "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "v1\n", string(content))

	list, err := r.StashList()
	require.NoError(t, err)
	require.Len(t, list, 1)

	conflicts, err := r.StashPop(0, lit.MergeOptions{})
	require.NoError(t, err)
	require.Empty(t, conflicts)

	list, err = r.StashList()
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRebase(t *testing.T) {
	r := newRepo(t)
	wt, err := r.Worktree()
	require.NoError(t, err)

	writeFile(t, r, "a.txt", "base\n")
	require.NoError(t, wt.Add("a.txt"))
	base, err := r.Commit("base", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", base.String()))
	require.NoError(t, r.Checkout("feature"))
	writeFile(t, r, "b.txt", "feature\n")
	require.NoError(t, wt.Add("b.txt"))
	_, err = r.Commit("add b", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Checkout("main"))
	writeFile(t, r, "c.txt", "main\n")
	require.NoError(t, wt.Add("c.txt"))
	mainHead, err := r.Commit("add c", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Checkout("feature"))
	result, err := r.Rebase("main", lit.MergeOptions{})
	require.NoError(t, err)
	require.True(t, result.Done)

	head, err := r.HeadCommit()
	require.NoError(t, err)
	require.Equal(t, mainHead, head.Parents[0])
}
