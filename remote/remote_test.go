package remote_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firiho/lit"
	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/remote"
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

func TestParseURLAcceptsOnlyFileForms(t *testing.T) {
	abs, err := remote.ParseURL("/tmp/origin")
	require.NoError(t, err)
	require.Equal(t, "/tmp/origin", abs)

	fileForm, err := remote.ParseURL("file:///tmp/origin")
	require.NoError(t, err)
	require.Equal(t, "/tmp/origin", fileForm)

	_, err = remote.ParseURL("relative/origin")
	require.NoError(t, err)

	_, err = remote.ParseURL("https://example.com/repo.git")
	require.ErrorIs(t, err, errkind.ErrUnsupportedTransport)

	_, err = remote.ParseURL("ssh://example.com/repo.git")
	require.ErrorIs(t, err, errkind.ErrUnsupportedTransport)
}

func TestCloneFetchPushRoundTrip(t *testing.T) {
	origin := newRepo(t)
	writeFile(t, origin, "a.txt", "v1\n")
	owt, err := origin.Worktree()
	require.NoError(t, err)
	require.NoError(t, owt.Add("a.txt"))
	firstCommit, err := origin.Commit("v1", lit.CommitOptions{})
	require.NoError(t, err)

	originURL := owt.Filesystem().Root()

	clonePath := t.TempDir()
	clone, err := lit.Clone(originURL, clonePath, false)
	require.NoError(t, err)

	head, err := clone.HeadCommit()
	require.NoError(t, err)
	require.Equal(t, firstCommit, head.Hash)

	cwt, err := clone.Worktree()
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(cwt.Filesystem().Root(), "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "v1\n", string(content))

	fetchResult, err := clone.Fetch("origin")
	require.NoError(t, err)
	require.Contains(t, fetchResult.Updated, "refs/remotes/origin/main")
	require.Equal(t, firstCommit, fetchResult.Updated["refs/remotes/origin/main"])

	writeFile(t, clone, "b.txt", "new from clone\n")
	require.NoError(t, cwt.Add("b.txt"))
	secondCommit, err := clone.Commit("add b", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, clone.AddRemote("upstream", originURL))
	require.NoError(t, clone.Push("upstream", false, "main"))

	originHead, err := origin.HeadCommit()
	require.NoError(t, err)
	require.Equal(t, secondCommit, originHead.Hash)
}

func TestPushRejectsNonFastForward(t *testing.T) {
	origin := newRepo(t)
	writeFile(t, origin, "a.txt", "v1\n")
	owt, err := origin.Worktree()
	require.NoError(t, err)
	require.NoError(t, owt.Add("a.txt"))
	_, err = origin.Commit("v1", lit.CommitOptions{})
	require.NoError(t, err)

	originURL := owt.Filesystem().Root()

	clonePath := t.TempDir()
	clone, err := lit.Clone(originURL, clonePath, false)
	require.NoError(t, err)

	writeFile(t, origin, "a.txt", "v2 from origin\n")
	require.NoError(t, owt.Add("a.txt"))
	_, err = origin.Commit("v2", lit.CommitOptions{})
	require.NoError(t, err)

	cwt, err := clone.Worktree()
	require.NoError(t, err)
	writeFile(t, clone, "b.txt", "diverging\n")
	require.NoError(t, cwt.Add("b.txt"))
	_, err = clone.Commit("diverge", lit.CommitOptions{})
	require.NoError(t, err)

	require.NoError(t, clone.AddRemote("origin2", originURL))
	err = clone.Push("origin2", false, "main")
	require.Error(t, err)
	var nf *errkind.NonFastForwardError
	require.ErrorAs(t, err, &nf)

	require.NoError(t, clone.Push("origin2", true, "main"))
}
