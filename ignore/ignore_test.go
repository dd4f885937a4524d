package ignore_test

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/firiho/lit/ignore"
)

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(fs.Join(path, ".."), os.ModePerm))
	f, err := fs.Create(path)
	require.NoError(t, err)
	_, err = f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestLoadAggregatesRepoWideAndPerDirectoryPatterns(t *testing.T) {
	worktree := memfs.New()
	litDir, err := worktree.Chroot(".lit")
	require.NoError(t, err)

	writeFile(t, litDir, "info/exclude", "*.bak\n")
	writeFile(t, worktree, ".litignore", "*.log\nbuild/\n")
	writeFile(t, worktree, "vendor/.litignore", "!keep.log\n")

	require.NoError(t, worktree.MkdirAll("build", os.ModePerm))
	require.NoError(t, worktree.MkdirAll("vendor", os.ModePerm))

	m, err := ignore.Load(worktree, litDir)
	require.NoError(t, err)

	require.True(t, m.Match("debug.bak", false))
	require.True(t, m.Match("app.log", false))
	require.True(t, m.Match("build", true))
	require.True(t, m.Match("vendor/other.log", false))
	require.False(t, m.Match("vendor/keep.log", false))
	require.False(t, m.Match("main.go", false))
}

func TestLoadSkipsDotLitDirectory(t *testing.T) {
	worktree := memfs.New()
	litDir, err := worktree.Chroot(".lit")
	require.NoError(t, err)

	writeFile(t, litDir, "index", "should not be treated as an ignore file")

	m, err := ignore.Load(worktree, litDir)
	require.NoError(t, err)
	require.False(t, m.Match("README.md", false))
}

func TestLoadWithNoIgnoreFilesIgnoresNothing(t *testing.T) {
	worktree := memfs.New()
	litDir, err := worktree.Chroot(".lit")
	require.NoError(t, err)

	m, err := ignore.Load(worktree, litDir)
	require.NoError(t, err)
	require.False(t, m.Match("anything.txt", false))
}

func TestDeeperLitignoreOverridesShallower(t *testing.T) {
	worktree := memfs.New()
	litDir, err := worktree.Chroot(".lit")
	require.NoError(t, err)

	writeFile(t, worktree, ".litignore", "*.tmp\n")
	writeFile(t, worktree, "notes/.litignore", "!important.tmp\n")
	require.NoError(t, worktree.MkdirAll("notes", os.ModePerm))

	m, err := ignore.Load(worktree, litDir)
	require.NoError(t, err)
	require.True(t, m.Match("scratch.tmp", false))
	require.False(t, m.Match("notes/important.tmp", false))
}

// TestExcludedParentBlocksReInclusion confirms Git's rule that a negated
// pattern cannot resurrect a path whose parent directory is itself
// excluded: the directory is never descended into, so nested re-including
// patterns never get a chance to apply.
func TestExcludedParentBlocksReInclusion(t *testing.T) {
	worktree := memfs.New()
	litDir, err := worktree.Chroot(".lit")
	require.NoError(t, err)

	writeFile(t, worktree, ".litignore", "secret/\n")
	writeFile(t, worktree, "secret/.litignore", "!public\n")
	require.NoError(t, worktree.MkdirAll("secret/public", os.ModePerm))

	m, err := ignore.Load(worktree, litDir)
	require.NoError(t, err)
	require.True(t, m.Match("secret", true))
	require.True(t, m.Match("secret/public", true))
}
