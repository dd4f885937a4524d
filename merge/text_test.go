package merge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firiho/lit/merge"
)

func TestTextMergeOnlyOneSideChanged(t *testing.T) {
	base := "a\nb\nc\n"
	ours := "a\nb\nc\n"
	theirs := "a\nB\nc\n"

	out, conflicted, err := merge.TextMerge(base, ours, theirs, merge.Manual, false)
	require.NoError(t, err)
	require.False(t, conflicted)
	require.Equal(t, "a\nB\nc\n", out)
}

func TestTextMergeBothChangedIdentically(t *testing.T) {
	base := "a\nb\nc\n"
	ours := "a\nX\nc\n"
	theirs := "a\nX\nc\n"

	out, conflicted, err := merge.TextMerge(base, ours, theirs, merge.Manual, false)
	require.NoError(t, err)
	require.False(t, conflicted)
	require.Equal(t, "a\nX\nc\n", out)
}

func TestTextMergeConflictMarkers(t *testing.T) {
	base := "a\nb\nc\n"
	ours := "a\nOURS\nc\n"
	theirs := "a\nTHEIRS\nc\n"

	out, conflicted, err := merge.TextMerge(base, ours, theirs, merge.Manual, false)
	require.NoError(t, err)
	require.True(t, conflicted)
	require.True(t, strings.Contains(out, "<<<<<<< ours"))
	require.True(t, strings.Contains(out, "OURS"))
	require.True(t, strings.Contains(out, "======="))
	require.True(t, strings.Contains(out, "THEIRS"))
	require.True(t, strings.Contains(out, ">>>>>>> theirs"))
}

func TestTextMergeStrategies(t *testing.T) {
	base := "a\nb\nc\n"
	ours := "a\nOURS\nc\n"
	theirs := "a\nTHEIRS\nc\n"

	oursOut, conflicted, err := merge.TextMerge(base, ours, theirs, merge.Ours, false)
	require.NoError(t, err)
	require.False(t, conflicted)
	require.Equal(t, "a\nOURS\nc\n", oursOut)

	theirsOut, conflicted, err := merge.TextMerge(base, ours, theirs, merge.Theirs, false)
	require.NoError(t, err)
	require.False(t, conflicted)
	require.Equal(t, "a\nTHEIRS\nc\n", theirsOut)

	unionOut, conflicted, err := merge.TextMerge(base, ours, theirs, merge.Union, false)
	require.NoError(t, err)
	require.False(t, conflicted)
	require.Equal(t, "a\nOURS\nTHEIRS\nc\n", unionOut)

	recentOut, conflicted, err := merge.TextMerge(base, ours, theirs, merge.Recent, true)
	require.NoError(t, err)
	require.False(t, conflicted)
	require.Equal(t, "a\nOURS\nc\n", recentOut)
}
