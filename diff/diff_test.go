package diff_test

import (
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/require"

	"github.com/firiho/lit/diff"
)

func TestDetectBinary(t *testing.T) {
	require.False(t, diff.DetectBinary([]byte("hello\nworld\n")))
	require.True(t, diff.DetectBinary([]byte("hello\x00world")))

	padded := strings.Repeat("a", 8192) + "\x00tail"
	require.False(t, diff.DetectBinary([]byte(padded)))
}

func TestDoLineLevel(t *testing.T) {
	a := "one\ntwo\nthree\n"
	b := "one\ntwo-changed\nthree\n"

	diffs := diff.Do(a, b)

	var deleted, inserted bool
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffDelete && strings.Contains(d.Text, "two\n") {
			deleted = true
		}
		if d.Type == diffmatchpatch.DiffInsert && strings.Contains(d.Text, "two-changed\n") {
			inserted = true
		}
	}
	require.True(t, deleted)
	require.True(t, inserted)
}

func TestHunksMergesNearbyChanges(t *testing.T) {
	a := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"
	b := "1\n2\nX\n4\n5\n6\n7\n8\nY\n10\n"

	diffs := diff.Do(a, b)
	hunks := diff.Hunks(diffs, 3)

	require.Len(t, hunks, 1, "two changes six lines apart should merge under 2*context")
}

func TestHunksSplitsFarChanges(t *testing.T) {
	lines := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		lines = append(lines, "line")
	}
	a := strings.Join(lines, "\n") + "\n"

	changed := append([]string(nil), lines...)
	changed[1] = "CHANGED-NEAR-TOP"
	changed[35] = "CHANGED-NEAR-BOTTOM"
	b := strings.Join(changed, "\n") + "\n"

	diffs := diff.Do(a, b)
	hunks := diff.Hunks(diffs, 3)

	require.Len(t, hunks, 2)
}

func TestFormatUnified(t *testing.T) {
	a := "keep\nold\nkeep\n"
	b := "keep\nnew\nkeep\n"

	hunks := diff.Hunks(diff.Do(a, b), 1)
	out := diff.FormatUnified(hunks)

	require.Contains(t, out, "@@ -1,3 +1,3 @@")
	require.Contains(t, out, "-old")
	require.Contains(t, out, "+new")
}
