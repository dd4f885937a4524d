// Package diff computes line-level text diffs and unified hunks, detects
// binary content, and walks two trees to report the paths that changed
// between them.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// binarySniffLen is how much of each side is inspected for a NUL byte
// before the engine gives up and calls the pair binary.
const binarySniffLen = 8192

// DetectBinary reports whether content looks binary: a NUL byte anywhere in
// its first 8 KB. Both diff and status share this predicate so a binary
// blob is reported consistently everywhere.
func DetectBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	for _, b := range content {
		if b == 0 {
			return true
		}
	}
	return false
}

// Do computes the line-level edit script turning a into b. Lines are first
// collapsed to single runes with DiffLinesToRunes so the LCS engine
// operates on whole lines instead of characters, then the rune diff is
// expanded back into full lines with DiffCharsToLines.
func Do(a, b string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	aRunes, bRunes, lines := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffMainRunes(aRunes, bRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	return dmp.DiffCleanupSemantic(diffs)
}

// SplitLines breaks text into its lines using the same convention Do's
// internal line numbering relies on: a trailing newline does not produce a
// trailing empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	trailingNewline := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" && !trailingNewline {
		return nil
	}
	return lines
}
