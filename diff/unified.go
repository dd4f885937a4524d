package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around each change
// when none is given explicitly.
const DefaultContext = 3

// LineOp discriminates the three line states a unified hunk line carries.
type LineOp int8

const (
	LineEqual LineOp = iota
	LineDelete
	LineInsert
)

// Line is one line of a hunk body, tagged with its role and its 1-based
// position in the side(s) it belongs to (0 when not applicable).
type Line struct {
	Op      LineOp
	Text    string
	OldNo   int
	NewNo   int
}

// Hunk is a contiguous block of unified-diff output: a range in each side
// plus the context and changed lines between them.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Body               []Line
}

// BinaryDiff is an empty marker type for a comparison in which either side
// is binary. It carries no hunk body, and nothing in this package produces
// or formats it.
type BinaryDiff struct{}

// Flatten expands a line-collapsed edit script (as produced by Do) into a
// per-line sequence, numbering each line's position in the side(s) it
// belongs to. The merge package reuses this to align two edit scripts
// against a shared base for three-way text merging.
func Flatten(diffs []diffmatchpatch.Diff) []Line {
	return flatten(diffs)
}

func flatten(diffs []diffmatchpatch.Diff) []Line {
	var out []Line
	oldNo, newNo := 1, 1
	for _, d := range diffs {
		text := d.Text
		trailingNewline := strings.HasSuffix(text, "\n")
		lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		for i, l := range lines {
			if i == len(lines)-1 && l == "" && !trailingNewline {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				out = append(out, Line{Op: LineEqual, Text: l, OldNo: oldNo, NewNo: newNo})
				oldNo++
				newNo++
			case diffmatchpatch.DiffDelete:
				out = append(out, Line{Op: LineDelete, Text: l, OldNo: oldNo})
				oldNo++
			case diffmatchpatch.DiffInsert:
				out = append(out, Line{Op: LineInsert, Text: l, NewNo: newNo})
				newNo++
			}
		}
	}
	return out
}

// Hunks groups the edit script diffs produced by Do into unified hunks,
// keeping context lines of unchanged text around each change and merging
// any two hunks that end up within 2*context lines of each other.
func Hunks(diffs []diffmatchpatch.Diff, context int) []Hunk {
	if context < 0 {
		context = DefaultContext
	}
	lines := flatten(diffs)

	var changed []int
	for i, l := range lines {
		if l.Op != LineEqual {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	type span struct{ lo, hi int }
	var spans []span
	lo, hi := changed[0], changed[0]
	for _, idx := range changed[1:] {
		if idx-hi <= 2*context {
			hi = idx
			continue
		}
		spans = append(spans, span{lo, hi})
		lo, hi = idx, idx
	}
	spans = append(spans, span{lo, hi})

	var hunks []Hunk
	for _, sp := range spans {
		start := sp.lo - context
		if start < 0 {
			start = 0
		}
		end := sp.hi + context
		if end > len(lines)-1 {
			end = len(lines) - 1
		}
		body := lines[start : end+1]
		h := Hunk{Body: body}
		for _, l := range body {
			switch l.Op {
			case LineEqual:
				h.OldLines++
				h.NewLines++
			case LineDelete:
				h.OldLines++
			case LineInsert:
				h.NewLines++
			}
		}
		h.OldStart = firstOldNo(body)
		h.NewStart = firstNewNo(body)
		hunks = append(hunks, h)
	}
	return hunks
}

func firstOldNo(body []Line) int {
	for _, l := range body {
		if l.OldNo != 0 {
			return l.OldNo
		}
	}
	return 0
}

func firstNewNo(body []Line) int {
	for _, l := range body {
		if l.NewNo != 0 {
			return l.NewNo
		}
	}
	return 0
}

// FormatUnified renders hunks as a textual unified diff body (without the
// "--- a/..."/"+++ b/..." file header lines, which callers prepend with
// their own path formatting).
func FormatUnified(hunks []Hunk) string {
	var b strings.Builder
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		for _, l := range h.Body {
			switch l.Op {
			case LineEqual:
				b.WriteString(" ")
			case LineDelete:
				b.WriteString("-")
			case LineInsert:
				b.WriteString("+")
			}
			b.WriteString(l.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
