// Package merge implements three-way tree and text merging: reducing
// multiple merge bases to a single virtual one, walking base/ours/theirs
// trees per the standard add/modify/delete decision table, and a diff3-style
// line merge with conflict markers and auto-resolution strategies.
package merge

import (
	"strings"

	"github.com/firiho/lit/diff"
)

// Strategy selects how a text-merge conflict region is resolved instead of
// being left with conflict markers for a person to edit.
type Strategy int8

const (
	// Manual leaves every conflicting region marked up for the caller.
	Manual Strategy = iota
	// Ours keeps the left side of every conflict region.
	Ours
	// Theirs keeps the right side of every conflict region.
	Theirs
	// Union concatenates both sides, ours first.
	Union
	// Recent picks whichever side preferOurs (computed by the caller from
	// the two contributing commits' committer timestamps) names.
	Recent
)

const (
	oursMarker   = "<<<<<<< ours"
	baseMarker   = "======="
	theirsMarker = ">>>>>>> theirs"
)

type anchor struct {
	base    int
	ourIdx  int
	theirIdx int
}

// TextMerge runs a three-way line merge of ours and theirs against base.
// Regions where only one side changed relative to base are taken from that
// side; regions where both changed identically are taken as-is; regions
// where both changed differently are resolved by strategy, or (for
// Manual) emitted between conflict markers and reported via conflicted.
func TextMerge(base, ours, theirs string, strategy Strategy, preferOurs bool) (merged string, conflicted bool, err error) {
	baseLines := diff.SplitLines(base)

	ourFlat := diff.Flatten(diff.Do(base, ours))
	theirFlat := diff.Flatten(diff.Do(base, theirs))

	ourByBase := equalIndexByBase(ourFlat)
	theirByBase := equalIndexByBase(theirFlat)

	anchors := []anchor{{base: 0, ourIdx: -1, theirIdx: -1}}
	for b := 1; b <= len(baseLines); b++ {
		oi, ourOK := ourByBase[b]
		ti, theirOK := theirByBase[b]
		if ourOK && theirOK {
			anchors = append(anchors, anchor{base: b, ourIdx: oi, theirIdx: ti})
		}
	}
	anchors = append(anchors, anchor{base: len(baseLines) + 1, ourIdx: len(ourFlat), theirIdx: len(theirFlat)})

	var out []string
	for i := 0; i+1 < len(anchors); i++ {
		prev, next := anchors[i], anchors[i+1]

		baseBlock := baseLines[prev.base : next.base-1]
		ourBlock := sideLines(ourFlat, prev.ourIdx, next.ourIdx)
		theirBlock := sideLines(theirFlat, prev.theirIdx, next.theirIdx)

		if len(baseBlock) > 0 || len(ourBlock) > 0 || len(theirBlock) > 0 {
			resolved, isConflict := resolveBlock(baseBlock, ourBlock, theirBlock, strategy, preferOurs)
			out = append(out, resolved...)
			if isConflict {
				conflicted = true
			}
		}

		if next.base <= len(baseLines) {
			out = append(out, baseLines[next.base-1])
		}
	}

	return strings.Join(out, "\n") + trailingNewlineIfAny(base, ours, theirs), conflicted, nil
}

func trailingNewlineIfAny(texts ...string) string {
	for _, t := range texts {
		if strings.HasSuffix(t, "\n") {
			return "\n"
		}
	}
	return ""
}

func equalIndexByBase(flat []diff.Line) map[int]int {
	m := make(map[int]int, len(flat))
	for i, l := range flat {
		if l.Op == diff.LineEqual {
			m[l.OldNo] = i
		}
	}
	return m
}

func sideLines(flat []diff.Line, fromIdx, toIdx int) []string {
	var out []string
	for i := fromIdx + 1; i < toIdx; i++ {
		if flat[i].Op == diff.LineDelete {
			continue
		}
		out = append(out, flat[i].Text)
	}
	return out
}

func resolveBlock(base, ours, theirs []string, strategy Strategy, preferOurs bool) ([]string, bool) {
	ourChanged := !equalLines(ours, base)
	theirChanged := !equalLines(theirs, base)

	switch {
	case !ourChanged && !theirChanged:
		return base, false
	case ourChanged && !theirChanged:
		return ours, false
	case !ourChanged && theirChanged:
		return theirs, false
	case equalLines(ours, theirs):
		return ours, false
	}

	switch strategy {
	case Ours:
		return ours, false
	case Theirs:
		return theirs, false
	case Union:
		return append(append([]string{}, ours...), theirs...), false
	case Recent:
		if preferOurs {
			return ours, false
		}
		return theirs, false
	default:
		var marked []string
		marked = append(marked, oursMarker)
		marked = append(marked, ours...)
		marked = append(marked, baseMarker)
		marked = append(marked, theirs...)
		marked = append(marked, theirsMarker)
		return marked, true
	}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
