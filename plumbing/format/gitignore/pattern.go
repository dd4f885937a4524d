// Package gitignore parses .litignore-style pattern files and matches
// repository-relative paths against them, the same way Git decides which
// untracked paths to hide from "git status" and "git add .".
package gitignore

import (
	"path/filepath"
	"strings"
)

// MatchResult is the outcome of testing one path against one Pattern.
type MatchResult int8

const (
	// NoMatch means the pattern says nothing about this path.
	NoMatch MatchResult = iota
	// Exclude means the pattern ignores this path.
	Exclude
	// Include means a "!"-negated pattern un-ignores this path.
	Include
)

// Pattern is a single parsed line from an ignore file.
type Pattern interface {
	// Match reports how this pattern judges path, a slice of path
	// components relative to the repository root. isDir tells the pattern
	// whether the final component names a directory, which matters for
	// patterns anchored with a trailing "/".
	Match(path []string, isDir bool) MatchResult
}

type pattern struct {
	domain    []string
	segments  []string
	inclusion bool
	dirOnly   bool
	isGlob    bool
}

// ParsePattern parses a single ignore-file line (already trimmed of
// comments and trailing whitespace) into a Pattern. domain is the
// repository-relative directory the pattern file itself lives in; nil
// means the pattern applies from the repository root.
func ParsePattern(p string, domain []string) Pattern {
	res := &pattern{domain: domain}

	if len(p) > 0 && p[0] == '!' {
		res.inclusion = true
		p = p[1:]
	}

	if len(p) > 1 && p[len(p)-1] == '/' {
		res.dirOnly = true
		p = p[:len(p)-1]
	}

	for i := 0; i < len(p)-1; i++ {
		if p[i] == '/' {
			res.isGlob = true
			break
		}
	}

	res.segments = splitPath(p)
	return res
}

func splitPath(p string) []string {
	var out []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			out = append(out, p[start:i])
			start = i + 1
		}
	}
	return append(out, p[start:])
}

func (p *pattern) Match(path []string, isDir bool) MatchResult {
	if len(path) < len(p.domain) {
		return NoMatch
	}
	for i, d := range p.domain {
		if path[i] != d {
			return NoMatch
		}
	}
	relative := path[len(p.domain):]
	if len(relative) == 0 {
		return NoMatch
	}

	var matched bool
	if p.isGlob {
		matched = matchAnchored(p.segments, relative, p.dirOnly, isDir)
	} else {
		matched = matchAnywhere(p.segments[0], relative, p.dirOnly, isDir)
	}

	if !matched {
		return NoMatch
	}
	if p.inclusion {
		return Include
	}
	return Exclude
}

// matchAnywhere tries a single-segment pattern against every position in
// path, the way a bare ignore-file entry like "*.o" matches at any depth.
func matchAnywhere(segment string, path []string, dirOnly, isDir bool) bool {
	for i, elem := range path {
		ok, err := filepath.Match(segment, elem)
		if err != nil || !ok {
			continue
		}
		if i == len(path)-1 && dirOnly && !isDir {
			continue
		}
		return true
	}
	return false
}

// matchAnchored matches a multi-segment (or leading-slash) pattern starting
// at the front of path, honoring "**" as a wildcard run of zero or more
// intermediate path segments.
func matchAnchored(segments, path []string, dirOnly, isDir bool) bool {
	ok, consumedAll := matchSegments(segments, path)
	if !ok {
		return false
	}
	if dirOnly && consumedAll && !isDir {
		return false
	}
	return true
}

// containsDoubleAsterisk reports whether seg embeds "**" inside a longer
// segment.
func containsDoubleAsterisk(seg string) bool {
	return seg != "**" && strings.Contains(seg, "**")
}

// matchSegments consumes segments against a prefix of path. It returns
// whether the whole pattern matched, and whether doing so consumed path to
// its very end (needed to decide whether a trailing-slash pattern's isDir
// requirement applies).
func matchSegments(segments, path []string) (matched, consumedAll bool) {
	for len(segments) > 0 {
		seg := segments[0]

		if seg == "" {
			segments = segments[1:]
			continue
		}

		if seg == "**" {
			if len(segments) == 1 {
				return true, len(path) == 0
			}
			for i := 0; i <= len(path); i++ {
				if ok, all := matchSegments(segments[1:], path[i:]); ok {
					return true, all
				}
			}
			return false, false
		}

		if len(path) == 0 {
			return false, false
		}
		if containsDoubleAsterisk(seg) {
			// "**" only acts as a wildcard when it is its own path segment;
			// embedded in a larger segment it can never match anything.
			return false, false
		}
		ok, err := filepath.Match(seg, path[0])
		if err != nil || !ok {
			return false, false
		}
		segments = segments[1:]
		path = path[1:]
	}
	return true, len(path) == 0
}
