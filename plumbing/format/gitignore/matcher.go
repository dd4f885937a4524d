package gitignore

// Matcher holds a list of ordered Patterns to test paths against, the way
// Git layers ignore files from least to most specific.
type Matcher interface {
	// Match reports whether path should be ignored, after evaluating every
	// pattern in order and keeping the last one that had an opinion.
	Match(path []string, isDir bool) bool
}

type matcher struct {
	patterns []Pattern
}

// NewMatcher returns a Matcher that evaluates ps in order, last match wins.
func NewMatcher(ps []Pattern) Matcher {
	return &matcher{patterns: ps}
}

func (m *matcher) Match(path []string, isDir bool) bool {
	result := NoMatch
	for _, p := range m.patterns {
		if r := p.Match(path, isDir); r != NoMatch {
			result = r
		}
	}
	return result == Exclude
}
