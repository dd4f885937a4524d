// Package ignore aggregates a working tree's ignore patterns: a repository
// wide "info/exclude" plus a ".litignore" at every directory level, layered
// in the same least-to-most-specific order Git uses for nested ".gitignore"
// files. The result is a single gitignore.Matcher callers query per path.
package ignore

import (
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/firiho/lit/plumbing/format/gitignore"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

const (
	ignoreFileName = ".litignore"
	commentPrefix  = "#"
	dotDir         = ".lit"
)

// Matcher answers whether a working-tree-relative path is ignored.
type Matcher struct {
	m gitignore.Matcher
}

// NewMatcher wraps an already-collected, priority-ordered pattern list.
func NewMatcher(patterns []gitignore.Pattern) *Matcher {
	return &Matcher{m: gitignore.NewMatcher(patterns)}
}

// Match reports whether path (slash-separated, relative to the worktree
// root) is ignored. Callers are responsible for never calling this on a
// path the index already tracks: tracked files are never ignored.
//
// A negated pattern cannot resurrect a path whose parent directory is
// itself excluded, matching Git's own rule that it never descends into an
// ignored directory to look for re-including patterns. Match enforces this
// by walking path component by component and stopping at the first
// excluded ancestor.
func (m *Matcher) Match(path string, isDir bool) bool {
	if path == "" {
		return false
	}
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if m.m.Match(segments[:i], true) {
			return true
		}
	}
	return m.m.Match(segments, isDir)
}

// Load walks worktree collecting every ".litignore" file plus the
// repository-wide excludes file at litDir/info/exclude, and returns a
// Matcher ready to query. litDir is rooted at the ".lit" directory.
func Load(worktree, litDir billy.Filesystem) (*Matcher, error) {
	patterns, err := ReadPatterns(worktree, litDir)
	if err != nil {
		return nil, err
	}
	return NewMatcher(patterns), nil
}

// ReadPatterns collects the repository-wide excludes first, then every
// ".litignore" found while walking worktree top-down, skipping the ".lit"
// directory itself. A pattern found deeper overrides one found higher up,
// since gitignore.Matcher keeps the last pattern that had an opinion.
func ReadPatterns(worktree, litDir billy.Filesystem) ([]gitignore.Pattern, error) {
	var patterns []gitignore.Pattern

	exclude, err := readIgnoreFile(litDir, litDir.Join(dotlit.InfoPath, dotlit.ExcludePath), nil)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, exclude...)

	if err := collectDir(worktree, nil, &patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

func collectDir(fs billy.Filesystem, path []string, out *[]gitignore.Pattern) error {
	here, err := readIgnoreFile(fs, fs.Join(append(append([]string{}, path...), ignoreFileName)...), path)
	if err != nil {
		return err
	}
	*out = append(*out, here...)

	fis, err := fs.ReadDir(fs.Join(path...))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, fi := range fis {
		if !fi.IsDir() || fi.Name() == dotDir {
			continue
		}
		subpath := make([]string, 0, len(path)+1)
		subpath = append(subpath, path...)
		subpath = append(subpath, fi.Name())
		if err := collectDir(fs, subpath, out); err != nil {
			return err
		}
	}
	return nil
}

// readIgnoreFile reads a single ignore file at filePath and parses every
// non-blank, non-comment line as a Pattern scoped to domain. The file's own
// location need not match domain: info/exclude applies repository-wide
// despite living under "info".
func readIgnoreFile(fs billy.Filesystem, filePath string, domain []string) (ps []gitignore.Pattern, err error) {
	f, err := fs.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}
		ps = append(ps, gitignore.ParsePattern(line, domain))
	}
	return ps, nil
}
