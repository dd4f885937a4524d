package gitignore

import (
	"bytes"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/firiho/lit/plumbing/format/config"
)

const (
	commentPrefix = "#"
	coreSection   = "core"
	excludesfile  = "excludesfile"
	gitDir        = ".git"
	gitignoreFile = ".gitignore"
	gitconfigFile = ".gitconfig"
	systemFile    = "/etc/gitconfig"
)

// readIgnoreFile reads a single ignore file located at fs.Join(path...,
// ignoreFile) and parses every non-blank, non-comment line as a Pattern
// scoped to path.
func readIgnoreFile(fs billy.Filesystem, path []string, ignoreFile string) (ps []Pattern, err error) {
	return readIgnoreFileAt(fs, fs.Join(append(append([]string{}, path...), ignoreFile)...), path)
}

// readIgnoreFileAt reads a single ignore file at the exact path filePath and
// parses every non-blank, non-comment line as a Pattern scoped to domain.
// The file's own location need not match domain, as is the case for
// .git/info/exclude, which applies repository-wide despite living under
// .git/info.
func readIgnoreFileAt(fs billy.Filesystem, filePath string, domain []string) (ps []Pattern, err error) {
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

	for _, s := range strings.Split(string(data), "\n") {
		s = strings.TrimRight(s, "\r")
		if strings.HasPrefix(strings.TrimSpace(s), commentPrefix) || len(strings.TrimSpace(s)) == 0 {
			continue
		}
		ps = append(ps, ParsePattern(s, domain))
	}
	return ps, nil
}

// ReadPatterns reads the ignore patterns found at path and, recursively, in
// every subdirectory beneath it (skipping .git), returning them in
// ascending priority order: a pattern found deeper overrides one found
// higher up, matching Git's own precedence for nested .gitignore files. A
// subdirectory excluded by the patterns found so far is not descended into.
func ReadPatterns(fs billy.Filesystem, path []string) (ps []Pattern, err error) {
	return readPatterns(fs, path, nil)
}

// readPatterns is ReadPatterns with the patterns already collected from
// path's ancestors passed in as inherited.
func readPatterns(fs billy.Filesystem, path []string, inherited []Pattern) (ps []Pattern, err error) {
	ps, err = readIgnoreFile(fs, path, gitignoreFile)
	if err != nil {
		return nil, err
	}

	if len(path) == 0 {
		extra, err := readIgnoreFileAt(fs, fs.Join(gitDir, "info", "exclude"), nil)
		if err != nil {
			return nil, err
		}
		ps = append(ps, extra...)
	}

	fis, err := fs.ReadDir(fs.Join(path...))
	if err != nil {
		return nil, err
	}

	for _, fi := range fis {
		if !fi.IsDir() || fi.Name() == gitDir {
			continue
		}

		subpath := make([]string, 0, len(path)+1)
		subpath = append(subpath, path...)
		subpath = append(subpath, fi.Name())

		scope := append(append([]Pattern{}, inherited...), ps...)
		if NewMatcher(scope).Match(subpath, true) {
			continue
		}

		subps, err := readPatterns(fs, subpath, scope)
		if err != nil {
			return nil, err
		}
		ps = append(ps, subps...)
	}

	return ps, nil
}

func loadConfigExcludesfile(fs billy.Filesystem, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	raw := config.New()
	if err := config.NewDecoder(bytes.NewReader(b)).Decode(raw); err != nil {
		return "", err
	}

	return raw.Section(coreSection).Option(excludesfile), nil
}

// expandTilde resolves a leading "~" or "~user" component against the
// relevant home directory, the way Git expands core.excludesfile.
func expandTilde(fs billy.Filesystem, path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	rest := path[1:]
	rest = strings.TrimPrefix(rest, "/")

	if idx := strings.IndexByte(path, '/'); idx > 1 {
		username := path[1:idx]
		u, err := user.Lookup(username)
		if err != nil {
			return "", err
		}
		return fs.Join(u.HomeDir, path[idx+1:]), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return fs.Join(home, rest), nil
}

func loadPatternsFromConfig(fs billy.Filesystem, configPath string) (ps []Pattern, err error) {
	raw, err := loadConfigExcludesfile(fs, configPath)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}

	resolved, err := expandTilde(fs, raw)
	if err != nil {
		return nil, err
	}

	return readIgnoreFile(fs, nil, resolved)
}

// LoadGlobalPatterns loads the patterns referenced by core.excludesfile in
// the current user's ~/.gitconfig. A missing ~/.gitconfig, a missing
// core.excludesfile entry, or a missing excludes file all yield (nil, nil).
func LoadGlobalPatterns(fs billy.Filesystem) ([]Pattern, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return loadPatternsFromConfig(fs, fs.Join(home, gitconfigFile))
}

// LoadSystemPatterns loads the patterns referenced by core.excludesfile in
// /etc/gitconfig.
func LoadSystemPatterns(fs billy.Filesystem) ([]Pattern, error) {
	return loadPatternsFromConfig(fs, systemFile)
}
