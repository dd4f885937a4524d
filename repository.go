// Package lit ties the object store, index, ref store, and working tree
// together into the operations a caller actually wants: init, commit, log,
// merge, cherry-pick, rebase, reset, stash, and tag. Everything below this
// package is a storage or algorithm primitive; this package is where they
// compose into Git-shaped behavior.
package lit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
	"github.com/firiho/lit/storage/filesystem"
)

// DotDir is the name of the repository's metadata directory inside a
// non-bare working copy.
const DotDir = ".lit"

// Repository is the entry point for every operation in this package: the
// object/ref/index/config storage plus (for a non-bare repository) the
// working tree layered on top of it.
type Repository struct {
	Storage *filesystem.Storage

	worktreeFS billy.Filesystem // nil for a bare repository
	worktree   *Worktree        // nil for a bare repository

	Log *logrus.Logger
}

// Init creates a new repository at path. A non-bare repository stores its
// metadata under path/.lit and checks out nothing (there is nothing to
// check out yet); a bare repository stores the same layout directly at
// path.
func Init(path string, bare bool) (*Repository, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, &errkind.IOError{Op: "mkdir " + path, Inner: err}
	}

	root := osfs.New(path)
	litFS := root
	if !bare {
		var err error
		litFS, err = root.Chroot(DotDir)
		if err != nil {
			return nil, &errkind.IOError{Op: "chroot " + DotDir, Inner: err}
		}
	}

	storage, err := filesystem.Init(litFS, bare)
	if err != nil {
		return nil, err
	}

	r := &Repository{Storage: storage, Log: newLogger()}
	if !bare {
		r.worktreeFS = root
		r.worktree = newWorktree(r, root)
	}
	return r, nil
}

// Open discovers and opens a repository starting the walk-up search at
// path (a file or directory inside it). It looks first for a non-bare
// ".lit" directory, then for a bare layout (HEAD, objects, and refs living
// directly in a candidate directory), exactly the way a foreign Git client
// discovers ".git" by walking toward the filesystem root.
func Open(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &errkind.IOError{Op: "resolve " + path, Inner: err}
	}

	dir := abs
	if fi, err := os.Stat(abs); err == nil && !fi.IsDir() {
		dir = filepath.Dir(abs)
	}

	for {
		if isNonBareRoot(dir) {
			return openNonBare(dir)
		}
		if isBareRoot(dir) {
			return openBare(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errkind.ErrNotARepository
		}
		dir = parent
	}
}

func isNonBareRoot(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, DotDir))
	return err == nil && fi.IsDir()
}

func isBareRoot(dir string) bool {
	for _, name := range []string{"HEAD", "objects", "refs"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

func openNonBare(dir string) (*Repository, error) {
	root := osfs.New(dir)
	litFS, err := root.Chroot(DotDir)
	if err != nil {
		return nil, &errkind.IOError{Op: "chroot " + DotDir, Inner: err}
	}
	r := &Repository{
		Storage:    filesystem.NewStorage(litFS),
		worktreeFS: root,
		Log:        newLogger(),
	}
	r.worktree = newWorktree(r, root)
	return r, nil
}

func openBare(dir string) (*Repository, error) {
	litFS := osfs.New(dir)
	return &Repository{
		Storage: filesystem.NewStorage(litFS),
		Log:     newLogger(),
	}, nil
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}

// IsBare reports whether r has no working tree.
func (r *Repository) IsBare() bool { return r.worktree == nil }

// Worktree returns the repository's working tree, failing for a bare
// repository which has none.
func (r *Repository) Worktree() (*Worktree, error) {
	if r.worktree == nil {
		return nil, errkind.ErrNotARepository
	}
	return r.worktree, nil
}

// Head returns the resolved reference HEAD currently names: a symbolic ref
// while attached to a branch, or a hash ref when detached.
func (r *Repository) Head() (*plumbing.Reference, error) {
	return r.Storage.Refs.Reference(plumbing.HEAD)
}

// HeadHash resolves HEAD to a direct object id, returning errkind.ErrUnbornBranch
// if the attached branch has no commits yet.
func (r *Repository) HeadHash() (plumbing.Hash, error) {
	h, err := r.Storage.HeadHash()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if h.IsZero() {
		return plumbing.ZeroHash, errkind.ErrUnbornBranch
	}
	return h, nil
}

// HeadCommit resolves HEAD to its decoded Commit.
func (r *Repository) HeadCommit() (*object.Commit, error) {
	h, err := r.HeadHash()
	if err != nil {
		return nil, err
	}
	return r.Storage.Objects.CommitObject(h)
}

// CurrentBranch returns the short name of the branch HEAD is attached to,
// and false if HEAD is detached.
func (r *Repository) CurrentBranch() (string, bool) {
	head, err := r.Head()
	if err != nil || head.Type() != plumbing.SymbolicReference {
		return "", false
	}
	return head.Target().Short(), true
}

// Resolve resolves any revision form §4.3 describes: a literal oid, HEAD,
// a full ref path, a short branch/tag/remote-tracking name, or a short oid
// prefix.
func (r *Repository) Resolve(rev string) (plumbing.Hash, error) {
	return r.Storage.Refs.Resolve(rev)
}

func (r *Repository) String() string {
	if r.IsBare() {
		return "bare repository"
	}
	return fmt.Sprintf("repository at %s", r.worktreeFS.Root())
}
