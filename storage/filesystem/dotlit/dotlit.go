// Package dotlit knows the on-disk layout of a .lit directory: where
// objects, refs, the index, config, and the special history-op marker
// files live, and how to write any of them atomically.
package dotlit

import (
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
)

const (
	ObjectsPath      = "objects"
	RefsPath         = "refs"
	HeadPath         = "HEAD"
	IndexPath        = "index"
	ConfigPath       = "config"
	OrigHeadPath     = "ORIG_HEAD"
	MergeHeadPath    = "MERGE_HEAD"
	MergeMsgPath     = "MERGE_MSG"
	CherryPickPath   = "CHERRY_PICK_HEAD"
	RebaseStateDir   = "REBASE_STATE"
	RebaseOntoFile   = "REBASE_STATE/onto"
	RebaseTodoFile   = "REBASE_STATE/todo"
	RebaseCurrentFile = "REBASE_STATE/current"
	InfoPath         = "info"
	ExcludePath      = "exclude"
	StashRefPath     = "refs/stash"
	StashListPath    = "stash_list"
)

// Repository wraps a billy.Filesystem rooted at a .lit directory.
type Repository struct {
	fs billy.Filesystem
}

// New returns a Repository rooted at fs.
func New(fs billy.Filesystem) *Repository {
	return &Repository{fs: fs}
}

// Fs returns the underlying filesystem, rooted at the .lit directory.
func (r *Repository) Fs() billy.Filesystem { return r.fs }

// ObjectPath returns the loose-object path for hash, e.g.
// "objects/af/c83b...".
func (r *Repository) ObjectPath(hash plumbing.Hash) string {
	hex := hash.String()
	return r.fs.Join(ObjectsPath, hex[:2], hex[2:])
}

// ObjectDir returns the two-hex-character shard directory for a hash.
func (r *Repository) ObjectDir(hash plumbing.Hash) string {
	return r.fs.Join(ObjectsPath, hash.String()[:2])
}

// RefPath returns the on-disk path for a reference name, e.g.
// "refs/heads/main" or "HEAD".
func (r *Repository) RefPath(name string) string {
	return r.fs.Join(name)
}

// WriteFileAtomic writes the bytes produced by fill to path via a temp file
// in the same directory followed by a rename, so readers never observe a
// partially written file.
func (r *Repository) WriteFileAtomic(path string, fill func(io.Writer) error) error {
	dir := r.fs.Join(path, "..")
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return &errkind.IOError{Op: "mkdir " + dir, Inner: err}
	}

	tmp, err := r.fs.TempFile(dir, "tmp-"+uuid.NewString())
	if err != nil {
		return &errkind.IOError{Op: "create temp file in " + dir, Inner: err}
	}
	tmpName := tmp.Name()

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return &errkind.IOError{Op: "close temp file", Inner: err}
	}
	if err := r.fs.Rename(tmpName, path); err != nil {
		_ = r.fs.Remove(tmpName)
		return &errkind.IOError{Op: "rename into " + path, Inner: err}
	}
	return nil
}

// Lock is an advisory lock file, e.g. "index.lock" or "refs/heads/main.lock",
// held for the duration of one mutating operation.
type Lock struct {
	fs   billy.Filesystem
	path string
	file billy.File
}

// NewLock returns a Lock for the given target path (without the ".lock"
// suffix, which is added automatically).
func NewLock(fs billy.Filesystem, targetPath string) *Lock {
	return &Lock{fs: fs, path: targetPath + ".lock"}
}

// Acquire creates the lock file, failing if it already exists.
func (l *Lock) Acquire() error {
	dir := l.fs.Join(l.path, "..")
	if err := l.fs.MkdirAll(dir, 0o755); err != nil {
		return &errkind.IOError{Op: "mkdir " + dir, Inner: err}
	}

	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &errkind.IOError{Op: "acquire lock " + l.path, Inner: errkind.ErrAlreadyExists}
		}
		return &errkind.IOError{Op: "acquire lock " + l.path, Inner: err}
	}
	l.file = f
	return nil
}

// File returns the open lock file, usable to write the pending new value
// before committing it into place with CommitAndRelease.
func (l *Lock) File() billy.File { return l.file }

// CommitAndRelease renames the lock file onto targetPath, releasing the
// lock by replacing it with the real file.
func (l *Lock) CommitAndRelease(targetPath string) error {
	if err := l.file.Close(); err != nil {
		return &errkind.IOError{Op: "close lock file", Inner: err}
	}
	return l.fs.Rename(l.path, targetPath)
}

// Release discards the lock without committing any change.
func (l *Lock) Release() error {
	if l.file != nil {
		_ = l.file.Close()
	}
	if err := l.fs.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return &errkind.IOError{Op: "remove lock " + l.path, Inner: err}
	}
	return nil
}
