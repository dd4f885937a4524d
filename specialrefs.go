package lit

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/storage/filesystem"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

const (
	origHeadRef       plumbing.ReferenceName = dotlit.OrigHeadPath
	mergeHeadRef      plumbing.ReferenceName = dotlit.MergeHeadPath
	cherryPickHeadRef plumbing.ReferenceName = dotlit.CherryPickPath
)

func (r *Repository) setOrigHead(h plumbing.Hash) error {
	return r.Storage.Refs.SetReference(plumbing.NewHashReference(origHeadRef, h))
}

func (r *Repository) readHashRef(name plumbing.ReferenceName) (plumbing.Hash, bool, error) {
	ref, err := r.Storage.Refs.Reference(name)
	if err != nil {
		if isNotFound(err) {
			return plumbing.ZeroHash, false, nil
		}
		return plumbing.ZeroHash, false, err
	}
	return ref.Hash(), true, nil
}

func (r *Repository) clearRef(name plumbing.ReferenceName) error {
	if err := r.Storage.Refs.RemoveReference(name); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// mergeInProgress reports whether MERGE_HEAD is present, which is how a
// conflicted merge marks itself as unfinished (a cherry-pick uses
// CHERRY_PICK_HEAD instead).
func (r *Repository) mergeInProgress() (bool, error) {
	_, ok, err := r.readHashRef(mergeHeadRef)
	return ok, err
}

func (r *Repository) cherryPickInProgress() (bool, error) {
	_, ok, err := r.readHashRef(cherryPickHeadRef)
	return ok, err
}

func (r *Repository) rebaseInProgress() (bool, error) {
	_, err := readTextFile(r.Storage, dotlit.RebaseOntoFile)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) writeMergeHead(h plumbing.Hash, message string) error {
	if err := r.Storage.Refs.SetReference(plumbing.NewHashReference(mergeHeadRef, h)); err != nil {
		return err
	}
	return writeTextFile(r.Storage, dotlit.MergeMsgPath, message)
}

func (r *Repository) clearMergeState() error {
	if err := r.clearRef(mergeHeadRef); err != nil {
		return err
	}
	return removeIfExists(r.Storage, dotlit.MergeMsgPath)
}

func (r *Repository) mergeMessage() (string, error) {
	msg, err := readTextFile(r.Storage, dotlit.MergeMsgPath)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimRight(msg, "\n"), nil
}

func (r *Repository) clearCherryPickState() error {
	return r.clearRef(cherryPickHeadRef)
}

// writeTextFile persists content at a path relative to the .lit directory.
func writeTextFile(s *filesystem.Storage, path, content string) error {
	return s.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

// readTextFile reads a path relative to the .lit directory, returning a
// NotFoundError (checkable with isNotFound) when it doesn't exist.
func readTextFile(s *filesystem.Storage, path string) (string, error) {
	f, err := s.Fs().Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &errkind.NotFoundError{Kind: "file", Name: path}
		}
		return "", &errkind.IOError{Op: "open " + path, Inner: err}
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", &errkind.IOError{Op: "read " + path, Inner: err}
	}
	return string(b), nil
}

func removeIfExists(s *filesystem.Storage, path string) error {
	if err := s.Fs().Remove(path); err != nil && !os.IsNotExist(err) {
		return &errkind.IOError{Op: "remove " + path, Inner: err}
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *errkind.NotFoundError
	return errors.As(err, &nf) || errors.Is(err, errkind.ErrNotFound)
}
