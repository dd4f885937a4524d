package remote

import (
	"errors"
	"fmt"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
	"github.com/firiho/lit/storage/filesystem"
)

// Push transfers each named local branch's missing objects to url and
// advances the remote's own refs/heads/<branch> with a compare-and-set
// against the tip Push last observed there, failing with
// errkind.NonFastForwardError unless the remote tip is an ancestor of the
// local tip or force is set, per §4.9. branches == nil pushes every local
// branch.
func Push(src *filesystem.Storage, url string, branches []string, force bool) error {
	dst, err := Open(url)
	if err != nil {
		return err
	}

	wanted, err := resolveBranches(src, branches)
	if err != nil {
		return err
	}

	for branch, hash := range wanted {
		name := plumbing.NewBranchReferenceName(branch)

		remoteHash := plumbing.ZeroHash
		if remoteRef, err := dst.Refs.Reference(name); err == nil {
			remoteHash = remoteRef.Hash()
		} else if !isNotFound(err) {
			return err
		}

		if !force && !remoteHash.IsZero() {
			// src already holds hash's full local history, so its ancestor
			// set can be walked from src alone; remoteHash only needs to be
			// compared by value, never decoded, so it need not exist in src.
			ancestor, err := object.IsAncestor(src.Objects, remoteHash, hash)
			if err != nil {
				return err
			}
			if !ancestor {
				return &errkind.NonFastForwardError{Ref: string(name)}
			}
		}

		if err := CopyObjects(dst, src, hash); err != nil {
			return fmt.Errorf("push %s: %w", branch, err)
		}
		if err := dst.Refs.CompareAndSetReference(plumbing.NewHashReference(name, hash), remoteHash); err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *errkind.NotFoundError
	return errors.As(err, &nf)
}
