package lit

import (
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
)

// Commit records the current index as a new commit on HEAD, per §4.5:
// tree = Worktree.WriteTree(), parents = [HEAD] (or none for the first
// commit on an unborn branch), author/committer from AuthorSignature /
// CommitterSignature unless overridden.
func (r *Repository) Commit(message string, opts CommitOptions) (plumbing.Hash, error) {
	wt, err := r.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	tree, err := wt.WriteTree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	var parents []plumbing.Hash
	oldHead, err := r.Storage.HeadHash()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if !oldHead.IsZero() {
		parents = []plumbing.Hash{oldHead}
	}
	if opts.ExtraParent != nil {
		parents = append(parents, *opts.ExtraParent)
	}

	author, committer, err := r.resolveCommitIdentities(opts)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	c := object.NewCommit(tree, parents, author, committer, message)
	if _, err := r.Storage.Objects.SetEncodedObject(c.EncodedObject()); err != nil {
		return plumbing.ZeroHash, err
	}

	if err := r.advanceHead(c.Hash, oldHead); err != nil {
		return plumbing.ZeroHash, err
	}
	return c.Hash, nil
}

// CommitOptions adjusts signature resolution and, for merge commits,
// records the commit's second parent.
type CommitOptions struct {
	Author      *object.Signature
	Committer   *object.Signature
	ExtraParent *plumbing.Hash
}

func (r *Repository) resolveCommitIdentities(opts CommitOptions) (author, committer object.Signature, err error) {
	if opts.Author != nil {
		author = *opts.Author
	} else if author, err = r.AuthorSignature(); err != nil {
		return
	}
	if opts.Committer != nil {
		committer = *opts.Committer
	} else if committer, err = r.CommitterSignature(); err != nil {
		return
	}
	return
}

// advanceHead moves the branch (or direct oid) HEAD names to newHash,
// failing with errkind.StaleError if a concurrent writer already moved it
// away from oldHash.
func (r *Repository) advanceHead(newHash, oldHash plumbing.Hash) error {
	target, err := r.headUpdateTarget()
	if err != nil {
		return err
	}
	return r.Storage.Refs.CompareAndSetReference(plumbing.NewHashReference(target, newHash), oldHash)
}

// advanceHeadForce moves HEAD's target ref to newHash unconditionally, for
// recovery operations (reset, rebase abort) that already know the
// repository's state programmatically and must not fail on a stale read.
func (r *Repository) advanceHeadForce(newHash plumbing.Hash) error {
	target, err := r.headUpdateTarget()
	if err != nil {
		return err
	}
	return r.Storage.Refs.SetReference(plumbing.NewHashReference(target, newHash))
}

// headUpdateTarget returns the ref that a commit or reset should actually
// write to: the attached branch, or HEAD itself when detached.
func (r *Repository) headUpdateTarget() (plumbing.ReferenceName, error) {
	head, err := r.Storage.Refs.Reference(plumbing.HEAD)
	if err != nil {
		return "", err
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target(), nil
	}
	return plumbing.HEAD, nil
}
