package lit

import (
	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
)

// CreateBranch creates refs/heads/name at the commit rev resolves to.
func (r *Repository) CreateBranch(name, rev string) error {
	h, err := r.Resolve(rev)
	if err != nil {
		return err
	}
	return r.Storage.Refs.CreateBranch(name, h)
}

// DeleteBranch removes refs/heads/name, refusing to delete the branch HEAD
// is attached to.
func (r *Repository) DeleteBranch(name string) error {
	return r.Storage.Refs.DeleteBranch(name)
}

// Checkout switches HEAD to branch and updates the working tree to match
// it, aborting with errkind.DirtyError if doing so would overwrite
// uncommitted changes.
func (r *Repository) Checkout(branch string) error {
	full := plumbing.NewBranchReferenceName(branch)
	target, err := r.Storage.Refs.Reference(full)
	if err != nil {
		return err
	}

	if err := r.checkoutToCommit(target.Hash()); err != nil {
		return err
	}
	return r.Storage.Refs.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, full))
}

// CheckoutDetached moves HEAD directly to the commit rev resolves to,
// detaching it from any branch.
func (r *Repository) CheckoutDetached(rev string) error {
	h, err := r.Resolve(rev)
	if err != nil {
		return err
	}
	if err := r.checkoutToCommit(h); err != nil {
		return err
	}
	return r.Storage.Refs.SetReference(plumbing.NewHashReference(plumbing.HEAD, h))
}

func (r *Repository) checkoutToCommit(h plumbing.Hash) error {
	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	c, err := r.Storage.Objects.CommitObject(h)
	if err != nil {
		return err
	}
	return wt.checkoutCommit(c)
}

// Tag creates a lightweight tag: refs/tags/name pointing directly at the
// commit rev resolves to.
func (r *Repository) Tag(name, rev string) error {
	h, err := r.Resolve(rev)
	if err != nil {
		return err
	}
	full := plumbing.NewTagReferenceName(name)
	if _, err := r.Storage.Refs.Reference(full); err == nil {
		return &errkind.IOError{Op: "create tag " + name, Inner: errkind.ErrAlreadyExists}
	}
	return r.Storage.Refs.SetReference(plumbing.NewHashReference(full, h))
}

// AnnotatedTag creates refs/tags/name pointing at a persisted Tag object
// wrapping rev's commit with tagger identity and message.
func (r *Repository) AnnotatedTag(name, rev, message string) error {
	h, err := r.Resolve(rev)
	if err != nil {
		return err
	}
	full := plumbing.NewTagReferenceName(name)
	if _, err := r.Storage.Refs.Reference(full); err == nil {
		return &errkind.IOError{Op: "create tag " + name, Inner: errkind.ErrAlreadyExists}
	}

	tagger, err := r.CommitterSignature()
	if err != nil {
		return err
	}

	t := object.NewTag(h, plumbing.CommitObject, name, tagger, message)
	if _, err := r.Storage.Objects.SetEncodedObject(t.EncodedObject()); err != nil {
		return err
	}
	return r.Storage.Refs.SetReference(plumbing.NewHashReference(full, t.Hash))
}

// DeleteTag removes refs/tags/name.
func (r *Repository) DeleteTag(name string) error {
	return r.Storage.Refs.RemoveReference(plumbing.NewTagReferenceName(name))
}
