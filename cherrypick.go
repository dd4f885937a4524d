package lit

import (
	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/merge"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// CherryPickResult reports the outcome of CherryPick: either a new commit
// or a set of unresolved conflicts left for CherryPickContinue.
type CherryPickResult struct {
	Commit    plumbing.Hash
	Conflicts []string
}

// CherryPick replays rev's change on top of HEAD, per §4.7: the merge base
// is rev's own first parent, "ours" is HEAD, "theirs" is rev, and a clean
// result is committed with rev's original message and author preserved.
func (r *Repository) CherryPick(rev string, opts MergeOptions) (CherryPickResult, error) {
	if yes, err := r.mergeInProgress(); err != nil {
		return CherryPickResult{}, err
	} else if yes {
		return CherryPickResult{}, errkind.ErrMergeInProgress
	}

	pickHash, err := r.Resolve(rev)
	if err != nil {
		return CherryPickResult{}, err
	}
	pick, err := r.Storage.Objects.CommitObject(pickHash)
	if err != nil {
		return CherryPickResult{}, err
	}
	if len(pick.Parents) == 0 {
		return CherryPickResult{}, &errkind.CorruptError{Kind: "commit", Detail: "cherry-pick of a root commit has no base"}
	}

	ourHash, err := r.HeadHash()
	if err != nil {
		return CherryPickResult{}, err
	}

	baseCommit, err := r.Storage.Objects.CommitObject(pick.Parents[0])
	if err != nil {
		return CherryPickResult{}, err
	}
	baseTree, err := r.Storage.Objects.TreeObject(baseCommit.Tree)
	if err != nil {
		return CherryPickResult{}, err
	}

	ourCommit, err := r.Storage.Objects.CommitObject(ourHash)
	if err != nil {
		return CherryPickResult{}, err
	}
	oursTree, err := r.Storage.Objects.TreeObject(ourCommit.Tree)
	if err != nil {
		return CherryPickResult{}, err
	}
	theirsTree, err := r.Storage.Objects.TreeObject(pick.Tree)
	if err != nil {
		return CherryPickResult{}, err
	}

	opts.PreferOurs = resolvePreferOurs(opts, ourCommit, pick)
	results, err := merge.MergeTrees(r.Storage.Objects, baseTree, oursTree, theirsTree, opts.Strategy, opts.PreferOurs)
	if err != nil {
		return CherryPickResult{}, err
	}

	if err := r.setOrigHead(ourHash); err != nil {
		return CherryPickResult{}, err
	}

	conflicts, err := r.applyMergeResults(results)
	if err != nil {
		return CherryPickResult{}, err
	}
	if len(conflicts) > 0 {
		if err := r.Storage.Refs.SetReference(plumbing.NewHashReference(cherryPickHeadRef, pickHash)); err != nil {
			return CherryPickResult{}, err
		}
		if err := writeTextFile(r.Storage, dotlit.MergeMsgPath, pick.Message); err != nil {
			return CherryPickResult{}, err
		}
		return CherryPickResult{Conflicts: conflicts}, &errkind.ConflictError{Paths: conflicts}
	}

	hash, err := r.cherryPickCommit(pick, ourHash)
	if err != nil {
		return CherryPickResult{}, err
	}
	return CherryPickResult{Commit: hash}, nil
}

func (r *Repository) cherryPickCommit(pick *object.Commit, parent plumbing.Hash) (plumbing.Hash, error) {
	wt, err := r.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	tree, err := wt.WriteTree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	committer, err := r.CommitterSignature()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	c := object.NewCommit(tree, []plumbing.Hash{parent}, pick.Author, committer, pick.Message)
	if _, err := r.Storage.Objects.SetEncodedObject(c.EncodedObject()); err != nil {
		return plumbing.ZeroHash, err
	}
	if err := r.advanceHead(c.Hash, parent); err != nil {
		return plumbing.ZeroHash, err
	}
	return c.Hash, nil
}

// CherryPickContinue finishes a conflicted cherry-pick once every
// conflicted path has been staged clean, preserving the original commit's
// author and message.
func (r *Repository) CherryPickContinue() (plumbing.Hash, error) {
	pickHash, ok, err := r.readHashRef(cherryPickHeadRef)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if !ok {
		return plumbing.ZeroHash, errkind.ErrNotFound
	}
	pick, err := r.Storage.Objects.CommitObject(pickHash)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	parent, err := r.HeadHash()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	hash, err := r.cherryPickCommit(pick, parent)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if err := r.clearCherryPickState(); err != nil {
		return plumbing.ZeroHash, err
	}
	if err := removeIfExists(r.Storage, dotlit.MergeMsgPath); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

// CherryPickAbort restores HEAD and the working tree to ORIG_HEAD,
// discarding the in-progress cherry-pick.
func (r *Repository) CherryPickAbort() error {
	orig, ok, err := r.readHashRef(origHeadRef)
	if err != nil {
		return err
	}
	if !ok {
		return errkind.ErrNotFound
	}

	c, err := r.Storage.Objects.CommitObject(orig)
	if err != nil {
		return err
	}
	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	if err := wt.forceCheckoutTree(c.Tree, orig); err != nil {
		return err
	}
	if err := r.advanceHeadForce(orig); err != nil {
		return err
	}
	if err := r.clearCherryPickState(); err != nil {
		return err
	}
	return removeIfExists(r.Storage, dotlit.MergeMsgPath)
}
