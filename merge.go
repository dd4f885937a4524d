package lit

import (
	"sort"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/merge"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/filemode"
	"github.com/firiho/lit/plumbing/format/index"
	"github.com/firiho/lit/plumbing/object"
)

// MergeOptions configures conflict auto-resolution for Merge, CherryPick,
// and StashApply/StashPop.
type MergeOptions struct {
	Strategy   merge.Strategy
	PreferOurs bool
}

// MergeResult reports what Merge did: a fast-forward, a no-op (already up
// to date), a clean merge commit, or a set of unresolved conflicts left
// for the caller to fix and finish with MergeContinue.
type MergeResult struct {
	FastForward bool
	UpToDate    bool
	Commit      plumbing.Hash
	Conflicts   []string
}

// Merge merges rev into HEAD, per §4.7. When HEAD is an ancestor of rev's
// commit it fast-forwards instead of creating a merge commit.
func (r *Repository) Merge(rev string, message string, opts MergeOptions) (MergeResult, error) {
	if yes, err := r.mergeInProgress(); err != nil {
		return MergeResult{}, err
	} else if yes {
		return MergeResult{}, errkind.ErrMergeInProgress
	}

	theirHash, err := r.Resolve(rev)
	if err != nil {
		return MergeResult{}, err
	}
	ourHash, err := r.HeadHash()
	if err != nil {
		return MergeResult{}, err
	}
	if ourHash == theirHash {
		return MergeResult{UpToDate: true}, nil
	}

	if ancestor, err := object.IsAncestor(r.Storage.Objects, ourHash, theirHash); err != nil {
		return MergeResult{}, err
	} else if ancestor {
		if err := r.setOrigHead(ourHash); err != nil {
			return MergeResult{}, err
		}
		if err := r.fastForward(theirHash); err != nil {
			return MergeResult{}, err
		}
		return MergeResult{FastForward: true, Commit: theirHash}, nil
	}

	ourCommit, err := r.Storage.Objects.CommitObject(ourHash)
	if err != nil {
		return MergeResult{}, err
	}
	theirCommit, err := r.Storage.Objects.CommitObject(theirHash)
	if err != nil {
		return MergeResult{}, err
	}
	opts.PreferOurs = resolvePreferOurs(opts, ourCommit, theirCommit)

	baseTree, err := r.virtualMergeBase(ourHash, theirHash, opts)
	if err != nil {
		return MergeResult{}, err
	}

	oursTree, err := r.Storage.Objects.TreeObject(ourCommit.Tree)
	if err != nil {
		return MergeResult{}, err
	}
	theirsTree, err := r.Storage.Objects.TreeObject(theirCommit.Tree)
	if err != nil {
		return MergeResult{}, err
	}

	results, err := merge.MergeTrees(r.Storage.Objects, baseTree, oursTree, theirsTree, opts.Strategy, opts.PreferOurs)
	if err != nil {
		return MergeResult{}, err
	}

	if err := r.setOrigHead(ourHash); err != nil {
		return MergeResult{}, err
	}

	conflicts, err := r.applyMergeResults(results)
	if err != nil {
		return MergeResult{}, err
	}
	if len(conflicts) > 0 {
		if err := r.writeMergeHead(theirHash, message); err != nil {
			return MergeResult{}, err
		}
		return MergeResult{Conflicts: conflicts}, &errkind.ConflictError{Paths: conflicts}
	}

	wt, err := r.Worktree()
	if err != nil {
		return MergeResult{}, err
	}
	tree, err := wt.WriteTree()
	if err != nil {
		return MergeResult{}, err
	}

	author, committer, err := r.resolveCommitIdentities(CommitOptions{})
	if err != nil {
		return MergeResult{}, err
	}
	c := object.NewCommit(tree, []plumbing.Hash{ourHash, theirHash}, author, committer, message)
	if _, err := r.Storage.Objects.SetEncodedObject(c.EncodedObject()); err != nil {
		return MergeResult{}, err
	}
	if err := r.advanceHead(c.Hash, ourHash); err != nil {
		return MergeResult{}, err
	}
	return MergeResult{Commit: c.Hash}, nil
}

// resolvePreferOurs derives the bool merge.MergeTrees and merge.VirtualBase
// need for the Recent strategy: the side whose contributing commit has the
// later committer timestamp wins, per §4.7. Every other strategy ignores
// this bool, so opts.PreferOurs passes through unchanged for those.
func resolvePreferOurs(opts MergeOptions, ours, theirs *object.Commit) bool {
	if opts.Strategy != merge.Recent {
		return opts.PreferOurs
	}
	return !ours.Committer.When.Before(theirs.Committer.When)
}

// MergeContinue finishes a conflicted merge once every conflicted path has
// been staged clean, committing with message and clearing MERGE_HEAD.
func (r *Repository) MergeContinue(message string) (plumbing.Hash, error) {
	theirHash, ok, err := r.readHashRef(mergeHeadRef)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if !ok {
		return plumbing.ZeroHash, errkind.ErrNotFound
	}

	if message == "" {
		message, err = r.mergeMessage()
		if err != nil {
			return plumbing.ZeroHash, err
		}
	}

	hash, err := r.Commit(message, CommitOptions{ExtraParent: &theirHash})
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if err := r.clearMergeState(); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

// MergeAbort restores HEAD and the working tree to ORIG_HEAD, discarding
// the in-progress merge.
func (r *Repository) MergeAbort() error {
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
	return r.clearMergeState()
}

func (r *Repository) fastForward(target plumbing.Hash) error {
	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	c, err := r.Storage.Objects.CommitObject(target)
	if err != nil {
		return err
	}
	if err := wt.checkoutCommit(c); err != nil {
		return err
	}
	return r.advanceHeadForce(target)
}

// virtualMergeBase resolves ours/theirs merge bases, returning the single
// base's tree or, when history is criss-crossed and more than one base
// exists, a synthesized virtual base tree.
func (r *Repository) virtualMergeBase(ours, theirs plumbing.Hash, opts MergeOptions) (*object.Tree, error) {
	bases, err := object.MergeBase(r.Storage.Objects, ours, theirs)
	if err != nil {
		return nil, err
	}
	if len(bases) == 0 {
		return &object.Tree{}, nil
	}
	if len(bases) == 1 {
		return r.Storage.Objects.TreeObject(bases[0].Tree)
	}
	return merge.VirtualBase(r.Storage.Objects, bases, opts.Strategy, opts.PreferOurs)
}

// applyMergeResults stages and materializes every PathMerge, returning the
// paths left conflicted.
func (r *Repository) applyMergeResults(results []merge.PathMerge) ([]string, error) {
	wt, err := r.Worktree()
	if err != nil {
		return nil, err
	}
	idx, err := r.Storage.Index.ReadIndex()
	if err != nil {
		return nil, err
	}

	var conflicts []string
	for _, pm := range results {
		idx.RemoveStage(pm.Path, index.Stage1)
		idx.RemoveStage(pm.Path, index.Stage2)
		idx.RemoveStage(pm.Path, index.Stage3)

		if pm.Outcome == merge.Clean {
			if pm.Deleted {
				idx.Remove(pm.Path)
				_ = wt.fs.Remove(pm.Path)
				continue
			}
			if err := r.materializeClean(wt, idx, pm); err != nil {
				return nil, err
			}
			continue
		}

		conflicts = append(conflicts, pm.Path)
		if pm.Base != nil {
			idx.Upsert(&index.Entry{Name: pm.Path, Mode: uint32(pm.Base.Mode), Hash: pm.Base.Hash, Stage: index.Stage1})
		}
		if pm.Ours != nil {
			idx.Upsert(&index.Entry{Name: pm.Path, Mode: uint32(pm.Ours.Mode), Hash: pm.Ours.Hash, Stage: index.Stage2})
		}
		if pm.Theirs != nil {
			idx.Upsert(&index.Entry{Name: pm.Path, Mode: uint32(pm.Theirs.Mode), Hash: pm.Theirs.Hash, Stage: index.Stage3})
		}

		if err := r.writeConflictMarkers(wt, pm); err != nil {
			return nil, err
		}
	}

	sort.Strings(conflicts)
	return conflicts, r.Storage.Index.WriteIndex(idx)
}

func (r *Repository) materializeClean(wt *Worktree, idx *index.Index, pm merge.PathMerge) error {
	idx.Upsert(&index.Entry{Name: pm.Path, Mode: uint32(pm.Mode), Hash: pm.Hash, Stage: index.Stage0})
	blob, err := r.Storage.Objects.BlobObject(pm.Hash)
	if err != nil {
		return err
	}
	return wt.writeWorktreeFile(pm.Path, blob.Contents(), pm.Mode)
}

// writeConflictMarkers writes the best available representation of an
// unresolved path to disk: diff3-marked text when one was computed, the
// "ours" side otherwise (whichever side exists, falling back to theirs),
// so a person has something concrete to edit.
func (r *Repository) writeConflictMarkers(wt *Worktree, pm merge.PathMerge) error {
	if pm.Merged != "" {
		mode := pm.Mode
		if mode == 0 {
			mode = filemode.Regular
		}
		return wt.writeWorktreeFile(pm.Path, []byte(pm.Merged), mode)
	}

	entry := pm.Ours
	if entry == nil {
		entry = pm.Theirs
	}
	if entry == nil {
		return wt.fs.Remove(pm.Path)
	}
	blob, err := r.Storage.Objects.BlobObject(entry.Hash)
	if err != nil {
		return err
	}
	return wt.writeWorktreeFile(pm.Path, blob.Contents(), entry.Mode)
}
