package lit

import (
	"strings"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/merge"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// RebaseResult reports how far Rebase or RebaseContinue got: fully done, or
// stopped on a conflicted commit still waiting in REBASE_STATE.
type RebaseResult struct {
	Done      bool
	Head      plumbing.Hash
	Conflicts []string
}

// Rebase replays every commit unique to HEAD (found by walking first
// parents back to the merge base) onto upstream, per §4.7. HEAD is reset
// hard to upstream before replay starts, so a conflict partway through
// leaves HEAD on upstream plus whatever commits replayed clean so far.
func (r *Repository) Rebase(upstream string, opts MergeOptions) (RebaseResult, error) {
	if yes, err := r.rebaseInProgress(); err != nil {
		return RebaseResult{}, err
	} else if yes {
		return RebaseResult{}, errkind.ErrRebaseInProgress
	}

	upstreamHash, err := r.Resolve(upstream)
	if err != nil {
		return RebaseResult{}, err
	}
	headHash, err := r.HeadHash()
	if err != nil {
		return RebaseResult{}, err
	}
	if headHash == upstreamHash {
		return RebaseResult{Done: true, Head: headHash}, nil
	}
	if ancestor, err := object.IsAncestor(r.Storage.Objects, headHash, upstreamHash); err != nil {
		return RebaseResult{}, err
	} else if ancestor {
		if err := r.advanceHeadForce(upstreamHash); err != nil {
			return RebaseResult{}, err
		}
		wt, err := r.Worktree()
		if err != nil {
			return RebaseResult{}, err
		}
		upstreamCommit, err := r.Storage.Objects.CommitObject(upstreamHash)
		if err != nil {
			return RebaseResult{}, err
		}
		if err := wt.forceCheckoutTree(upstreamCommit.Tree, headHash); err != nil {
			return RebaseResult{}, err
		}
		return RebaseResult{Done: true, Head: upstreamHash}, nil
	}

	bases, err := object.MergeBase(r.Storage.Objects, headHash, upstreamHash)
	if err != nil {
		return RebaseResult{}, err
	}
	var base plumbing.Hash
	if len(bases) > 0 {
		base = bases[0].Hash
	}

	todo, err := r.commitsSince(base, headHash)
	if err != nil {
		return RebaseResult{}, err
	}

	if err := r.setOrigHead(headHash); err != nil {
		return RebaseResult{}, err
	}

	wt, err := r.Worktree()
	if err != nil {
		return RebaseResult{}, err
	}
	upstreamCommit, err := r.Storage.Objects.CommitObject(upstreamHash)
	if err != nil {
		return RebaseResult{}, err
	}
	if err := wt.forceCheckoutTree(upstreamCommit.Tree, headHash); err != nil {
		return RebaseResult{}, err
	}
	if err := r.advanceHeadForce(upstreamHash); err != nil {
		return RebaseResult{}, err
	}

	if err := writeTextFile(r.Storage, dotlit.RebaseOntoFile, upstreamHash.String()); err != nil {
		return RebaseResult{}, err
	}
	return r.runRebaseSequence(todo, opts)
}

// commitsSince walks head's first-parent chain back to base (exclusive),
// returning the result oldest-first. If base is never reached (the root
// commit runs out of parents first) every commit on the chain is returned.
func (r *Repository) commitsSince(base, head plumbing.Hash) ([]*object.Commit, error) {
	var commits []*object.Commit
	cur := head
	for cur != base {
		c, err := r.Storage.Objects.CommitObject(cur)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
		if len(c.Parents) == 0 {
			break
		}
		cur = c.Parents[0]
	}
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// runRebaseSequence replays todo in order, persisting its remainder to
// REBASE_STATE/todo so RebaseContinue can pick up after a conflict.
func (r *Repository) runRebaseSequence(todo []*object.Commit, opts MergeOptions) (RebaseResult, error) {
	for i, pick := range todo {
		if err := writeTextFile(r.Storage, dotlit.RebaseCurrentFile, pick.Hash.String()); err != nil {
			return RebaseResult{}, err
		}
		if err := r.writeRebaseTodo(todo[i:]); err != nil {
			return RebaseResult{}, err
		}

		conflicts, err := r.replayCommit(pick, opts)
		if err != nil {
			return RebaseResult{}, err
		}
		if len(conflicts) > 0 {
			return RebaseResult{Conflicts: conflicts}, &errkind.ConflictError{Paths: conflicts}
		}
	}

	if err := r.clearRebaseState(); err != nil {
		return RebaseResult{}, err
	}
	head, err := r.HeadHash()
	if err != nil {
		return RebaseResult{}, err
	}
	return RebaseResult{Done: true, Head: head}, nil
}

// replayCommit three-way merges pick's own change (base = pick's first
// parent, ours = current HEAD, theirs = pick) onto the working tree,
// committing on a clean result.
func (r *Repository) replayCommit(pick *object.Commit, opts MergeOptions) ([]string, error) {
	if len(pick.Parents) == 0 {
		return nil, &errkind.CorruptError{Kind: "commit", Detail: "rebase cannot replay a root commit"}
	}
	baseCommit, err := r.Storage.Objects.CommitObject(pick.Parents[0])
	if err != nil {
		return nil, err
	}
	baseTree, err := r.Storage.Objects.TreeObject(baseCommit.Tree)
	if err != nil {
		return nil, err
	}

	headHash, err := r.HeadHash()
	if err != nil {
		return nil, err
	}
	headCommit, err := r.Storage.Objects.CommitObject(headHash)
	if err != nil {
		return nil, err
	}
	oursTree, err := r.Storage.Objects.TreeObject(headCommit.Tree)
	if err != nil {
		return nil, err
	}
	theirsTree, err := r.Storage.Objects.TreeObject(pick.Tree)
	if err != nil {
		return nil, err
	}

	opts.PreferOurs = resolvePreferOurs(opts, headCommit, pick)
	results, err := merge.MergeTrees(r.Storage.Objects, baseTree, oursTree, theirsTree, opts.Strategy, opts.PreferOurs)
	if err != nil {
		return nil, err
	}
	conflicts, err := r.applyMergeResults(results)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	_, err = r.cherryPickCommit(pick, headHash)
	return nil, err
}

// RebaseContinue finishes replaying the commit RebaseState left conflicted,
// once every conflicted path has been staged clean, then resumes the rest
// of the sequence.
func (r *Repository) RebaseContinue(opts MergeOptions) (RebaseResult, error) {
	currentHex, err := readTextFile(r.Storage, dotlit.RebaseCurrentFile)
	if err != nil {
		if isNotFound(err) {
			return RebaseResult{}, errkind.ErrNotFound
		}
		return RebaseResult{}, err
	}
	current := plumbing.NewHash(strings.TrimSpace(currentHex))
	pick, err := r.Storage.Objects.CommitObject(current)
	if err != nil {
		return RebaseResult{}, err
	}
	headHash, err := r.HeadHash()
	if err != nil {
		return RebaseResult{}, err
	}
	if _, err := r.cherryPickCommit(pick, headHash); err != nil {
		return RebaseResult{}, err
	}

	remaining, err := r.readRebaseTodo()
	if err != nil {
		return RebaseResult{}, err
	}
	if len(remaining) > 0 {
		remaining = remaining[1:]
	}
	return r.runRebaseSequence(remaining, opts)
}

// RebaseAbort restores HEAD and the working tree to ORIG_HEAD and clears
// REBASE_STATE.
func (r *Repository) RebaseAbort() error {
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
	return r.clearRebaseState()
}

func (r *Repository) clearRebaseState() error {
	for _, path := range []string{dotlit.RebaseOntoFile, dotlit.RebaseTodoFile, dotlit.RebaseCurrentFile} {
		if err := removeIfExists(r.Storage, path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) writeRebaseTodo(todo []*object.Commit) error {
	var b strings.Builder
	for _, c := range todo {
		b.WriteString(c.Hash.String())
		b.WriteByte('\n')
	}
	return writeTextFile(r.Storage, dotlit.RebaseTodoFile, b.String())
}

func (r *Repository) readRebaseTodo() ([]*object.Commit, error) {
	content, err := readTextFile(r.Storage, dotlit.RebaseTodoFile)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var commits []*object.Commit
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if line == "" {
			continue
		}
		c, err := r.Storage.Objects.CommitObject(plumbing.NewHash(line))
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}
