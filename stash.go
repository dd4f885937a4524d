package lit

import (
	"strings"

	"github.com/firiho/lit/diff"
	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/merge"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// StashEntry describes one saved stash: the stash commit itself and the
// index snapshot committed alongside it.
type StashEntry struct {
	Stash   plumbing.Hash
	Index   plumbing.Hash
	Message string
}

// StashPush records the current index and working-tree state as two
// commits and restores HEAD's tree to the working tree, per §4.8. The
// list is a simple linear list of stash commits, newest first, rather than
// a reflog.
func (r *Repository) StashPush(message string) (StashEntry, error) {
	headHash, err := r.HeadHash()
	if err != nil {
		return StashEntry{}, err
	}
	wt, err := r.Worktree()
	if err != nil {
		return StashEntry{}, err
	}

	indexTree, err := wt.WriteTree()
	if err != nil {
		return StashEntry{}, err
	}
	worktreeTree, err := wt.writeWorktreeTree()
	if err != nil {
		return StashEntry{}, err
	}

	author, committer, err := r.resolveCommitIdentities(CommitOptions{})
	if err != nil {
		return StashEntry{}, err
	}

	if message == "" {
		message = "WIP on stash"
	}

	indexCommit := object.NewCommit(indexTree, []plumbing.Hash{headHash}, author, committer, "index on "+message)
	if _, err := r.Storage.Objects.SetEncodedObject(indexCommit.EncodedObject()); err != nil {
		return StashEntry{}, err
	}

	stashCommit := object.NewCommit(worktreeTree, []plumbing.Hash{headHash, indexCommit.Hash}, author, committer, message)
	if _, err := r.Storage.Objects.SetEncodedObject(stashCommit.EncodedObject()); err != nil {
		return StashEntry{}, err
	}

	if err := r.Storage.Refs.SetReference(plumbing.NewHashReference(stashRef, stashCommit.Hash)); err != nil {
		return StashEntry{}, err
	}
	if err := r.prependStashList(StashEntry{Stash: stashCommit.Hash, Index: indexCommit.Hash, Message: message}); err != nil {
		return StashEntry{}, err
	}

	headCommit, err := r.Storage.Objects.CommitObject(headHash)
	if err != nil {
		return StashEntry{}, err
	}
	if err := wt.forceCheckoutTree(headCommit.Tree, headHash); err != nil {
		return StashEntry{}, err
	}

	return StashEntry{Stash: stashCommit.Hash, Index: indexCommit.Hash, Message: message}, nil
}

const stashRef plumbing.ReferenceName = "refs/stash"

// StashList returns every saved stash, newest first.
func (r *Repository) StashList() ([]StashEntry, error) {
	return r.readStashList()
}

// StashShow returns the path-level changes a stash entry made relative to
// the commit it was taken from.
func (r *Repository) StashShow(index int) ([]diff.Change, error) {
	entries, err := r.readStashList()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return nil, &errkind.NotFoundError{Kind: "stash", Name: "index out of range"}
	}

	stash, err := r.Storage.Objects.CommitObject(entries[index].Stash)
	if err != nil {
		return nil, err
	}
	base, err := r.Storage.Objects.CommitObject(stash.Parents[0])
	if err != nil {
		return nil, err
	}
	baseTree, err := r.Storage.Objects.TreeObject(base.Tree)
	if err != nil {
		return nil, err
	}
	stashTree, err := r.Storage.Objects.TreeObject(stash.Tree)
	if err != nil {
		return nil, err
	}

	return diff.DiffTree(r.Storage.Objects, baseTree, stashTree)
}

// StashApply re-applies a stash entry's changes onto HEAD without removing
// it from the list, three-way merging against the commit it was taken
// from.
func (r *Repository) StashApply(index int, opts MergeOptions) ([]string, error) {
	entries, err := r.readStashList()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return nil, &errkind.NotFoundError{Kind: "stash", Name: "index out of range"}
	}
	entry := entries[index]

	stash, err := r.Storage.Objects.CommitObject(entry.Stash)
	if err != nil {
		return nil, err
	}
	base, err := r.Storage.Objects.CommitObject(stash.Parents[0])
	if err != nil {
		return nil, err
	}

	headHash, err := r.HeadHash()
	if err != nil {
		return nil, err
	}
	head, err := r.Storage.Objects.CommitObject(headHash)
	if err != nil {
		return nil, err
	}

	baseTree, err := r.Storage.Objects.TreeObject(base.Tree)
	if err != nil {
		return nil, err
	}
	headTree, err := r.Storage.Objects.TreeObject(head.Tree)
	if err != nil {
		return nil, err
	}
	stashTree, err := r.Storage.Objects.TreeObject(stash.Tree)
	if err != nil {
		return nil, err
	}

	opts.PreferOurs = resolvePreferOurs(opts, head, stash)
	results, err := merge.MergeTrees(r.Storage.Objects, baseTree, headTree, stashTree, opts.Strategy, opts.PreferOurs)
	if err != nil {
		return nil, err
	}
	return r.applyMergeResults(results)
}

// StashPop applies a stash entry and, if it applied cleanly, removes it
// from the list.
func (r *Repository) StashPop(index int, opts MergeOptions) ([]string, error) {
	conflicts, err := r.StashApply(index, opts)
	if err != nil {
		return conflicts, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}
	return nil, r.StashDrop(index)
}

// StashDrop removes a stash entry from the list without applying it.
func (r *Repository) StashDrop(index int) error {
	entries, err := r.readStashList()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return &errkind.NotFoundError{Kind: "stash", Name: "index out of range"}
	}
	entries = append(entries[:index], entries[index+1:]...)

	if len(entries) == 0 {
		return r.StashClear()
	}
	if err := r.writeStashList(entries); err != nil {
		return err
	}
	return r.Storage.Refs.SetReference(plumbing.NewHashReference(stashRef, entries[0].Stash))
}

// StashClear removes every stash entry.
func (r *Repository) StashClear() error {
	if err := removeIfExists(r.Storage, dotlit.StashListPath); err != nil {
		return err
	}
	return r.clearRef(stashRef)
}

func (r *Repository) prependStashList(e StashEntry) error {
	entries, err := r.readStashList()
	if err != nil {
		return err
	}
	entries = append([]StashEntry{e}, entries...)
	return r.writeStashList(entries)
}

func (r *Repository) readStashList() ([]StashEntry, error) {
	content, err := readTextFile(r.Storage, dotlit.StashListPath)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []StashEntry
	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			return nil, &errkind.CorruptError{Kind: "stash list", Detail: line}
		}
		entries = append(entries, StashEntry{
			Stash:   plumbing.NewHash(parts[0]),
			Index:   plumbing.NewHash(parts[1]),
			Message: parts[2],
		})
	}
	return entries, nil
}

func (r *Repository) writeStashList(entries []StashEntry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Stash.String())
		b.WriteByte('\t')
		b.WriteString(e.Index.String())
		b.WriteByte('\t')
		b.WriteString(e.Message)
		b.WriteByte('\n')
	}
	return writeTextFile(r.Storage, dotlit.StashListPath, b.String())
}
