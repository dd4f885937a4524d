package object

import (
	"github.com/emirpasic/gods/v2/sets/hashset"
	"github.com/emirpasic/gods/v2/sets/treeset"

	"github.com/firiho/lit/plumbing"
)

// CommitGetter is the minimal object-store capability the commit-graph
// algorithms need: resolving a commit id to its decoded Commit. Object
// stores satisfy this without the walker needing to know about loose
// objects, zlib, or any other storage detail.
type CommitGetter interface {
	CommitObject(plumbing.Hash) (*Commit, error)
}

// LogOrder selects how CommitIter walks the graph.
type LogOrder int

const (
	// LogOrderDefault visits commits newest-first by committer time (ties
	// broken on hash); a parent is queued once a child of it has been visited.
	LogOrderDefault LogOrder = iota
	// LogOrderDFS visits commits depth-first along first-parent links,
	// matching "git log" without --topo-order.
	LogOrderDFS
)

// CommitIter lazily walks a commit graph from one or more starting points.
// It holds no more state between calls than the walker's own frontier, so a
// caller can stop iterating (e.g. once they've found what they need)
// without having paid to materialize the whole history.
type CommitIter struct {
	store CommitGetter
	order LogOrder
	seen  *hashset.Set[plumbing.Hash]

	frontier      *treeset.Set[*Commit]
	stackFrontier []*Commit
}

// commitOrder ranks commits oldest-first so that Values() (always ascending)
// puts the newest commit last; nextTopo pops from that end to get
// reverse-chronological order. Ties are broken on hash for a total order.
func commitOrder(a, b *Commit) int {
	switch {
	case a.Committer.When.Before(b.Committer.When):
		return -1
	case a.Committer.When.After(b.Committer.When):
		return 1
	default:
		return a.Hash.Compare(b.Hash)
	}
}

// NewCommitIter returns an iterator over the ancestors of from (inclusive),
// in the given order.
func NewCommitIter(store CommitGetter, order LogOrder, from ...plumbing.Hash) (*CommitIter, error) {
	it := &CommitIter{
		store: store,
		order: order,
		seen:  hashset.New[plumbing.Hash](),
	}

	switch order {
	case LogOrderDFS:
		for i := len(from) - 1; i >= 0; i-- {
			c, err := store.CommitObject(from[i])
			if err != nil {
				return nil, err
			}
			it.stackFrontier = append(it.stackFrontier, c)
		}
	default:
		it.frontier = treeset.New[*Commit](commitOrder)
		for _, f := range from {
			c, err := store.CommitObject(f)
			if err != nil {
				return nil, err
			}
			it.frontier.Add(c)
			it.seen.Add(f)
		}
	}
	return it, nil
}

// Next returns the next commit in the walk, or (nil, nil) once exhausted.
func (it *CommitIter) Next() (*Commit, error) {
	if it.order == LogOrderDFS {
		return it.nextDFS()
	}
	return it.nextTopo()
}

// ForEach calls f for every remaining commit until f returns an error or
// the iterator is exhausted. A sentinel error returned by f (other than
// nil) stops the walk and is returned to the caller, matching the pattern
// used by storer.EncodedObjectIter.ForEach in the wider ecosystem.
func (it *CommitIter) ForEach(f func(*Commit) error) error {
	for {
		c, err := it.Next()
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		if err := f(c); err != nil {
			return err
		}
	}
}

func (it *CommitIter) nextDFS() (*Commit, error) {
	for len(it.stackFrontier) > 0 {
		n := len(it.stackFrontier) - 1
		c := it.stackFrontier[n]
		it.stackFrontier = it.stackFrontier[:n]

		if it.seen.Contains(c.Hash) {
			continue
		}
		it.seen.Add(c.Hash)

		for i := len(c.Parents) - 1; i >= 0; i-- {
			p, err := it.store.CommitObject(c.Parents[i])
			if err != nil {
				return nil, err
			}
			it.stackFrontier = append(it.stackFrontier, p)
		}
		return c, nil
	}
	return nil, nil
}

func (it *CommitIter) nextTopo() (*Commit, error) {
	values := it.frontier.Values()
	if len(values) == 0 {
		return nil, nil
	}
	c := values[len(values)-1]
	it.frontier.Remove(c)

	for _, p := range c.Parents {
		if it.seen.Contains(p) {
			continue
		}
		it.seen.Add(p)
		pc, err := it.store.CommitObject(p)
		if err != nil {
			return nil, err
		}
		it.frontier.Add(pc)
	}
	return c, nil
}
