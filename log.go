package lit

import (
	"github.com/firiho/lit/diff"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
)

// LogOptions configures Log.
type LogOptions struct {
	// From is the commit Log starts walking from. Defaults to HEAD.
	From plumbing.Hash
	// Order selects topological (default) or first-parent-DFS order.
	Order object.LogOrder
	// Path, if set, restricts results to commits that touch it.
	Path string
	// MaxCount caps the number of commits returned; zero means unbounded.
	MaxCount int
}

// Log walks the commit graph reachable from opts.From (HEAD if unset),
// applying opts.Path and opts.MaxCount, per §4.6.
func (r *Repository) Log(opts LogOptions) ([]*object.Commit, error) {
	from := opts.From
	if from.IsZero() {
		h, err := r.HeadHash()
		if err != nil {
			return nil, err
		}
		from = h
	}

	it, err := object.NewCommitIter(r.Storage.Objects, opts.Order, from)
	if err != nil {
		return nil, err
	}

	var out []*object.Commit
	err = it.ForEach(func(c *object.Commit) error {
		if opts.Path != "" {
			touches, err := r.commitTouchesPath(c, opts.Path)
			if err != nil {
				return err
			}
			if !touches {
				return nil
			}
		}
		out = append(out, c)
		if opts.MaxCount > 0 && len(out) >= opts.MaxCount {
			return errStopLog
		}
		return nil
	})
	if err == errStopLog {
		err = nil
	}
	return out, err
}

var errStopLog = stopLogError{}

type stopLogError struct{}

func (stopLogError) Error() string { return "log: max count reached" }

// commitTouchesPath reports whether path differs between c and its first
// parent (or exists at all, for a root commit).
func (r *Repository) commitTouchesPath(c *object.Commit, path string) (bool, error) {
	to, err := r.Storage.Objects.TreeObject(c.Tree)
	if err != nil {
		return false, err
	}

	var from object.Tree
	if len(c.Parents) > 0 {
		parent, err := r.Storage.Objects.CommitObject(c.Parents[0])
		if err != nil {
			return false, err
		}
		ft, err := r.Storage.Objects.TreeObject(parent.Tree)
		if err != nil {
			return false, err
		}
		from = *ft
	}

	changes, err := diff.DiffTree(r.Storage.Objects, &from, to)
	if err != nil {
		return false, err
	}
	for _, c := range changes {
		if c.Path == path || hasPathPrefix(c.Path, path) {
			return true, nil
		}
	}
	return false, nil
}

func hasPathPrefix(path, prefix string) bool {
	return len(path) > len(prefix) && path[:len(prefix)] == prefix && path[len(prefix)] == '/'
}
