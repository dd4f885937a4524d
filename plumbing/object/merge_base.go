package object

import (
	"github.com/emirpasic/gods/v2/sets/hashset"

	"github.com/firiho/lit/plumbing"
)

// MergeBase returns the best common ancestors of a and b: commits reachable
// from both that are not themselves ancestors of any other common
// ancestor. There is usually exactly one, but criss-cross merge histories
// can produce several, none dominating the others.
func MergeBase(store CommitGetter, a, b plumbing.Hash) ([]*Commit, error) {
	ca, err := store.CommitObject(a)
	if err != nil {
		return nil, err
	}
	cb, err := store.CommitObject(b)
	if err != nil {
		return nil, err
	}

	aAncestors, err := ancestorSet(store, ca)
	if err != nil {
		return nil, err
	}

	var candidates []*Commit
	seen := hashset.New[plumbing.Hash]()
	var walk func(c *Commit) error
	walk = func(c *Commit) error {
		if seen.Contains(c.Hash) {
			return nil
		}
		seen.Add(c.Hash)
		if aAncestors.Contains(c.Hash) {
			candidates = append(candidates, c)
			return nil // an ancestor of a common ancestor can't be a best one
		}
		for _, p := range c.Parents {
			pc, err := store.CommitObject(p)
			if err != nil {
				return err
			}
			if err := walk(pc); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(cb); err != nil {
		return nil, err
	}

	return reduceToBest(store, candidates)
}

// ancestorSet returns the hashes of c and every commit reachable from it.
func ancestorSet(store CommitGetter, c *Commit) (*hashset.Set[plumbing.Hash], error) {
	set := hashset.New[plumbing.Hash]()
	stack := []*Commit{c}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if set.Contains(cur.Hash) {
			continue
		}
		set.Add(cur.Hash)
		for _, p := range cur.Parents {
			pc, err := store.CommitObject(p)
			if err != nil {
				return nil, err
			}
			stack = append(stack, pc)
		}
	}
	return set, nil
}

// reduceToBest drops any candidate that is itself an ancestor of another
// candidate, leaving only the "best" (most recent, non-dominated) common
// ancestors.
func reduceToBest(store CommitGetter, candidates []*Commit) ([]*Commit, error) {
	if len(candidates) <= 1 {
		return candidates, nil
	}

	redundant := hashset.New[plumbing.Hash]()
	for i, ci := range candidates {
		for j, cj := range candidates {
			if i == j || redundant.Contains(ci.Hash) {
				continue
			}
			anc, err := ancestorSet(store, cj)
			if err != nil {
				return nil, err
			}
			if anc.Contains(ci.Hash) && ci.Hash != cj.Hash {
				redundant.Add(ci.Hash)
			}
		}
	}

	var out []*Commit
	seen := hashset.New[plumbing.Hash]()
	for _, c := range candidates {
		if !redundant.Contains(c.Hash) && !seen.Contains(c.Hash) {
			seen.Add(c.Hash)
			out = append(out, c)
		}
	}
	return out, nil
}

// IsAncestor reports whether candidate is an ancestor of (or equal to)
// target.
func IsAncestor(store CommitGetter, candidate, target plumbing.Hash) (bool, error) {
	if candidate == target {
		return true, nil
	}
	c, err := store.CommitObject(target)
	if err != nil {
		return false, err
	}
	set, err := ancestorSet(store, c)
	if err != nil {
		return false, err
	}
	return set.Contains(candidate), nil
}
