package remote

import (
	"github.com/emirpasic/gods/v2/sets/hashset"

	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/object"
	"github.com/firiho/lit/storage/filesystem"
)

// CopyObjects copies every object reachable from want that dst doesn't
// already have, per §4.9's "compute the set of objects reachable from its
// tip but absent locally". Recursion stops the moment it reaches an object
// dst already holds, since a repository invariant is that an object's
// presence implies everything it reaches is present too — so that check
// alone serves as the "have" set the spec describes, without needing to
// separately seed it from dst's refs.
func CopyObjects(dst, src *filesystem.Storage, want plumbing.Hash) error {
	return copyObject(dst, src, want, hashset.New[plumbing.Hash]())
}

func copyObject(dst, src *filesystem.Storage, hash plumbing.Hash, seen *hashset.Set[plumbing.Hash]) error {
	if hash.IsZero() || seen.Contains(hash) {
		return nil
	}
	seen.Add(hash)
	if dst.Objects.HasEncodedObject(hash) {
		return nil
	}

	encoded, err := src.Objects.EncodedObject(hash)
	if err != nil {
		return err
	}

	switch encoded.Type() {
	case plumbing.CommitObject:
		c, err := object.DecodeCommit(encoded)
		if err != nil {
			return err
		}
		if err := copyObject(dst, src, c.Tree, seen); err != nil {
			return err
		}
		for _, p := range c.Parents {
			if err := copyObject(dst, src, p, seen); err != nil {
				return err
			}
		}
	case plumbing.TreeObject:
		t, err := object.DecodeTree(encoded)
		if err != nil {
			return err
		}
		for _, e := range t.Entries {
			if err := copyObject(dst, src, e.Hash, seen); err != nil {
				return err
			}
		}
	case plumbing.TagObject:
		tag, err := object.DecodeTag(encoded)
		if err != nil {
			return err
		}
		if err := copyObject(dst, src, tag.Target, seen); err != nil {
			return err
		}
	}

	_, err = dst.Objects.SetEncodedObject(encoded)
	return err
}
