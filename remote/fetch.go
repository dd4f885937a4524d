package remote

import (
	"fmt"
	"io"

	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/storage/filesystem"
)

// FetchResult reports which remote-tracking refs Fetch updated.
type FetchResult struct {
	Updated map[plumbing.ReferenceName]plumbing.Hash
}

// Fetch reads url's ref advertisement, copies every object reachable from
// each wanted branch's tip that dst doesn't already have, then advances
// dst's refs/remotes/<remoteName>/<branch> to match. A ref update happens
// only once every object it depends on is already present locally, per
// §4.9's "fetch is atomic per ref". branches == nil fetches every branch
// the remote currently has.
func Fetch(dst *filesystem.Storage, remoteName, url string, branches []string) (FetchResult, error) {
	src, err := Open(url)
	if err != nil {
		return FetchResult{}, err
	}

	wanted, err := resolveBranches(src, branches)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Updated: map[plumbing.ReferenceName]plumbing.Hash{}}
	for branch, hash := range wanted {
		if err := CopyObjects(dst, src, hash); err != nil {
			return FetchResult{}, fmt.Errorf("fetch %s: %w", branch, err)
		}
		tracking := plumbing.NewRemoteReferenceName(remoteName, branch)
		if err := dst.Refs.SetReference(plumbing.NewHashReference(tracking, hash)); err != nil {
			return FetchResult{}, err
		}
		result.Updated[tracking] = hash
	}
	return result, nil
}

// resolveBranches maps each named branch (or every branch, if names is
// empty) in src to its current tip.
func resolveBranches(src *filesystem.Storage, names []string) (map[string]plumbing.Hash, error) {
	if len(names) == 0 {
		return allBranches(src)
	}
	out := make(map[string]plumbing.Hash, len(names))
	for _, name := range names {
		ref, err := src.Refs.Reference(plumbing.NewBranchReferenceName(name))
		if err != nil {
			return nil, err
		}
		out[name] = ref.Hash()
	}
	return out, nil
}

func allBranches(src *filesystem.Storage) (map[string]plumbing.Hash, error) {
	it, err := src.Refs.IterReferences()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	out := map[string]plumbing.Hash{}
	for {
		ref, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if ref.Name().IsBranch() {
			out[ref.Name().Short()] = ref.Hash()
		}
	}
	return out, nil
}
