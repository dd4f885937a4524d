package lit

import (
	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/remote"
)

// AddRemote records a named remote URL in local config, read back by
// Fetch/Push when called with just a remote name.
func (r *Repository) AddRemote(name, url string) error {
	return r.SetLocalConfigOption("remote", name, "url", url)
}

// RemoteURL reads back the URL AddRemote recorded for name.
func (r *Repository) RemoteURL(name string) (string, error) {
	cfg, err := r.Config()
	if err != nil {
		return "", err
	}
	section := cfg.Section("remote")
	if section == nil || !section.HasSubsection(name) {
		return "", &errkind.NotFoundError{Kind: "remote", Name: name}
	}
	url := section.Subsection(name).Option("url")
	if url == "" {
		return "", &errkind.NotFoundError{Kind: "remote", Name: name}
	}
	return url, nil
}

// FetchResult reports which remote-tracking refs Fetch updated.
type FetchResult struct {
	Updated map[plumbing.ReferenceName]plumbing.Hash
}

// Fetch copies objects and advances refs/remotes/<remoteName>/* from the
// named remote, per §4.9. branches == nil fetches every branch the remote
// currently has.
func (r *Repository) Fetch(remoteName string, branches ...string) (FetchResult, error) {
	url, err := r.RemoteURL(remoteName)
	if err != nil {
		return FetchResult{}, err
	}
	result, err := remote.Fetch(r.Storage, remoteName, url, branches)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Updated: result.Updated}, nil
}

// Push transfers local branches to the named remote and advances its refs,
// per §4.9. branches == nil pushes every local branch. force bypasses the
// fast-forward check, returning errkind.NonFastForwardError when it would
// otherwise reject a non-fast-forward update.
func (r *Repository) Push(remoteName string, force bool, branches ...string) error {
	url, err := r.RemoteURL(remoteName)
	if err != nil {
		return err
	}
	return remote.Push(r.Storage, url, branches, force)
}

// Clone initializes a new repository at path, fetches every branch from
// url as "origin", points HEAD at the same branch url's HEAD names, and
// (unless bare) checks out the corresponding tree, per §4.9.
func Clone(url, path string, bare bool) (*Repository, error) {
	r, err := Init(path, bare)
	if err != nil {
		return nil, err
	}

	if err := r.AddRemote("origin", url); err != nil {
		return nil, err
	}
	if _, err := r.Fetch("origin"); err != nil {
		return nil, err
	}

	branch, head, err := remote.Head(url)
	if err != nil {
		return nil, err
	}
	if head.IsZero() {
		return r, nil
	}

	if branch != "" {
		if err := r.Storage.Refs.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), head)); err != nil {
			return nil, err
		}
		if err := r.Storage.Refs.SetHead(branch); err != nil {
			return nil, err
		}
	} else {
		if err := r.Storage.Refs.SetHead(head.String()); err != nil {
			return nil, err
		}
	}

	if r.IsBare() {
		return r, nil
	}
	if err := r.checkoutToCommit(head); err != nil {
		return nil, err
	}
	return r, nil
}
