// Package remote implements §4.9's local-file remote synchronization:
// resolving a remote URL to a repository on the same machine and copying
// objects and refs between it and a local repository's storage, narrowed
// (per the spec's "Remote URL forms") to file:///abs/path, /abs/path, and
// ./relative/path — never a network transport.
//
// Grounded on go-git's plumbing/transport/file: that package opens a local
// repository's storage directly rather than speaking a wire protocol over
// a socket, which is exactly the shape a filesystem-only remote needs here,
// minus the upload-pack/receive-pack session framing go-git layers on top
// for its git:// and ssh:// transports.
package remote

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/storage/filesystem"
)

const dotDir = ".lit"

// ParseURL resolves a remote URL string to a local filesystem path,
// rejecting every scheme but "file". A bare absolute or relative path (no
// "scheme://" prefix) is accepted as shorthand, matching git's own
// treatment of local paths as remotes.
func ParseURL(rawURL string) (string, error) {
	if idx := strings.Index(rawURL, "://"); idx >= 0 {
		scheme, rest := rawURL[:idx], rawURL[idx+len("://"):]
		if !strings.EqualFold(scheme, "file") || rest == "" {
			return "", errkind.ErrUnsupportedTransport
		}
		return filepath.Clean(rest), nil
	}

	abs, err := filepath.Abs(rawURL)
	if err != nil {
		return "", &errkind.IOError{Op: "resolve remote url " + rawURL, Inner: err}
	}
	return abs, nil
}

// Open resolves rawURL and opens whatever repository layout lives there —
// bare or non-bare — the same two shapes Repository.Open recognizes,
// except a remote URL always names the repository root directly rather
// than something to search upward from.
func Open(rawURL string) (*filesystem.Storage, error) {
	path, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if fi, err := os.Stat(filepath.Join(path, dotDir)); err == nil && fi.IsDir() {
		fs, err := osfs.New(path).Chroot(dotDir)
		if err != nil {
			return nil, &errkind.IOError{Op: "chroot " + dotDir, Inner: err}
		}
		return filesystem.NewStorage(fs), nil
	}
	if isBareRoot(path) {
		return filesystem.NewStorage(osfs.New(path)), nil
	}
	return nil, &errkind.NotFoundError{Kind: "remote", Name: rawURL}
}

// Head resolves url's HEAD: the short branch name it's attached to (empty
// when detached) and the commit it currently names, for Clone to set its
// own HEAD and working tree to match, per §4.9's "set HEAD to remote's
// HEAD target".
func Head(url string) (branch string, hash plumbing.Hash, err error) {
	src, err := Open(url)
	if err != nil {
		return "", plumbing.ZeroHash, err
	}

	ref, err := src.Refs.Reference(plumbing.HEAD)
	if err != nil {
		return "", plumbing.ZeroHash, err
	}
	if ref.Type() != plumbing.SymbolicReference {
		return "", ref.Hash(), nil
	}

	target := ref.Target()
	h, err := src.Refs.Resolve(string(target))
	if err != nil {
		return "", plumbing.ZeroHash, err
	}
	return target.Short(), h, nil
}

func isBareRoot(dir string) bool {
	for _, name := range []string{"HEAD", "objects", "refs"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}
