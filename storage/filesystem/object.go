package filesystem

import (
	"bytes"
	"io"
	"os"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/format/objfile"
	"github.com/firiho/lit/plumbing/object"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// ObjectStorage reads and writes loose objects under .lit/objects.
type ObjectStorage struct {
	dir *dotlit.Repository
}

// NewObjectStorage returns an ObjectStorage rooted at dir.
func NewObjectStorage(dir *dotlit.Repository) *ObjectStorage {
	return &ObjectStorage{dir: dir}
}

// SetEncodedObject writes o to its content-addressed path, doing nothing if
// an object with that hash is already stored: loose objects are never
// rewritten.
func (s *ObjectStorage) SetEncodedObject(o plumbing.EncodedObject) (plumbing.Hash, error) {
	hash := o.Hash()
	path := s.dir.ObjectPath(hash)

	if _, err := s.dir.Fs().Stat(path); err == nil {
		return hash, nil
	}

	content, err := o.Reader()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	err = s.dir.WriteFileAtomic(path, func(w io.Writer) error {
		ow := objfile.NewWriter(w)
		if err := ow.WriteHeader(o.Type(), int64(len(content))); err != nil {
			return err
		}
		if _, err := ow.Write(content); err != nil {
			return err
		}
		return ow.Close()
	})
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

// EncodedObject reads back the object stored under hash.
func (s *ObjectStorage) EncodedObject(hash plumbing.Hash) (plumbing.EncodedObject, error) {
	path := s.dir.ObjectPath(hash)
	f, err := s.dir.Fs().Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errkind.NotFoundError{Kind: "object", Name: hash.String()}
		}
		return nil, &errkind.IOError{Op: "open " + path, Inner: err}
	}
	defer f.Close()

	r, err := objfile.NewReader(f)
	if err != nil {
		return nil, &errkind.CorruptError{Kind: "object", Detail: err.Error()}
	}
	defer r.Close()

	t, size, _ := r.Header()
	content := make([]byte, size)
	if _, err := io.ReadFull(r, content); err != nil {
		return nil, &errkind.CorruptError{Kind: "object", Detail: err.Error()}
	}
	if got := r.Hash(); got != hash {
		return nil, &errkind.CorruptError{Kind: "object", Detail: "hash mismatch: " + got.String()}
	}

	return plumbing.NewMemoryObject(t, content), nil
}

// HasEncodedObject reports whether hash is stored.
func (s *ObjectStorage) HasEncodedObject(hash plumbing.Hash) bool {
	_, err := s.dir.Fs().Stat(s.dir.ObjectPath(hash))
	return err == nil
}

// CommitObject resolves hash to a decoded Commit, satisfying
// object.CommitGetter for the commit-graph algorithms.
func (s *ObjectStorage) CommitObject(hash plumbing.Hash) (*object.Commit, error) {
	o, err := s.EncodedObject(hash)
	if err != nil {
		return nil, err
	}
	if o.Type() != plumbing.CommitObject {
		return nil, &errkind.CorruptError{Kind: "object", Detail: "not a commit: " + hash.String()}
	}
	return object.DecodeCommit(o)
}

// TreeObject resolves hash to a decoded Tree.
func (s *ObjectStorage) TreeObject(hash plumbing.Hash) (*object.Tree, error) {
	o, err := s.EncodedObject(hash)
	if err != nil {
		return nil, err
	}
	if o.Type() != plumbing.TreeObject {
		return nil, &errkind.CorruptError{Kind: "object", Detail: "not a tree: " + hash.String()}
	}
	return object.DecodeTree(o)
}

// BlobObject resolves hash to a decoded Blob.
func (s *ObjectStorage) BlobObject(hash plumbing.Hash) (*object.Blob, error) {
	o, err := s.EncodedObject(hash)
	if err != nil {
		return nil, err
	}
	if o.Type() != plumbing.BlobObject {
		return nil, &errkind.CorruptError{Kind: "object", Detail: "not a blob: " + hash.String()}
	}
	return object.DecodeBlob(o)
}

// TagObject resolves hash to a decoded Tag.
func (s *ObjectStorage) TagObject(hash plumbing.Hash) (*object.Tag, error) {
	o, err := s.EncodedObject(hash)
	if err != nil {
		return nil, err
	}
	if o.Type() != plumbing.TagObject {
		return nil, &errkind.CorruptError{Kind: "object", Detail: "not a tag: " + hash.String()}
	}
	return object.DecodeTag(o)
}

// ResolvePrefix resolves a short (>= 4 hex char) object-id prefix to the
// single stored object it matches, failing with AmbiguousError if more
// than one object matches and NotFoundError if none do.
func (s *ObjectStorage) ResolvePrefix(prefix string) (plumbing.Hash, error) {
	if h, ok := plumbing.FromHex(prefix); ok {
		if s.HasEncodedObject(h) {
			return h, nil
		}
		return plumbing.ZeroHash, &errkind.NotFoundError{Kind: "object", Name: prefix}
	}
	if !plumbing.IsHashPrefix(prefix) {
		return plumbing.ZeroHash, &errkind.NotFoundError{Kind: "object", Name: prefix}
	}

	shard := prefix[:2]
	rest := prefix[2:]

	fis, err := s.dir.Fs().ReadDir(s.dir.Fs().Join(dotlit.ObjectsPath, shard))
	if err != nil {
		if os.IsNotExist(err) {
			return plumbing.ZeroHash, &errkind.NotFoundError{Kind: "object", Name: prefix}
		}
		return plumbing.ZeroHash, &errkind.IOError{Op: "scan objects/" + shard, Inner: err}
	}

	var matches []string
	for _, fi := range fis {
		if len(fi.Name()) == 38 && hasHexPrefix(fi.Name(), rest) {
			matches = append(matches, shard+fi.Name())
		}
	}

	switch len(matches) {
	case 0:
		return plumbing.ZeroHash, &errkind.NotFoundError{Kind: "object", Name: prefix}
	case 1:
		return plumbing.NewHash(matches[0]), nil
	default:
		return plumbing.ZeroHash, &errkind.AmbiguousError{Prefix: prefix, Candidates: matches}
	}
}

func hasHexPrefix(name, prefix string) bool {
	return len(name) >= len(prefix) && bytes.EqualFold([]byte(name[:len(prefix)]), []byte(prefix))
}
