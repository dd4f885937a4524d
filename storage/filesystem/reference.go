package filesystem

import (
	"io"
	"os"
	"strings"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// maxSymbolicDepth bounds how many symbolic hops resolve will follow before
// declaring the chain too deep, guarding against a ref cycle hanging a
// reader forever.
const maxSymbolicDepth = 10

// ReferenceStorage reads and writes loose refs and HEAD under .lit.
type ReferenceStorage struct {
	dir     *dotlit.Repository
	objects *ObjectStorage
}

// NewReferenceStorage returns a ReferenceStorage rooted at dir. objects is
// used to resolve short object-id prefixes when a literal oid is given to
// Resolve.
func NewReferenceStorage(dir *dotlit.Repository, objects *ObjectStorage) *ReferenceStorage {
	return &ReferenceStorage{dir: dir, objects: objects}
}

func (s *ReferenceStorage) readRaw(path string) (string, error) {
	f, err := s.dir.Fs().Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &errkind.NotFoundError{Kind: "reference", Name: path}
		}
		return "", &errkind.IOError{Op: "open " + path, Inner: err}
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", &errkind.IOError{Op: "read " + path, Inner: err}
	}
	return strings.TrimRight(string(b), "\n"), nil
}

// Reference reads the named ref without following symbolic links.
func (s *ReferenceStorage) Reference(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	raw, err := s.readRaw(s.dir.RefPath(string(name)))
	if err != nil {
		return nil, err
	}
	return plumbing.NewReferenceFromStrings(string(name), raw), nil
}

// SetReference writes ref to its on-disk location atomically.
func (s *ReferenceStorage) SetReference(ref *plumbing.Reference) error {
	name, content := ref.Strings()
	path := s.dir.RefPath(name)
	return s.dir.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, content+"\n")
		return err
	})
}

// CompareAndSetReference updates ref only if the current on-disk value
// equals oldHash, failing with StaleError on mismatch. A zero oldHash means
// "the ref must not currently exist".
func (s *ReferenceStorage) CompareAndSetReference(ref *plumbing.Reference, oldHash plumbing.Hash) error {
	path := s.dir.RefPath(string(ref.Name()))
	lock := dotlit.NewLock(s.dir.Fs(), path)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	current, err := s.Reference(ref.Name())
	if err != nil {
		if !errorsIsNotFound(err) {
			return err
		}
		if !oldHash.IsZero() {
			return &errkind.StaleError{Ref: string(ref.Name()), Expected: oldHash.String(), Actual: "<absent>"}
		}
	} else if current.Hash() != oldHash {
		return &errkind.StaleError{Ref: string(ref.Name()), Expected: oldHash.String(), Actual: current.Hash().String()}
	}

	_, content := ref.Strings()
	if _, err := lock.File().Write([]byte(content + "\n")); err != nil {
		return &errkind.IOError{Op: "write " + path, Inner: err}
	}
	return lock.CommitAndRelease(path)
}

// RemoveReference deletes a ref file.
func (s *ReferenceStorage) RemoveReference(name plumbing.ReferenceName) error {
	if err := s.dir.Fs().Remove(s.dir.RefPath(string(name))); err != nil && !os.IsNotExist(err) {
		return &errkind.IOError{Op: "remove " + string(name), Inner: err}
	}
	return nil
}

func errorsIsNotFound(err error) bool {
	var nf *errkind.NotFoundError
	return asNotFound(err, &nf)
}

func asNotFound(err error, target **errkind.NotFoundError) bool {
	for err != nil {
		if nf, ok := err.(*errkind.NotFoundError); ok {
			*target = nf
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Resolve follows name to a direct object id, accepting the priority order
// the core defines: a literal object id, HEAD, a full "refs/..." path, or a
// short name tried in turn as a branch, tag, and remote-tracking branch. A
// short object-id prefix is resolved through objects if nothing else
// matches.
func (s *ReferenceStorage) Resolve(name string) (plumbing.Hash, error) {
	if plumbing.IsHash(name) {
		if h, ok := plumbing.FromHex(name); ok {
			return h, nil
		}
	}

	if name == string(plumbing.HEAD) {
		return s.resolveChain(plumbing.HEAD, 0)
	}

	if strings.HasPrefix(name, "refs/") {
		return s.resolveChain(plumbing.ReferenceName(name), 0)
	}

	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(name),
		plumbing.NewTagReferenceName(name),
		plumbing.NewRemoteTrackingReferenceName(name),
	}
	for _, c := range candidates {
		if h, err := s.resolveChain(c, 0); err == nil {
			return h, nil
		}
	}

	if plumbing.IsHashPrefix(name) {
		return s.objects.ResolvePrefix(name)
	}

	return plumbing.ZeroHash, &errkind.NotFoundError{Kind: "reference", Name: name}
}

func (s *ReferenceStorage) resolveChain(name plumbing.ReferenceName, depth int) (plumbing.Hash, error) {
	if depth > maxSymbolicDepth {
		return plumbing.ZeroHash, errkind.ErrTooDeep
	}
	ref, err := s.Reference(name)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if ref.Type() == plumbing.SymbolicReference {
		if ref.Target() == name {
			return plumbing.ZeroHash, errkind.ErrCyclic
		}
		return s.resolveChain(ref.Target(), depth+1)
	}
	return ref.Hash(), nil
}

// CreateBranch creates refs/heads/<name> at oid, failing if it already
// exists.
func (s *ReferenceStorage) CreateBranch(name string, oid plumbing.Hash) error {
	full := plumbing.NewBranchReferenceName(name)
	if _, err := s.Reference(full); err == nil {
		return &errkind.IOError{Op: "create branch " + name, Inner: errkind.ErrAlreadyExists}
	}
	return s.SetReference(plumbing.NewHashReference(full, oid))
}

// DeleteBranch removes refs/heads/<name>, refusing to delete the branch
// HEAD is currently attached to.
func (s *ReferenceStorage) DeleteBranch(name string) error {
	full := plumbing.NewBranchReferenceName(name)

	head, err := s.Reference(plumbing.HEAD)
	if err == nil && head.Type() == plumbing.SymbolicReference && head.Target() == full {
		return errkind.ErrCurrentBranch
	}
	return s.RemoveReference(full)
}

// SetHead points HEAD at a branch (symbolic) or detaches it at oid.
func (s *ReferenceStorage) SetHead(branchOrHash string) error {
	if plumbing.IsHash(branchOrHash) {
		h := plumbing.NewHash(branchOrHash)
		return s.SetReference(plumbing.NewHashReference(plumbing.HEAD, h))
	}
	full := plumbing.NewBranchReferenceName(branchOrHash)
	return s.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, full))
}

// IterReferences walks refs/ recursively and returns every reference found.
func (s *ReferenceStorage) IterReferences() (plumbing.ReferenceIter, error) {
	var refs []*plumbing.Reference
	if err := s.walkRefs(dotlit.RefsPath, &refs); err != nil {
		return nil, err
	}
	return plumbing.NewReferenceSliceIter(refs), nil
}

func (s *ReferenceStorage) walkRefs(dir string, out *[]*plumbing.Reference) error {
	fis, err := s.dir.Fs().ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errkind.IOError{Op: "scan " + dir, Inner: err}
	}

	for _, fi := range fis {
		path := s.dir.Fs().Join(dir, fi.Name())
		if fi.IsDir() {
			if err := s.walkRefs(path, out); err != nil {
				return err
			}
			continue
		}
		if strings.HasSuffix(fi.Name(), ".lock") {
			continue
		}
		raw, err := s.readRaw(path)
		if err != nil {
			return err
		}
		*out = append(*out, plumbing.NewReferenceFromStrings(path, raw))
	}
	return nil
}
