package plumbing

import (
	"io"
	"strings"
)

const (
	refPrefix       = "refs/"
	refHeadPrefix   = refPrefix + "heads/"
	refTagPrefix    = refPrefix + "tags/"
	refRemotePrefix = refPrefix + "remotes/"
	symrefPrefix    = "ref: "
)

// ReferenceType discriminates a ref that points directly at an object from
// one that points at another ref by name.
type ReferenceType int8

const (
	InvalidReference  ReferenceType = 0
	HashReference     ReferenceType = 1
	SymbolicReference ReferenceType = 2
)

// ReferenceName is a full ref path, e.g. "refs/heads/main" or "HEAD".
type ReferenceName string

// HEAD is the name of the ref that tracks the current checkout position.
const HEAD ReferenceName = "HEAD"

// String returns the name unchanged; it exists so ReferenceName satisfies
// fmt.Stringer for log and error formatting.
func (n ReferenceName) String() string { return string(n) }

// NewBranchReferenceName builds the full ref path for a local branch.
func NewBranchReferenceName(name string) ReferenceName {
	return ReferenceName(refHeadPrefix + name)
}

// NewTagReferenceName builds the full ref path for a tag.
func NewTagReferenceName(name string) ReferenceName {
	return ReferenceName(refTagPrefix + name)
}

// NewRemoteReferenceName builds the full ref path for a remote-tracking
// branch under the named remote.
func NewRemoteReferenceName(remote, branch string) ReferenceName {
	return ReferenceName(refRemotePrefix + remote + "/" + branch)
}

// NewRemoteTrackingReferenceName builds the full ref path under
// refs/remotes/ from a single short name, e.g. "origin/main". Used when
// resolving a short name whose remote and branch components aren't known
// separately.
func NewRemoteTrackingReferenceName(name string) ReferenceName {
	return ReferenceName(refRemotePrefix + name)
}

// Short returns the name with its refs/heads/, refs/tags/ or
// refs/remotes/ prefix stripped, for display purposes.
func (n ReferenceName) Short() string {
	s := string(n)
	for _, prefix := range []string{refHeadPrefix, refTagPrefix, refRemotePrefix} {
		if strings.HasPrefix(s, prefix) {
			return s[len(prefix):]
		}
	}
	return s
}

// IsBranch reports whether n names a local branch.
func (n ReferenceName) IsBranch() bool { return strings.HasPrefix(string(n), refHeadPrefix) }

// IsTag reports whether n names a tag.
func (n ReferenceName) IsTag() bool { return strings.HasPrefix(string(n), refTagPrefix) }

// IsRemote reports whether n names a remote-tracking branch.
func (n ReferenceName) IsRemote() bool { return strings.HasPrefix(string(n), refRemotePrefix) }

// Reference is a named pointer: either directly at an object id, or at
// another ref by name (a symbolic ref, used for HEAD while attached to a
// branch).
type Reference struct {
	t      ReferenceType
	n      ReferenceName
	h      Hash
	target ReferenceName
}

// NewHashReference creates a reference that points directly at h.
func NewHashReference(n ReferenceName, h Hash) *Reference {
	return &Reference{t: HashReference, n: n, h: h}
}

// NewSymbolicReference creates a reference that points at another ref by
// name.
func NewSymbolicReference(n, target ReferenceName) *Reference {
	return &Reference{t: SymbolicReference, n: n, target: target}
}

// NewReferenceFromStrings parses target the way a ref file's on-disk
// content is written: a "ref: <name>" line for a symbolic ref, or a bare
// 40-character hex hash otherwise.
func NewReferenceFromStrings(name, target string) *Reference {
	r := &Reference{n: ReferenceName(name)}
	target = strings.TrimSpace(target)

	if strings.HasPrefix(target, symrefPrefix) {
		r.t = SymbolicReference
		r.target = ReferenceName(strings.TrimSpace(target[len(symrefPrefix):]))
		return r
	}

	r.t = HashReference
	r.h = NewHash(target)
	return r
}

// Type reports whether r is a hash or symbolic reference.
func (r *Reference) Type() ReferenceType { return r.t }

// Name returns r's own name.
func (r *Reference) Name() ReferenceName { return r.n }

// Hash returns the target object id of a HashReference. It is the zero
// hash for a SymbolicReference.
func (r *Reference) Hash() Hash { return r.h }

// Target returns the name a SymbolicReference points at. It is empty for a
// HashReference.
func (r *Reference) Target() ReferenceName { return r.target }

// Strings returns the (name, on-disk-value) pair to write to a loose ref
// file, mirroring NewReferenceFromStrings.
func (r *Reference) Strings() (string, string) {
	if r.t == SymbolicReference {
		return string(r.n), symrefPrefix + string(r.target)
	}
	return string(r.n), r.h.String()
}

// ReferenceIter is a closable iterator over a sequence of references.
type ReferenceIter interface {
	Next() (*Reference, error)
	Close()
}

// NewReferenceSliceIter returns a ReferenceIter over an already-materialized
// slice, for stores that list everything eagerly (e.g. after reading
// packed-refs).
func NewReferenceSliceIter(refs []*Reference) ReferenceIter {
	return &sliceReferenceIter{refs: refs}
}

type sliceReferenceIter struct {
	refs []*Reference
	pos  int
}

func (it *sliceReferenceIter) Next() (*Reference, error) {
	if it.pos >= len(it.refs) {
		return nil, io.EOF
	}
	r := it.refs[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceReferenceIter) Close() {}
