package plumbing

import "errors"

// ErrInvalidType is returned when an object header names a type outside
// {commit, tree, blob, tag}.
var ErrInvalidType = errors.New("invalid object type")

// ObjectType identifies one of the four object variants. It is also the
// literal string written into an object's on-disk header.
type ObjectType int8

const (
	InvalidObject ObjectType = iota
	CommitObject
	TreeObject
	BlobObject
	TagObject
)

// String returns the header token for t ("commit", "tree", "blob", "tag").
func (t ObjectType) String() string {
	switch t {
	case CommitObject:
		return "commit"
	case TreeObject:
		return "tree"
	case BlobObject:
		return "blob"
	case TagObject:
		return "tag"
	default:
		return "invalid"
	}
}

// Bytes returns the header token as a newly allocated byte slice.
func (t ObjectType) Bytes() []byte { return []byte(t.String()) }

// ParseObjectType parses a header token back into an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch s {
	case "commit":
		return CommitObject, nil
	case "tree":
		return TreeObject, nil
	case "blob":
		return BlobObject, nil
	case "tag":
		return TagObject, nil
	default:
		return InvalidObject, ErrInvalidType
	}
}

// EncodedObject is a stored object as seen by the object store: its type,
// declared size, id, and a fresh reader over its payload. Object stores
// return this shape; plumbing/object decodes the payload into the typed
// Blob/Tree/Commit/Tag variants.
type EncodedObject interface {
	Hash() Hash
	Type() ObjectType
	Size() int64
	Reader() ([]byte, error)
}

// MemoryObject is an in-memory EncodedObject, built from known content by
// NewMemoryObject and returned when a loose object file is decoded.
type MemoryObject struct {
	hash    Hash
	t       ObjectType
	content []byte
}

// NewMemoryObject builds a MemoryObject from an already-known type and
// content, computing its hash eagerly.
func NewMemoryObject(t ObjectType, content []byte) *MemoryObject {
	return &MemoryObject{
		hash:    ComputeHash(t, content),
		t:       t,
		content: content,
	}
}

func (o *MemoryObject) Hash() Hash    { return o.hash }
func (o *MemoryObject) Type() ObjectType { return o.t }
func (o *MemoryObject) Size() int64 {
	return int64(len(o.content))
}
func (o *MemoryObject) Reader() ([]byte, error) { return o.content, nil }
