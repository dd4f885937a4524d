package object

import (
	"github.com/firiho/lit/plumbing"
)

// Blob is the content of a single file, with no notion of its own name or
// mode; those live in the tree entry that points at it.
type Blob struct {
	Hash plumbing.Hash
	Size int64

	content []byte
}

// Contents returns the blob's raw payload.
func (b *Blob) Contents() []byte { return b.content }

// DecodeBlob builds a Blob from a stored object. The payload is the blob's
// content verbatim; there is no further framing to parse.
func DecodeBlob(o plumbing.EncodedObject) (*Blob, error) {
	if o.Type() != plumbing.BlobObject {
		return nil, plumbing.ErrInvalidType
	}
	content, err := o.Reader()
	if err != nil {
		return nil, err
	}
	return &Blob{Hash: o.Hash(), Size: o.Size(), content: content}, nil
}

// NewBlob builds and hashes a Blob from raw content, ready to be stored.
func NewBlob(content []byte) *Blob {
	h := plumbing.ComputeHash(plumbing.BlobObject, content)
	return &Blob{Hash: h, Size: int64(len(content)), content: content}
}

// EncodedObject returns the in-memory encoded form lit's object stores
// persist.
func (b *Blob) EncodedObject() plumbing.EncodedObject {
	return plumbing.NewMemoryObject(plumbing.BlobObject, b.content)
}
