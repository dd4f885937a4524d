// Package plumbing defines the low-level, format-stable types shared by the
// rest of lit: object hashes, object types, and the hasher used to derive
// one from the other. Higher-level object decoding lives in plumbing/object;
// on-disk codecs live in plumbing/format/*.
package plumbing

import (
	"bytes"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/pjbgf/sha1cd"
)

// HashSize is the length in bytes of a lit object id: a 20-byte SHA-1
// digest. SHA-256 object ids are not supported.
const HashSize = 20

// Hash is a 20-byte SHA-1 object id.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash, used as the "absent object" sentinel in
// ref compare-and-set and tree-merge base/ours/theirs comparisons.
var ZeroHash Hash

// NewHash parses a 40-character hex string into a Hash, returning the zero
// hash if s is not well-formed. Callers that need to distinguish a parse
// failure from a genuine zero hash should use FromHex.
func NewHash(s string) Hash {
	h, _ := FromHex(s)
	return h
}

// FromHex parses a 40-character hex string into a Hash.
func FromHex(s string) (Hash, bool) {
	var h Hash
	if len(s) != HashSize*2 {
		return h, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

// FromBytes builds a Hash from a raw 20-byte slice.
func FromBytes(b []byte) (Hash, bool) {
	var h Hash
	if len(b) != HashSize {
		return h, false
	}
	copy(h[:], b)
	return h, true
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

// String returns the 40-character lowercase hex encoding of h.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Bytes returns the raw 20 bytes of h.
func (h Hash) Bytes() []byte { return h[:] }

// Compare orders two hashes byte-wise.
func (h Hash) Compare(other Hash) int { return bytes.Compare(h[:], other[:]) }

// IsHash reports whether s is a well-formed 40-character hex object id.
func IsHash(s string) bool {
	if len(s) != HashSize*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// IsHashPrefix reports whether s is a plausible short object-id prefix: at
// least 4 and at most 40 hex characters.
func IsHashPrefix(s string) bool {
	if len(s) < 4 || len(s) > HashSize*2 {
		return false
	}
	return isHex(s)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// HasPrefix reports whether h's hex encoding starts with prefix.
func (h Hash) HasPrefix(prefix string) bool {
	return strings.HasPrefix(h.String(), strings.ToLower(prefix))
}

// HashSlice attaches sort.Interface to []Hash, in byte order.
type HashSlice []Hash

func (p HashSlice) Len() int           { return len(p) }
func (p HashSlice) Less(i, j int) bool { return p[i].Compare(p[j]) < 0 }
func (p HashSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// SortHashes sorts hashes into increasing byte order, in place.
func SortHashes(h []Hash) { sort.Sort(HashSlice(h)) }

// Hasher accumulates the bytes of a serialized object (header plus payload)
// and produces its object id on Sum. The header is written eagerly by
// NewHasher, so every object id is computed exactly as
// sha1("<type> <size>\x00<payload>"), matching Git's loose-object digest.
type Hasher struct {
	h interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

// NewHasher returns a Hasher primed with the object header for t and size.
func NewHasher(t ObjectType, size int64) *Hasher {
	h := sha1cd.New()
	_, _ = h.Write(t.Bytes())
	_, _ = h.Write([]byte(" "))
	_, _ = h.Write([]byte(strconv.FormatInt(size, 10)))
	_, _ = h.Write([]byte{0})
	return &Hasher{h: h}
}

// Write feeds additional payload bytes into the running digest.
func (h *Hasher) Write(p []byte) (int, error) { return h.h.Write(p) }

// Sum returns the object id accumulated so far.
func (h *Hasher) Sum() Hash {
	var out Hash
	copy(out[:], h.h.Sum(nil))
	return out
}

// ComputeHash hashes an in-memory payload in one call, for callers that
// already have the full object body (e.g. a blob built from working-tree
// content).
func ComputeHash(t ObjectType, content []byte) Hash {
	h := NewHasher(t, int64(len(content)))
	_, _ = h.Write(content)
	return h.Sum()
}
