package index

import (
	"bytes"
	"testing"
	"time"

	"github.com/firiho/lit/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry(name string, stage Stage) *Entry {
	return &Entry{
		CreatedAt:  time.Unix(1000, 0),
		ModifiedAt: time.Unix(2000, 0),
		Mode:       0100644,
		Size:       42,
		Hash:       plumbing.ComputeHash(plumbing.BlobObject, []byte(name)),
		Stage:      stage,
		Name:       name,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	idx := &Index{}
	idx.Upsert(sampleEntry("a.txt", Stage0))
	idx.Upsert(sampleEntry("dir/b.txt", Stage0))
	idx.Upsert(sampleEntry("this-is-a-rather-long-path-name-that-exceeds-sixty-bytes-on-its-own.txt", Stage0))

	buf := &bytes.Buffer{}
	require.NoError(t, NewEncoder(buf).Encode(idx))

	got := &Index{}
	require.NoError(t, NewDecoder(bytes.NewReader(buf.Bytes())).Decode(got))

	require.Len(t, got.Entries, 3)
	for i, e := range idx.Entries {
		assert.Equal(t, e.Name, got.Entries[i].Name)
		assert.Equal(t, e.Hash, got.Entries[i].Hash)
		assert.Equal(t, e.Mode, got.Entries[i].Mode)
		assert.Equal(t, e.Size, got.Entries[i].Size)
		assert.Equal(t, e.Stage, got.Entries[i].Stage)
		assert.Equal(t, e.CreatedAt.Unix(), got.Entries[i].CreatedAt.Unix())
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	idx := &Index{}
	idx.Upsert(sampleEntry("a.txt", Stage0))

	buf := &bytes.Buffer{}
	require.NoError(t, NewEncoder(buf).Encode(idx))

	corrupt := buf.Bytes()
	corrupt[len(corrupt)-1] ^= 0xFF

	err := NewDecoder(bytes.NewReader(corrupt)).Decode(&Index{})
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecodeBadSignature(t *testing.T) {
	err := NewDecoder(bytes.NewReader([]byte("XXXX0000"))).Decode(&Index{})
	assert.ErrorIs(t, err, ErrMalformedSignature)
}

func TestConflictEntries(t *testing.T) {
	idx := &Index{}
	idx.Upsert(sampleEntry("a.txt", Stage1))
	idx.Upsert(sampleEntry("a.txt", Stage2))
	idx.Upsert(sampleEntry("a.txt", Stage3))

	base, ours, theirs := idx.ConflictEntries("a.txt")
	require.NotNil(t, base)
	require.NotNil(t, ours)
	require.NotNil(t, theirs)
	assert.True(t, idx.IsConflicted("a.txt"))
	assert.Equal(t, []string{"a.txt"}, idx.ConflictedPaths())
}

func TestUpsertKeepsSortOrder(t *testing.T) {
	idx := &Index{}
	idx.Upsert(sampleEntry("z.txt", Stage0))
	idx.Upsert(sampleEntry("a.txt", Stage0))
	idx.Upsert(sampleEntry("m.txt", Stage0))

	var names []string
	for _, e := range idx.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a.txt", "m.txt", "z.txt"}, names)
}

func TestRemove(t *testing.T) {
	idx := &Index{}
	idx.Upsert(sampleEntry("a.txt", Stage0))
	idx.Upsert(sampleEntry("b.txt", Stage0))
	idx.Remove("a.txt")

	_, ok := idx.Entry("a.txt")
	assert.False(t, ok)
	_, ok = idx.Entry("b.txt")
	assert.True(t, ok)
}
