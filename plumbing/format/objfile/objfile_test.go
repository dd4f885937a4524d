package objfile

import (
	"bytes"
	"io"
	"testing"

	"github.com/firiho/lit/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	content := []byte("hello\n")

	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteHeader(plumbing.BlobObject, int64(len(content))))

	n, err := io.Copy(w, bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)
	require.NoError(t, w.Close())

	wantHash := plumbing.ComputeHash(plumbing.BlobObject, content)
	assert.Equal(t, wantHash, w.Hash())

	r, err := NewReader(buf)
	require.NoError(t, err)

	typ, size, err := r.Header()
	require.NoError(t, err)
	assert.Equal(t, plumbing.BlobObject, typ)
	assert.Equal(t, int64(len(content)), size)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, wantHash, r.Hash())
	require.NoError(t, r.Close())
}

func TestWriteOverflow(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	require.NoError(t, w.WriteHeader(plumbing.BlobObject, 8))

	n, err := w.Write([]byte("1234"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = w.Write([]byte("56789"))
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, 4, n)
}

func TestWriteHeaderInvalidType(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	err := w.WriteHeader(plumbing.InvalidObject, 8)
	assert.ErrorIs(t, err, plumbing.ErrInvalidType)
}

func TestWriteHeaderNegativeSize(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	err := w.WriteHeader(plumbing.BlobObject, -1)
	assert.ErrorIs(t, err, ErrNegativeSize)
}

func TestReadGarbage(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("not zlib data")))
	assert.Error(t, err)
}

func TestReadEmpty(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil))
	assert.Error(t, err)
}
