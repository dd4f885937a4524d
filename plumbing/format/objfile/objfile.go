// Package objfile encodes and decodes loose objects in Git's on-disk
// format: zlib(deflate("<type> <size>\x00<payload>")).
package objfile

import (
	"bufio"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/firiho/lit/plumbing"
)

var (
	ErrOverflow        = errors.New("objfile: declared data length exceeded")
	ErrNegativeSize    = errors.New("objfile: negative object size")
	ErrMalformedHeader = errors.New("objfile: malformed header")
)

// Writer streams an object's header and payload through zlib while hashing
// the uncompressed bytes, so Hash() is available as soon as Close returns.
type Writer struct {
	w       io.Writer
	zw      *zlib.Writer
	hasher  *plumbing.Hasher
	size    int64
	written int64
	closed  bool
}

// NewWriter returns a Writer that deflates onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader declares the object's type and payload size. It must be
// called exactly once, before any call to Write.
func (w *Writer) WriteHeader(t plumbing.ObjectType, size int64) error {
	if t == plumbing.InvalidObject {
		return plumbing.ErrInvalidType
	}
	if size < 0 {
		return ErrNegativeSize
	}

	w.size = size
	w.hasher = plumbing.NewHasher(t, size)
	w.zw = zlib.NewWriter(w.w)

	header := fmt.Sprintf("%s %d\x00", t, size)
	if _, err := io.WriteString(w.zw, header); err != nil {
		return err
	}
	_, _ = io.WriteString(w.hasher, header)
	return nil
}

// Write appends payload bytes. Writing past the declared size truncates the
// excess, still deflates the accepted prefix, and returns ErrOverflow.
func (w *Writer) Write(p []byte) (int, error) {
	overflow := w.written + int64(len(p)) - w.size
	if overflow > 0 {
		p = p[:int64(len(p))-overflow]
	}

	n, err := w.zw.Write(p)
	w.written += int64(n)
	if n > 0 {
		_, _ = w.hasher.Write(p[:n])
	}

	if err == nil && overflow > 0 {
		err = ErrOverflow
	}
	return n, err
}

// Hash returns the object id of everything written so far.
func (w *Writer) Hash() plumbing.Hash { return w.hasher.Sum() }

// Close flushes the zlib stream. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.zw == nil {
		return nil
	}
	return w.zw.Close()
}

// Reader inflates a loose object, exposing its header and hashing the
// payload as it is read so the caller can verify it against the requested
// object id.
type Reader struct {
	rc     io.ReadCloser
	br     *bufio.Reader
	hasher *plumbing.Hasher
	t      plumbing.ObjectType
	size   int64
	read   int64
}

// NewReader inflates r and parses the object header.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}

	rd := &Reader{rc: zr, br: bufio.NewReader(zr)}
	if err := rd.readHeader(); err != nil {
		_ = zr.Close()
		return nil, err
	}
	return rd, nil
}

func (r *Reader) readHeader() error {
	typ, err := r.br.ReadString(' ')
	if err != nil || len(typ) < 2 {
		return ErrMalformedHeader
	}
	typ = typ[:len(typ)-1]

	sizeStr, err := r.br.ReadString(0)
	if err != nil || len(sizeStr) < 1 {
		return ErrMalformedHeader
	}
	sizeStr = sizeStr[:len(sizeStr)-1]

	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil || size < 0 {
		return ErrMalformedHeader
	}

	t, err := plumbing.ParseObjectType(typ)
	if err != nil {
		return err
	}

	r.t = t
	r.size = size
	r.hasher = plumbing.NewHasher(t, size)
	return nil
}

// Header returns the object's declared type and size.
func (r *Reader) Header() (plumbing.ObjectType, int64, error) {
	return r.t, r.size, nil
}

// Read returns payload bytes, stopping at the declared size regardless of
// how much the underlying stream actually holds.
func (r *Reader) Read(p []byte) (int, error) {
	remaining := r.size - r.read
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.br.Read(p)
	if n > 0 {
		r.read += int64(n)
		_, _ = r.hasher.Write(p[:n])
	}
	return n, err
}

// Hash returns the object id of the header plus every payload byte read so
// far. It should be called only after Read has returned io.EOF.
func (r *Reader) Hash() plumbing.Hash { return r.hasher.Sum() }

// Close releases the underlying zlib reader.
func (r *Reader) Close() error { return r.rc.Close() }
