package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/firiho/lit/plumbing"
	"github.com/pjbgf/sha1cd"
)

var (
	ErrMalformedSignature = errors.New("index: malformed DIRC signature")
	ErrUnsupportedVersion = errors.New("index: unsupported version")
	ErrChecksumMismatch   = errors.New("index: trailing checksum mismatch")
	ErrMalformedEntry     = errors.New("index: malformed entry")
)

// A Decoder reads the binary DIRC index format from an input stream.
type Decoder struct {
	r io.Reader
}

// NewDecoder returns a Decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode reads a whole index file into idx, verifying the trailing SHA-1
// checksum against everything that preceded it.
func (d *Decoder) Decode(idx *Index) error {
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	if len(data) < plumbing.HashSize {
		return ErrMalformedSignature
	}
	body, trailer := data[:len(data)-plumbing.HashSize], data[len(data)-plumbing.HashSize:]
	h := sha1cd.New()
	_, _ = h.Write(body)
	br := bufio.NewReader(bytes.NewReader(body))

	sig := make([]byte, 4)
	if _, err := io.ReadFull(br, sig); err != nil || string(sig) != "DIRC" {
		return ErrMalformedSignature
	}

	version, err := readUint32(br)
	if err != nil {
		return err
	}
	if version != Version {
		return ErrUnsupportedVersion
	}
	idx.Version = version

	count, err := readUint32(br)
	if err != nil {
		return err
	}

	idx.Entries = make([]*Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		e, err := d.readEntry(br)
		if err != nil {
			return err
		}
		idx.Entries = append(idx.Entries, e)
	}

	sum := h.Sum(nil)
	for i := range sum {
		if sum[i] != trailer[i] {
			return ErrChecksumMismatch
		}
	}
	return nil
}

func (d *Decoder) readEntry(r io.Reader) (*Entry, error) {
	e := &Entry{}

	ctimeSec, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ctimeNsec, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(int64(ctimeSec), int64(ctimeNsec))

	mtimeSec, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	mtimeNsec, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	e.ModifiedAt = time.Unix(int64(mtimeSec), int64(mtimeNsec))

	for _, dst := range []*uint32{&e.Dev, &e.Inode, &e.Mode, &e.UID, &e.GID, &e.Size} {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	hashBytes := make([]byte, plumbing.HashSize)
	if _, err := io.ReadFull(r, hashBytes); err != nil {
		return nil, err
	}
	e.Hash, _ = plumbing.FromBytes(hashBytes)

	flags, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	e.Stage = Stage((flags >> 12) & 0x3)
	nameLen := int(flags & 0xFFF)

	name, err := d.readName(r, nameLen)
	if err != nil {
		return nil, err
	}
	e.Name = name

	pad := entryPadding(len(name)) - 1 // readName already consumed the first NUL
	if _, err := io.CopyN(io.Discard, r, int64(pad)); err != nil {
		return nil, err
	}

	return e, nil
}

// readName reads a NUL-terminated entry name. When the flags length field
// saturated at 0xFFF, the real name may be longer than declaredLen, so
// scanning continues past it until the terminating NUL is found.
func (d *Decoder) readName(r io.Reader, declaredLen int) (string, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		return "", ErrMalformedEntry
	}

	name, err := br.ReadString(0)
	if err != nil {
		return "", ErrMalformedEntry
	}
	return name[:len(name)-1], nil
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}

func readUint16(r io.Reader) (uint16, error) {
	var v uint16
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, err
	}
	return v, nil
}
