package index

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pjbgf/sha1cd"
)

// entryFixedSize is the length in bytes of an entry's fixed fields, before
// the variable-length NUL-terminated name.
const entryFixedSize = 62

// An Encoder writes the binary DIRC index format to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes idx in DIRC v2 format, including the trailing SHA-1
// checksum of everything written before it.
func (e *Encoder) Encode(idx *Index) error {
	h := sha1cd.New()
	bw := bufio.NewWriter(io.MultiWriter(e.w, h))

	if err := e.writeHeader(bw, idx); err != nil {
		return err
	}
	for _, entry := range idx.Entries {
		if err := e.writeEntry(bw, entry); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	_, err := e.w.Write(h.Sum(nil))
	return err
}

func (e *Encoder) writeHeader(w io.Writer, idx *Index) error {
	if _, err := w.Write([]byte("DIRC")); err != nil {
		return err
	}
	version := idx.Version
	if version == 0 {
		version = Version
	}
	if err := binary.Write(w, binary.BigEndian, version); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, uint32(len(idx.Entries)))
}

func (e *Encoder) writeEntry(w io.Writer, entry *Entry) error {
	fields := []any{
		uint32(entry.CreatedAt.Unix()),
		uint32(entry.CreatedAt.Nanosecond()),
		uint32(entry.ModifiedAt.Unix()),
		uint32(entry.ModifiedAt.Nanosecond()),
		entry.Dev,
		entry.Inode,
		entry.Mode,
		entry.UID,
		entry.GID,
		entry.Size,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	if _, err := w.Write(entry.Hash.Bytes()); err != nil {
		return err
	}

	nameLen := len(entry.Name)
	flagLen := nameLen
	if flagLen > 0xFFF {
		flagLen = 0xFFF
	}
	flags := uint16(entry.Stage&0x3)<<12 | uint16(flagLen)
	if err := binary.Write(w, binary.BigEndian, flags); err != nil {
		return err
	}

	if _, err := io.WriteString(w, entry.Name); err != nil {
		return err
	}

	pad := entryPadding(nameLen)
	_, err := w.Write(make([]byte, pad))
	return err
}

// entryPadding returns how many NUL bytes must follow the entry name so the
// entry's total length (fixed fields + hash + flags + name + padding) is a
// multiple of 8, with at least one NUL terminator.
func entryPadding(nameLen int) int {
	entryLen := entryFixedSize + nameLen
	total := ((entryLen + 8) / 8) * 8
	return total - entryLen
}
