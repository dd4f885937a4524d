package object

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/firiho/lit/plumbing"
)

// Tag is an annotated tag: a named, signed-by-convention pointer at another
// object (almost always a commit), carrying its own message independent of
// the target's.
type Tag struct {
	Hash       plumbing.Hash
	Target     plumbing.Hash
	TargetType plumbing.ObjectType
	Name       string
	Tagger     Signature
	Message    string
}

// DecodeTag parses a tag object's textual payload.
func DecodeTag(o plumbing.EncodedObject) (*Tag, error) {
	if o.Type() != plumbing.TagObject {
		return nil, plumbing.ErrInvalidType
	}
	content, err := o.Reader()
	if err != nil {
		return nil, err
	}

	t := &Tag{Hash: o.Hash()}
	s := bufio.NewScanner(bytes.NewReader(content))
	s.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var inMessage bool
	var msg strings.Builder
	for s.Scan() {
		line := s.Bytes()
		if inMessage {
			msg.Write(line)
			msg.WriteByte('\n')
			continue
		}
		if len(line) == 0 {
			inMessage = true
			continue
		}

		sp := bytes.IndexByte(line, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("object: malformed tag header line %q", line)
		}
		key, value := string(line[:sp]), line[sp+1:]

		switch key {
		case "object":
			h, ok := plumbing.FromHex(string(value))
			if !ok {
				return nil, fmt.Errorf("object: malformed tag target id")
			}
			t.Target = h
		case "type":
			typ, err := plumbing.ParseObjectType(string(value))
			if err != nil {
				return nil, err
			}
			t.TargetType = typ
		case "tag":
			t.Name = string(value)
		case "tagger":
			t.Tagger.Decode(value)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	t.Message = strings.TrimSuffix(msg.String(), "\n")
	return t, nil
}

// NewTag builds and hashes an annotated Tag, ready to be stored.
func NewTag(target plumbing.Hash, targetType plumbing.ObjectType, name string, tagger Signature, message string) *Tag {
	t := &Tag{
		Target:     target,
		TargetType: targetType,
		Name:       name,
		Tagger:     tagger,
		Message:    message,
	}
	t.Hash = plumbing.ComputeHash(plumbing.TagObject, t.encode())
	return t
}

func (t *Tag) encode() []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "object %s\n", t.Target)
	fmt.Fprintf(buf, "type %s\n", t.TargetType)
	fmt.Fprintf(buf, "tag %s\n", t.Name)
	fmt.Fprintf(buf, "tagger %s\n", t.Tagger.String())
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	if !strings.HasSuffix(t.Message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// EncodedObject returns the in-memory encoded form lit's object stores
// persist.
func (t *Tag) EncodedObject() plumbing.EncodedObject {
	return plumbing.NewMemoryObject(plumbing.TagObject, t.encode())
}
