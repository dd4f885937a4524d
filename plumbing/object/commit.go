package object

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/firiho/lit/plumbing"
)

// Commit records a tree snapshot, its parent commits, who made it, and why.
type Commit struct {
	Hash      plumbing.Hash
	Tree      plumbing.Hash
	Parents   []plumbing.Hash
	Author    Signature
	Committer Signature
	Message   string
}

// IsMerge reports whether c has more than one parent.
func (c *Commit) IsMerge() bool { return len(c.Parents) > 1 }

// NumParents returns the number of parent commits.
func (c *Commit) NumParents() int { return len(c.Parents) }

// DecodeCommit parses a commit object's textual payload.
func DecodeCommit(o plumbing.EncodedObject) (*Commit, error) {
	if o.Type() != plumbing.CommitObject {
		return nil, plumbing.ErrInvalidType
	}
	content, err := o.Reader()
	if err != nil {
		return nil, err
	}

	c := &Commit{Hash: o.Hash()}
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
			return nil, fmt.Errorf("object: malformed commit header line %q", line)
		}
		key, value := string(line[:sp]), line[sp+1:]

		switch key {
		case "tree":
			h, ok := plumbing.FromHex(string(value))
			if !ok {
				return nil, fmt.Errorf("object: malformed commit tree id")
			}
			c.Tree = h
		case "parent":
			h, ok := plumbing.FromHex(string(value))
			if !ok {
				return nil, fmt.Errorf("object: malformed commit parent id")
			}
			c.Parents = append(c.Parents, h)
		case "author":
			c.Author.Decode(value)
		case "committer":
			c.Committer.Decode(value)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	c.Message = strings.TrimSuffix(msg.String(), "\n")
	return c, nil
}

// NewCommit builds and hashes a Commit, ready to be stored.
func NewCommit(tree plumbing.Hash, parents []plumbing.Hash, author, committer Signature, message string) *Commit {
	c := &Commit{
		Tree:      tree,
		Parents:   parents,
		Author:    author,
		Committer: committer,
		Message:   message,
	}
	c.Hash = plumbing.ComputeHash(plumbing.CommitObject, c.encode())
	return c
}

func (c *Commit) encode() []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(buf, "parent %s\n", p)
	}
	fmt.Fprintf(buf, "author %s\n", c.Author.String())
	fmt.Fprintf(buf, "committer %s\n", c.Committer.String())
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	if !strings.HasSuffix(c.Message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// EncodedObject returns the in-memory encoded form lit's object stores
// persist.
func (c *Commit) EncodedObject() plumbing.EncodedObject {
	return plumbing.NewMemoryObject(plumbing.CommitObject, c.encode())
}
