// Package object decodes the four stored object variants (blob, tree,
// commit, tag) out of plumbing.EncodedObject payloads, and implements the
// commit-graph operations built on top of them: log traversal and
// merge-base computation.
package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature identifies who made a commit or tag and when, matching Git's
// "Name <email> seconds timezone" encoding.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Decode parses a signature line's value, e.g.
// "Jane Doe <jane@example.com> 1700000000 +0200".
func (s *Signature) Decode(b []byte) {
	open := bytes.LastIndexByte(b, '<')
	close := bytes.LastIndexByte(b, '>')
	if open < 0 || close < 0 || close < open {
		s.Name = string(bytes.TrimSpace(b))
		return
	}

	s.Name = string(bytes.TrimSpace(b[:open]))
	s.Email = string(b[open+1 : close])

	rest := strings.TrimSpace(string(b[close+1:]))
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return
	}

	sec, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return
	}

	loc := time.UTC
	if len(fields) > 1 {
		if l, err := parseTZOffset(fields[1]); err == nil {
			loc = l
		}
	}
	s.When = time.Unix(sec, 0).In(loc)
}

func parseTZOffset(tz string) (*time.Location, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil, fmt.Errorf("malformed timezone offset %q", tz)
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, err
	}
	mins, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, err
	}
	offset := hours*3600 + mins*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), nil
}

// Encode writes the signature back into Git's on-disk textual form.
func (s *Signature) Encode() []byte {
	_, offset := s.When.Zone()
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / 3600
	mins := (offset % 3600) / 60

	return []byte(fmt.Sprintf("%s <%s> %d %c%02d%02d",
		s.Name, s.Email, s.When.Unix(), sign, hours, mins))
}

// String returns the signature in its on-disk textual form.
func (s Signature) String() string { return string((&s).Encode()) }
