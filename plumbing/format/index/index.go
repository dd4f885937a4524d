// Package index implements Git's binary DIRC index format: the staging
// area binding repository-relative paths to blob object ids, plus the
// stage discriminator used to represent merge conflicts.
package index

import (
	"time"

	"github.com/firiho/lit/plumbing"
)

// Version is the only DIRC version lit reads and writes; no other index
// encoding (such as a JSON form) is implemented.
const Version = 2

// Stage discriminates a clean entry from one side of an unresolved conflict.
// Exactly one stage-0 entry per path means resolved; more than one
// nonzero-stage entry for the same path means conflicted.
type Stage uint8

const (
	Stage0 Stage = 0 // resolved / clean
	Stage1 Stage = 1 // common ancestor ("base")
	Stage2 Stage = 2 // ours
	Stage3 Stage = 3 // theirs
)

// Index is the in-memory form of the .lit/index file.
type Index struct {
	Version uint32
	Entries []*Entry
}

// Entry is a single staged file at a single stage.
type Entry struct {
	CreatedAt  time.Time
	ModifiedAt time.Time
	Dev        uint32
	Inode      uint32
	Mode       uint32 // Git's 32-bit tree-entry-style mode, e.g. 0100644
	UID        uint32
	GID        uint32
	Size       uint32
	Hash       plumbing.Hash
	Stage      Stage
	Name       string // repository-relative, forward-slash separated
}

// Entry returns the stage-0 entry for path, if present.
func (idx *Index) Entry(path string) (*Entry, bool) {
	for _, e := range idx.Entries {
		if e.Name == path && e.Stage == Stage0 {
			return e, true
		}
	}
	return nil, false
}

// EntriesByPath returns every entry (any stage) for path, in stage order.
func (idx *Index) EntriesByPath(path string) []*Entry {
	var out []*Entry
	for _, e := range idx.Entries {
		if e.Name == path {
			out = append(out, e)
		}
	}
	return out
}

// ConflictEntries returns the base/ours/theirs entries for path. A nil
// element means that stage is absent.
func (idx *Index) ConflictEntries(path string) (base, ours, theirs *Entry) {
	for _, e := range idx.EntriesByPath(path) {
		switch e.Stage {
		case Stage1:
			base = e
		case Stage2:
			ours = e
		case Stage3:
			theirs = e
		}
	}
	return
}

// IsConflicted reports whether path has any nonzero-stage entry.
func (idx *Index) IsConflicted(path string) bool {
	for _, e := range idx.Entries {
		if e.Name == path && e.Stage != Stage0 {
			return true
		}
	}
	return false
}

// ConflictedPaths returns the distinct set of paths with unresolved stages,
// in sorted order.
func (idx *Index) ConflictedPaths() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range idx.Entries {
		if e.Stage != Stage0 && !seen[e.Name] {
			seen[e.Name] = true
			out = append(out, e.Name)
		}
	}
	sortStrings(out)
	return out
}

// Remove deletes every entry (all stages) for path.
func (idx *Index) Remove(path string) {
	out := idx.Entries[:0]
	for _, e := range idx.Entries {
		if e.Name != path {
			out = append(out, e)
		}
	}
	idx.Entries = out
}

// RemoveStage deletes the specific (path, stage) entry, if present.
func (idx *Index) RemoveStage(path string, stage Stage) {
	out := idx.Entries[:0]
	for _, e := range idx.Entries {
		if !(e.Name == path && e.Stage == stage) {
			out = append(out, e)
		}
	}
	idx.Entries = out
}

// Upsert replaces the (Name, Stage) entry matching e, or appends it, then
// keeps the index sorted by (Name, Stage).
func (idx *Index) Upsert(e *Entry) {
	for i, cur := range idx.Entries {
		if cur.Name == e.Name && cur.Stage == e.Stage {
			idx.Entries[i] = e
			idx.sort()
			return
		}
	}
	idx.Entries = append(idx.Entries, e)
	idx.sort()
}

func (idx *Index) sort() {
	sortEntries(idx.Entries)
}
