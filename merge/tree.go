package merge

import (
	"sort"

	"github.com/firiho/lit/diff"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/filemode"
	"github.com/firiho/lit/plumbing/object"
)

// ObjectGetter resolves the tree and blob objects a three-way tree merge
// needs to read in order to descend into subtrees and text-merge file
// content.
type ObjectGetter interface {
	TreeObject(plumbing.Hash) (*object.Tree, error)
	BlobObject(plumbing.Hash) (*object.Blob, error)
}

// Outcome reports whether a path merged cleanly or needs a conflict
// recorded against it.
type Outcome int8

const (
	Clean Outcome = iota
	Conflict
)

// ConflictKind distinguishes the three conflict shapes the tree-merge table
// produces.
type ConflictKind int8

const (
	NoConflict ConflictKind = iota
	ContentConflict
	AddAddConflict
	ModifyDeleteConflict
)

// PathMerge is the merge result for a single path.
type PathMerge struct {
	Path     string
	Outcome  Outcome
	Kind     ConflictKind
	Deleted  bool
	Mode     filemode.FileMode
	Hash     plumbing.Hash
	Base     *object.TreeEntry
	Ours     *object.TreeEntry
	Theirs   *object.TreeEntry
	// Merged holds the diff3-marked text for an unresolved ContentConflict
	// on a text blob; empty for clean results, binary conflicts, and
	// auto-resolved conflicts (whose Hash/Mode already carry the result).
	Merged string
}

// MergeTrees walks base, ours and theirs and classifies every path present
// in at least one of them per the standard three-way decision table: taken
// from the side that changed, or, when both sides changed a file
// differently, merged line by line with overlapping edits auto-resolved by
// strategy (Manual leaves them as a content conflict). Add/add,
// modify/delete and file/directory conflicts are reported under every
// strategy; a binary content conflict is reported under Manual and Union.
func MergeTrees(g ObjectGetter, base, ours, theirs *object.Tree, strategy Strategy, preferOurs bool) ([]PathMerge, error) {
	baseMap, err := flattenTree(g, "", base)
	if err != nil {
		return nil, err
	}
	oursMap, err := flattenTree(g, "", ours)
	if err != nil {
		return nil, err
	}
	theirsMap, err := flattenTree(g, "", theirs)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]struct{}, len(baseMap)+len(oursMap)+len(theirsMap))
	for p := range baseMap {
		paths[p] = struct{}{}
	}
	for p := range oursMap {
		paths[p] = struct{}{}
	}
	for p := range theirsMap {
		paths[p] = struct{}{}
	}

	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	results := make([]PathMerge, 0, len(sorted))
	for _, path := range sorted {
		b, bOK := baseMap[path]
		o, oOK := oursMap[path]
		t, tOK := theirsMap[path]

		var bp, op, tp *object.TreeEntry
		if bOK {
			bp = &b
		}
		if oOK {
			op = &o
		}
		if tOK {
			tp = &t
		}

		pm, err := mergePath(g, path, bp, op, tp, strategy, preferOurs)
		if err != nil {
			return nil, err
		}
		results = append(results, pm)
	}
	return results, nil
}

func flattenTree(g ObjectGetter, prefix string, t *object.Tree) (map[string]object.TreeEntry, error) {
	out := map[string]object.TreeEntry{}
	if t == nil {
		return out, nil
	}
	for _, e := range t.Entries {
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		if e.Mode.IsDir() {
			sub, err := g.TreeObject(e.Hash)
			if err != nil {
				return nil, err
			}
			subMap, err := flattenTree(g, path, sub)
			if err != nil {
				return nil, err
			}
			for k, v := range subMap {
				out[k] = v
			}
			continue
		}
		out[path] = e
	}
	return out, nil
}

func equalEntry(a, b *object.TreeEntry) bool {
	return a.Hash == b.Hash && a.Mode == b.Mode
}

func clean(path string, e *object.TreeEntry, base, ours, theirs *object.TreeEntry) PathMerge {
	if e == nil {
		return PathMerge{Path: path, Outcome: Clean, Deleted: true, Base: base, Ours: ours, Theirs: theirs}
	}
	return PathMerge{Path: path, Outcome: Clean, Mode: e.Mode, Hash: e.Hash, Base: base, Ours: ours, Theirs: theirs}
}

func mergePath(g ObjectGetter, path string, base, ours, theirs *object.TreeEntry, strategy Strategy, preferOurs bool) (PathMerge, error) {
	switch {
	case base == nil && ours == nil && theirs != nil:
		return clean(path, theirs, base, ours, theirs), nil
	case base == nil && ours != nil && theirs == nil:
		return clean(path, ours, base, ours, theirs), nil
	case base == nil && ours != nil && theirs != nil:
		if equalEntry(ours, theirs) {
			return clean(path, ours, base, ours, theirs), nil
		}
		return PathMerge{Path: path, Outcome: Conflict, Kind: AddAddConflict, Base: base, Ours: ours, Theirs: theirs}, nil
	case base != nil && ours == nil && theirs == nil:
		return clean(path, nil, base, ours, theirs), nil
	case base != nil && ours == nil && theirs != nil:
		if equalEntry(base, theirs) {
			return clean(path, nil, base, ours, theirs), nil
		}
		return PathMerge{Path: path, Outcome: Conflict, Kind: ModifyDeleteConflict, Base: base, Ours: ours, Theirs: theirs}, nil
	case base != nil && ours != nil && theirs == nil:
		if equalEntry(base, ours) {
			return clean(path, nil, base, ours, theirs), nil
		}
		return PathMerge{Path: path, Outcome: Conflict, Kind: ModifyDeleteConflict, Base: base, Ours: ours, Theirs: theirs}, nil
	default:
		return mergeBothPresent(g, path, base, ours, theirs, strategy, preferOurs)
	}
}

func mergeBothPresent(g ObjectGetter, path string, base, ours, theirs *object.TreeEntry, strategy Strategy, preferOurs bool) (PathMerge, error) {
	if equalEntry(ours, base) {
		return clean(path, theirs, base, ours, theirs), nil
	}
	if equalEntry(theirs, base) {
		return clean(path, ours, base, ours, theirs), nil
	}
	if equalEntry(ours, theirs) {
		return clean(path, ours, base, ours, theirs), nil
	}

	if ours.Mode.IsDir() || theirs.Mode.IsDir() || base.Mode.IsDir() {
		return PathMerge{Path: path, Outcome: Conflict, Kind: ContentConflict, Base: base, Ours: ours, Theirs: theirs}, nil
	}

	baseBlob, err := g.BlobObject(base.Hash)
	if err != nil {
		return PathMerge{}, err
	}
	oursBlob, err := g.BlobObject(ours.Hash)
	if err != nil {
		return PathMerge{}, err
	}
	theirsBlob, err := g.BlobObject(theirs.Hash)
	if err != nil {
		return PathMerge{}, err
	}

	if isBinary(baseBlob) || isBinary(oursBlob) || isBinary(theirsBlob) {
		return resolveBinaryConflict(path, base, ours, theirs, strategy, preferOurs), nil
	}

	merged, conflicted, err := TextMerge(
		string(baseBlob.Contents()), string(oursBlob.Contents()), string(theirsBlob.Contents()),
		strategy, preferOurs)
	if err != nil {
		return PathMerge{}, err
	}

	mode := resolvedMode(ours.Mode, theirs.Mode, strategy, preferOurs)
	if !conflicted {
		blob := object.NewBlob([]byte(merged))
		return PathMerge{Path: path, Outcome: Clean, Mode: mode, Hash: blob.Hash, Base: base, Ours: ours, Theirs: theirs}, nil
	}

	return PathMerge{
		Path: path, Outcome: Conflict, Kind: ContentConflict,
		Base: base, Ours: ours, Theirs: theirs, Merged: merged, Mode: mode,
	}, nil
}

func resolvedMode(ours, theirs filemode.FileMode, strategy Strategy, preferOurs bool) filemode.FileMode {
	switch strategy {
	case Theirs:
		return theirs
	case Recent:
		if !preferOurs {
			return theirs
		}
	}
	return ours
}

func isBinary(b *object.Blob) bool {
	return diff.DetectBinary(b.Contents())
}

func resolveBinaryConflict(path string, base, ours, theirs *object.TreeEntry, strategy Strategy, preferOurs bool) PathMerge {
	switch strategy {
	case Ours:
		return clean(path, ours, base, ours, theirs)
	case Theirs:
		return clean(path, theirs, base, ours, theirs)
	case Recent:
		if preferOurs {
			return clean(path, ours, base, ours, theirs)
		}
		return clean(path, theirs, base, ours, theirs)
	default:
		return PathMerge{Path: path, Outcome: Conflict, Kind: ContentConflict, Base: base, Ours: ours, Theirs: theirs}
	}
}
