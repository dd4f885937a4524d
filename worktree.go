package lit

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/firiho/lit/diff"
	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/ignore"
	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/filemode"
	"github.com/firiho/lit/plumbing/format/index"
	"github.com/firiho/lit/plumbing/object"
)

// Worktree reconciles the on-disk files of a non-bare repository with its
// index and tree objects: staging, checkout, and dirty detection (§4.4).
type Worktree struct {
	repo *Repository
	fs   billy.Filesystem
}

func newWorktree(repo *Repository, fs billy.Filesystem) *Worktree {
	return &Worktree{repo: repo, fs: fs}
}

// Filesystem returns the billy.Filesystem rooted at the worktree, for
// callers that need to resolve a user-given path against it.
func (w *Worktree) Filesystem() billy.Filesystem { return w.fs }

// StatusCode classifies one side (staging or worktree) of a path's status.
type StatusCode int8

const (
	Unmodified StatusCode = iota
	Untracked
	Added
	Modified
	Deleted
)

// FileStatus reports how a path differs between HEAD and the index
// (Staging) and between the index and the working tree (Worktree), the
// same two-column model "git status --short" renders.
type FileStatus struct {
	Staging  StatusCode
	Worktree StatusCode
}

// Status is the full per-path status report, keyed by repository-relative
// path.
type Status map[string]*FileStatus

// IsClean reports whether every path is Unmodified on both sides.
func (s Status) IsClean() bool {
	for _, fs := range s {
		if fs.Staging != Unmodified || fs.Worktree != Unmodified {
			return false
		}
	}
	return true
}

// Status computes the full working-tree and staging status, consulting
// ignore patterns for paths not already tracked by the index.
func (w *Worktree) Status() (Status, error) {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return nil, err
	}

	headEntries, err := w.headEntries()
	if err != nil {
		return nil, err
	}

	matcher, err := w.ignoreMatcher()
	if err != nil {
		return nil, err
	}

	onDisk, err := w.collectAllPaths(matcher)
	if err != nil {
		return nil, err
	}

	indexByPath := map[string]*index.Entry{}
	for _, e := range idx.Entries {
		if e.Stage == index.Stage0 {
			indexByPath[e.Name] = e
		}
	}

	paths := map[string]struct{}{}
	for p := range headEntries {
		paths[p] = struct{}{}
	}
	for p := range indexByPath {
		paths[p] = struct{}{}
	}
	for p := range onDisk {
		paths[p] = struct{}{}
	}

	out := Status{}
	for path := range paths {
		head, inHead := headEntries[path]
		staged, inIndex := indexByPath[path]
		_, onDiskOK := onDisk[path]

		fs := &FileStatus{}
		switch {
		case inIndex && !inHead:
			fs.Staging = Added
		case !inIndex && inHead:
			fs.Staging = Deleted
		case inIndex && inHead && (staged.Hash != head.Hash || filemode.FileMode(staged.Mode) != head.Mode):
			fs.Staging = Modified
		default:
			fs.Staging = Unmodified
		}

		switch {
		case inIndex && !onDiskOK:
			fs.Worktree = Deleted
		case !inIndex && onDiskOK:
			fs.Worktree = Untracked
		case inIndex && onDiskOK:
			dirty, err := w.pathDirtyAgainst(path, staged)
			if err != nil {
				return nil, err
			}
			if dirty {
				fs.Worktree = Modified
			}
		}

		if fs.Staging != Unmodified || fs.Worktree != Unmodified {
			out[path] = fs
		}
	}
	return out, nil
}

func (w *Worktree) headEntries() (map[string]object.TreeEntry, error) {
	headHash, err := w.repo.Storage.HeadHash()
	if err != nil {
		return nil, err
	}
	if headHash.IsZero() {
		return map[string]object.TreeEntry{}, nil
	}
	c, err := w.repo.Storage.Objects.CommitObject(headHash)
	if err != nil {
		return nil, err
	}
	t, err := w.repo.Storage.Objects.TreeObject(c.Tree)
	if err != nil {
		return nil, err
	}
	return flattenTreeEntries(w.repo.Storage.Objects, "", t)
}

func flattenTreeEntries(g diff.TreeGetter, prefix string, t *object.Tree) (map[string]object.TreeEntry, error) {
	out := map[string]object.TreeEntry{}
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
			subMap, err := flattenTreeEntries(g, path, sub)
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

func (w *Worktree) ignoreMatcher() (*ignore.Matcher, error) {
	return ignore.Load(w.fs, w.repo.Storage.Fs())
}

// collectAllPaths walks the worktree, skipping the dot directory and any
// ignored path, and returns every regular file and symlink found.
func (w *Worktree) collectAllPaths(matcher *ignore.Matcher) (map[string]os.FileInfo, error) {
	out := map[string]os.FileInfo{}
	var walk func(dir string) error
	walk = func(dir string) error {
		fis, err := w.fs.ReadDir(dir)
		if err != nil {
			return &errkind.IOError{Op: "scan " + dir, Inner: err}
		}
		for _, fi := range fis {
			if dir == "" && fi.Name() == DotDir {
				continue
			}
			path := fi.Name()
			if dir != "" {
				path = dir + "/" + fi.Name()
			}
			if fi.IsDir() {
				if matcher.Match(path, true) {
					continue
				}
				if err := walk(path); err != nil {
					return err
				}
				continue
			}
			if matcher.Match(path, false) {
				continue
			}
			out[path] = fi
		}
		return nil
	}
	if err := walk(""); err != nil {
		return nil, err
	}
	return out, nil
}

// pathDirtyAgainst reports whether path's on-disk content differs from the
// index entry e, per §4.4: a stat match (size) short-circuits without a
// rehash, otherwise the file is read and hashed.
func (w *Worktree) pathDirtyAgainst(path string, e *index.Entry) (bool, error) {
	fi, err := w.fs.Stat(path)
	if err != nil {
		return true, nil
	}
	if fi.Mode()&os.ModeSymlink == 0 && uint32(fi.Size()) == e.Size {
		return false, nil
	}

	content, err := w.readWorktreeFile(path)
	if err != nil {
		return false, err
	}
	return plumbing.ComputeHash(plumbing.BlobObject, content) != e.Hash, nil
}

// Add stages path: reads it from the working tree, writes a blob, and
// upserts a stage-0 index entry, resolving any conflict stages it had.
func (w *Worktree) Add(path string) error {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return err
	}
	if err := w.stagePath(idx, path); err != nil {
		return err
	}
	return w.repo.Storage.Index.WriteIndex(idx)
}

func (w *Worktree) stagePath(idx *index.Index, path string) error {
	fi, err := w.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			idx.Remove(path)
			return nil
		}
		return &errkind.IOError{Op: "stat " + path, Inner: err}
	}

	content, err := w.readWorktreeFile(path)
	if err != nil {
		return err
	}
	mode, err := filemode.NewFromOSFileMode(fi.Mode())
	if err != nil {
		return err
	}

	blob := object.NewBlob(content)
	if _, err := w.repo.Storage.Objects.SetEncodedObject(blob.EncodedObject()); err != nil {
		return err
	}

	idx.RemoveStage(path, index.Stage1)
	idx.RemoveStage(path, index.Stage2)
	idx.RemoveStage(path, index.Stage3)
	idx.Upsert(&index.Entry{
		Name:       path,
		Mode:       uint32(mode),
		Hash:       blob.Hash,
		Size:       uint32(len(content)),
		ModifiedAt: fi.ModTime(),
		Stage:      index.Stage0,
	})
	return nil
}

// AddAll stages every non-ignored worktree path, including removing index
// entries for tracked files that were deleted on disk.
func (w *Worktree) AddAll() error {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return err
	}

	matcher, err := w.ignoreMatcher()
	if err != nil {
		return err
	}
	onDisk, err := w.collectAllPaths(matcher)
	if err != nil {
		return err
	}

	tracked := map[string]bool{}
	for _, e := range idx.Entries {
		if e.Stage == index.Stage0 {
			tracked[e.Name] = true
		}
	}
	for path := range tracked {
		if _, ok := onDisk[path]; !ok {
			idx.Remove(path)
		}
	}

	paths := make([]string, 0, len(onDisk))
	for path := range onDisk {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := w.stagePath(idx, path); err != nil {
			return err
		}
	}
	return w.repo.Storage.Index.WriteIndex(idx)
}

// Unstage reverts path's index entry to HEAD's version, or removes it if
// HEAD has no such path.
func (w *Worktree) Unstage(path string) error {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return err
	}

	headEntries, err := w.headEntries()
	if err != nil {
		return err
	}

	idx.RemoveStage(path, index.Stage1)
	idx.RemoveStage(path, index.Stage2)
	idx.RemoveStage(path, index.Stage3)

	if e, ok := headEntries[path]; ok {
		idx.Upsert(&index.Entry{Name: path, Mode: uint32(e.Mode), Hash: e.Hash, Stage: index.Stage0})
	} else {
		idx.Remove(path)
	}
	return w.repo.Storage.Index.WriteIndex(idx)
}

// Remove deletes path's index entry, and its working-tree file too unless
// keepWorktreeFile is set (the "--cached" shape of "git rm").
func (w *Worktree) Remove(path string, keepWorktreeFile bool) error {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return err
	}
	idx.Remove(path)
	if err := w.repo.Storage.Index.WriteIndex(idx); err != nil {
		return err
	}
	if keepWorktreeFile {
		return nil
	}
	if err := w.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return &errkind.IOError{Op: "remove " + path, Inner: err}
	}
	return nil
}

// ConflictEntries returns the base/ours/theirs index stages for path.
func (w *Worktree) ConflictEntries(path string) (base, ours, theirs *index.Entry, err error) {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return nil, nil, nil, err
	}
	b, o, t := idx.ConflictEntries(path)
	return b, o, t, nil
}

// WriteTree builds and persists tree objects bottom-up from the index's
// stage-0 entries, returning the root tree's hash. It fails if the index
// has any unresolved conflict.
func (w *Worktree) WriteTree() (plumbing.Hash, error) {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if len(idx.ConflictedPaths()) > 0 {
		return plumbing.ZeroHash, &errkind.ConflictError{Paths: idx.ConflictedPaths()}
	}

	entries := map[string]object.TreeEntry{}
	for _, e := range idx.Entries {
		if e.Stage != index.Stage0 {
			continue
		}
		entries[e.Name] = object.TreeEntry{Mode: filemode.FileMode(e.Mode), Hash: e.Hash}
	}
	return w.buildAndStoreTree(entries)
}

// writeWorktreeTree snapshots the current on-disk content of every
// stage-0 tracked path into a fresh tree, independent of what is staged:
// the shape stash push needs to capture unstaged modifications too.
func (w *Worktree) writeWorktreeTree() (plumbing.Hash, error) {
	idx, err := w.repo.Storage.Index.ReadIndex()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	entries := map[string]object.TreeEntry{}
	for _, e := range idx.Entries {
		if e.Stage != index.Stage0 {
			continue
		}
		content, err := w.readWorktreeFile(e.Name)
		if err != nil {
			if isNotFound(err) {
				continue // deleted on disk: absent from the snapshot
			}
			return plumbing.ZeroHash, err
		}
		blob := object.NewBlob(content)
		if _, err := w.repo.Storage.Objects.SetEncodedObject(blob.EncodedObject()); err != nil {
			return plumbing.ZeroHash, err
		}
		entries[e.Name] = object.TreeEntry{Mode: filemode.FileMode(e.Mode), Hash: blob.Hash}
	}
	return w.buildAndStoreTree(entries)
}

type treeNode struct {
	entry    *object.TreeEntry
	children map[string]*treeNode
}

func insertTreeNode(root *treeNode, parts []string, e object.TreeEntry) {
	if len(parts) == 1 {
		child := root.children[parts[0]]
		if child == nil {
			child = &treeNode{}
			root.children[parts[0]] = child
		}
		child.entry = &e
		return
	}
	child := root.children[parts[0]]
	if child == nil {
		child = &treeNode{children: map[string]*treeNode{}}
		root.children[parts[0]] = child
	}
	insertTreeNode(child, parts[1:], e)
}

func (w *Worktree) storeTreeNode(n *treeNode) (*object.Tree, error) {
	var entries []object.TreeEntry
	for name, child := range n.children {
		if child.entry != nil {
			e := *child.entry
			e.Name = name
			entries = append(entries, e)
			continue
		}
		sub, err := w.storeTreeNode(child)
		if err != nil {
			return nil, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: sub.Hash})
	}
	t := object.NewTree(entries)
	if _, err := w.repo.Storage.Objects.SetEncodedObject(t.EncodedObject()); err != nil {
		return nil, err
	}
	return t, nil
}

func (w *Worktree) buildAndStoreTree(paths map[string]object.TreeEntry) (plumbing.Hash, error) {
	root := &treeNode{children: map[string]*treeNode{}}
	for path, e := range paths {
		insertTreeNode(root, strings.Split(path, "/"), e)
	}
	t, err := w.storeTreeNode(root)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return t.Hash, nil
}

// ReadTree replaces the index with the flattened, stage-0 contents of
// tree.
func (w *Worktree) ReadTree(treeHash plumbing.Hash) error {
	t, err := w.repo.Storage.Objects.TreeObject(treeHash)
	if err != nil {
		return err
	}
	flat, err := flattenTreeEntries(w.repo.Storage.Objects, "", t)
	if err != nil {
		return err
	}

	idx := &index.Index{Version: index.Version}
	for path, e := range flat {
		idx.Upsert(&index.Entry{Name: path, Mode: uint32(e.Mode), Hash: e.Hash, Stage: index.Stage0})
	}
	return w.repo.Storage.Index.WriteIndex(idx)
}

// CheckoutTree materializes the delta from fromTree to targetTree onto the
// working tree, per §4.4. fromTree may be nil (checking out into an empty
// worktree, e.g. right after init or clone). Every path that would
// overwrite an uncommitted modification is collected and reported together
// as a single DirtyError before any file is touched.
func (w *Worktree) CheckoutTree(fromTree, targetTree *object.Tree) error {
	if fromTree == nil {
		fromTree = &object.Tree{}
	}

	changes, err := diff.DiffTree(w.repo.Storage.Objects, fromTree, targetTree)
	if err != nil {
		return err
	}

	var dirty []string
	for _, c := range changes {
		if c.Action == diff.Added {
			continue
		}
		ok, err := w.matchesTreeEntry(c.Path, *c.From)
		if err != nil {
			return err
		}
		if !ok {
			dirty = append(dirty, c.Path)
		}
	}
	if len(dirty) > 0 {
		sort.Strings(dirty)
		return &errkind.DirtyError{Paths: dirty}
	}

	for _, c := range changes {
		switch c.Action {
		case diff.Deleted:
			if err := w.fs.Remove(c.Path); err != nil && !os.IsNotExist(err) {
				return &errkind.IOError{Op: "remove " + c.Path, Inner: err}
			}
		default:
			if err := w.materialize(c.Path, *c.To); err != nil {
				return err
			}
		}
	}
	return w.ReadTree(targetTree.Hash)
}

// matchesTreeEntry reports whether path's current on-disk content matches
// e (a missing file never matches), the basis used to decide whether
// overwriting it would be safe.
func (w *Worktree) matchesTreeEntry(path string, e object.TreeEntry) (bool, error) {
	content, err := w.readWorktreeFile(path)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return plumbing.ComputeHash(plumbing.BlobObject, content) == e.Hash, nil
}

func (w *Worktree) materialize(path string, e object.TreeEntry) error {
	blob, err := w.repo.Storage.Objects.BlobObject(e.Hash)
	if err != nil {
		return err
	}
	return w.writeWorktreeFile(path, blob.Contents(), e.Mode)
}

// checkoutCommit checks out target's tree against HEAD's current tree.
func (w *Worktree) checkoutCommit(target *object.Commit) error {
	targetTree, err := w.repo.Storage.Objects.TreeObject(target.Tree)
	if err != nil {
		return err
	}

	var fromTree *object.Tree
	if head, err := w.repo.HeadCommit(); err == nil {
		fromTree, err = w.repo.Storage.Objects.TreeObject(head.Tree)
		if err != nil {
			return err
		}
	}
	return w.CheckoutTree(fromTree, targetTree)
}

// forceCheckoutTree rewrites every path of targetTree unconditionally and
// removes the paths of headHash's tree that targetTree lacks, the
// working-tree half of reset --hard. Untracked files, and files staged but
// in neither tree, are left alone.
func (w *Worktree) forceCheckoutTree(targetTreeHash plumbing.Hash, headHash plumbing.Hash) error {
	targetTree, err := w.repo.Storage.Objects.TreeObject(targetTreeHash)
	if err != nil {
		return err
	}

	var fromTree object.Tree
	if !headHash.IsZero() {
		head, err := w.repo.Storage.Objects.CommitObject(headHash)
		if err != nil {
			return err
		}
		ft, err := w.repo.Storage.Objects.TreeObject(head.Tree)
		if err != nil {
			return err
		}
		fromTree = *ft
	}

	changes, err := diff.DiffTree(w.repo.Storage.Objects, &fromTree, targetTree)
	if err != nil {
		return err
	}

	for _, c := range changes {
		if c.Action != diff.Deleted {
			continue
		}
		if err := w.fs.Remove(c.Path); err != nil && !os.IsNotExist(err) {
			return &errkind.IOError{Op: "remove " + c.Path, Inner: err}
		}
	}

	flat, err := flattenTreeEntries(w.repo.Storage.Objects, "", targetTree)
	if err != nil {
		return err
	}
	for path, e := range flat {
		if err := w.materialize(path, e); err != nil {
			return err
		}
	}
	return w.ReadTree(targetTreeHash)
}

func (w *Worktree) readWorktreeFile(path string) ([]byte, error) {
	fi, err := w.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errkind.NotFoundError{Kind: "path", Name: path}
		}
		return nil, &errkind.IOError{Op: "stat " + path, Inner: err}
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := w.fs.Readlink(path)
		if err != nil {
			return nil, &errkind.IOError{Op: "readlink " + path, Inner: err}
		}
		return []byte(target), nil
	}

	f, err := w.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errkind.NotFoundError{Kind: "path", Name: path}
		}
		return nil, &errkind.IOError{Op: "open " + path, Inner: err}
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, &errkind.IOError{Op: "read " + path, Inner: err}
	}
	return content, nil
}

func (w *Worktree) writeWorktreeFile(path string, content []byte, mode filemode.FileMode) error {
	dir := w.fs.Join(path, "..")
	if dir != "" && dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return &errkind.IOError{Op: "mkdir " + dir, Inner: err}
		}
	}

	if mode == filemode.Symlink {
		_ = w.fs.Remove(path)
		if err := w.fs.Symlink(string(content), path); err != nil {
			return &errkind.IOError{Op: "symlink " + path, Inner: err}
		}
		return nil
	}

	osMode, err := mode.ToOSFileMode()
	if err != nil {
		osMode = 0o644
	}
	f, err := w.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, osMode)
	if err != nil {
		return &errkind.IOError{Op: "create " + path, Inner: err}
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return &errkind.IOError{Op: "write " + path, Inner: err}
	}
	return f.Close()
}
