// Package filesystem persists a repository's objects, refs, index, and
// config under a .lit directory, using github.com/go-git/go-billy/v5 so the
// same code runs against a real filesystem or an in-memory one in tests.
package filesystem

import (
	"io"

	"github.com/go-git/go-billy/v5"

	"github.com/firiho/lit/plumbing"
	"github.com/firiho/lit/plumbing/format/config"
	"github.com/firiho/lit/plumbing/format/index"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// DefaultBranch is the branch HEAD points at in a freshly initialized
// repository, before it has any commits (an "unborn" branch).
const DefaultBranch = "main"

// Storage aggregates every on-disk concern of a .lit directory behind one
// handle, the way a Repository's storage dependency is threaded through the
// rest of lit.
type Storage struct {
	dir *dotlit.Repository

	Objects *ObjectStorage
	Refs    *ReferenceStorage
	Index   *IndexStorage
	Config  *ConfigStorage
}

// NewStorage returns a Storage rooted at fs, which should already be scoped
// to the .lit directory (a bare repository) or to .lit within a worktree.
func NewStorage(fs billy.Filesystem) *Storage {
	dir := dotlit.New(fs)
	objects := NewObjectStorage(dir)
	return &Storage{
		dir:     dir,
		Objects: objects,
		Refs:    NewReferenceStorage(dir, objects),
		Index:   NewIndexStorage(dir),
		Config:  NewConfigStorage(dir),
	}
}

// Init lays out a brand new .lit directory: objects/, refs/heads,
// refs/tags, an empty index, default config, and HEAD attached to the
// unborn default branch.
func Init(fs billy.Filesystem, bare bool) (*Storage, error) {
	s := NewStorage(fs)

	for _, dir := range []string{
		dotlit.ObjectsPath,
		fs.Join(dotlit.RefsPath, "heads"),
		fs.Join(dotlit.RefsPath, "tags"),
		fs.Join(dotlit.RefsPath, "remotes"),
		dotlit.InfoPath,
	} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	if err := s.Refs.SetHead(DefaultBranch); err != nil {
		return nil, err
	}

	if err := s.Index.WriteIndex(&index.Index{Version: index.Version}); err != nil {
		return nil, err
	}

	if err := s.Config.WriteConfig(s.defaultConfig(bare)); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) defaultConfig(bare bool) *config.Config {
	cfg := config.New()
	core := cfg.Section("core")
	core.SetOption("bare", boolString(bare))
	core.SetOption("repositoryformatversion", "0")
	return cfg
}

// Fs returns the raw filesystem rooted at the .lit directory, for callers
// that need to read a file storage itself has no concept of (e.g. a
// history-operation state marker like MERGE_MSG or REBASE_STATE).
func (s *Storage) Fs() billy.Filesystem { return s.dir.Fs() }

// WriteFileAtomic persists content at a path relative to the .lit directory
// without torn writes, for the same marker files Fs reads.
func (s *Storage) WriteFileAtomic(path string, fill func(io.Writer) error) error {
	return s.dir.WriteFileAtomic(path, fill)
}

// HeadHash is a convenience wrapper resolving HEAD to a direct object id,
// returning the zero hash (not an error) for an unborn branch.
func (s *Storage) HeadHash() (plumbing.Hash, error) {
	h, err := s.Refs.Resolve(string(plumbing.HEAD))
	if err != nil {
		if errorsIsNotFound(err) {
			return plumbing.ZeroHash, nil
		}
		return plumbing.ZeroHash, err
	}
	return h, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
