package filesystem

import (
	"os"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing/format/index"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// IndexStorage reads and writes the .lit/index staging area.
type IndexStorage struct {
	dir *dotlit.Repository
}

// NewIndexStorage returns an IndexStorage rooted at dir.
func NewIndexStorage(dir *dotlit.Repository) *IndexStorage {
	return &IndexStorage{dir: dir}
}

// ReadIndex loads the current index, returning an empty one if the index
// file does not exist yet (a freshly initialized repository).
func (s *IndexStorage) ReadIndex() (*index.Index, error) {
	f, err := s.dir.Fs().Open(dotlit.IndexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &index.Index{Version: index.Version}, nil
		}
		return nil, &errkind.IOError{Op: "open index", Inner: err}
	}
	defer f.Close()

	idx := &index.Index{}
	if err := index.NewDecoder(f).Decode(idx); err != nil {
		return nil, &errkind.CorruptError{Kind: "index", Detail: err.Error()}
	}
	return idx, nil
}

// WriteIndex serializes idx and writes it atomically, taking index.lock for
// the duration so concurrent writers don't interleave.
func (s *IndexStorage) WriteIndex(idx *index.Index) error {
	lock := dotlit.NewLock(s.dir.Fs(), dotlit.IndexPath)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	if idx.Version == 0 {
		idx.Version = index.Version
	}
	if err := index.NewEncoder(lock.File()).Encode(idx); err != nil {
		return &errkind.IOError{Op: "encode index", Inner: err}
	}
	return lock.CommitAndRelease(dotlit.IndexPath)
}
