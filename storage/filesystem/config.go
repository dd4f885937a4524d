package filesystem

import (
	"io"
	"os"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing/format/config"
	"github.com/firiho/lit/storage/filesystem/dotlit"
)

// ConfigStorage reads and writes the repository-local .lit/config file.
type ConfigStorage struct {
	dir *dotlit.Repository
}

// NewConfigStorage returns a ConfigStorage rooted at dir.
func NewConfigStorage(dir *dotlit.Repository) *ConfigStorage {
	return &ConfigStorage{dir: dir}
}

// ReadConfig loads the local config, returning an empty one if it does not
// exist yet.
func (s *ConfigStorage) ReadConfig() (*config.Config, error) {
	f, err := s.dir.Fs().Open(dotlit.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config.New(), nil
		}
		return nil, &errkind.IOError{Op: "open config", Inner: err}
	}
	defer f.Close()

	cfg := config.New()
	if err := config.NewDecoder(f).Decode(cfg); err != nil {
		return nil, &errkind.CorruptError{Kind: "config", Detail: err.Error()}
	}
	return cfg, nil
}

// WriteConfig serializes cfg and writes it atomically.
func (s *ConfigStorage) WriteConfig(cfg *config.Config) error {
	return s.dir.WriteFileAtomic(dotlit.ConfigPath, func(w io.Writer) error {
		return config.NewEncoder(w).Encode(cfg)
	})
}
