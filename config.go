package lit

import (
	"os"
	"path/filepath"

	"github.com/firiho/lit/errkind"
	"github.com/firiho/lit/plumbing/format/config"
)

// systemConfigPath is where system-wide config lives, matching Git's own
// /etc/gitconfig placement.
const systemConfigPath = "/etc/litconfig"

// globalConfigFileName lives under the user's home directory.
const globalConfigFileName = ".litconfig"

// Config returns the effective, scope-merged configuration: local
// (.lit/config) overrides global (~/.litconfig) overrides system
// (/etc/litconfig), per §4.10.
func (r *Repository) Config() (*config.Merged, error) {
	merged := config.NewMerged()

	local, err := r.Storage.Config.ReadConfig()
	if err != nil {
		return nil, err
	}
	merged.SetLocalConfig(local)

	if home, err := os.UserHomeDir(); err == nil {
		global, err := readConfigFile(filepath.Join(home, globalConfigFileName))
		if err != nil {
			return nil, err
		}
		merged.SetGlobalConfig(global)
	}

	system, err := readConfigFile(systemConfigPath)
	if err != nil {
		return nil, err
	}
	merged.SetSystemConfig(system)

	return merged, nil
}

// SetLocalConfigOption persists a single local-scope key, the only scope
// this package writes to directly (editing ~/.litconfig or /etc/litconfig
// is left to the surrounding shell, same as Git's own "--global"/"--system"
// flags operate outside the repository's own lock).
func (r *Repository) SetLocalConfigOption(section, subsection, key, value string) error {
	cfg, err := r.Storage.Config.ReadConfig()
	if err != nil {
		return err
	}
	cfg.SetOption(section, subsection, key, value)
	return r.Storage.Config.WriteConfig(cfg)
}

func readConfigFile(path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.New(), nil
		}
		return nil, &errkind.IOError{Op: "open " + path, Inner: err}
	}
	defer f.Close()

	cfg := config.New()
	if err := config.NewDecoder(f).Decode(cfg); err != nil {
		return nil, &errkind.CorruptError{Kind: "config", Detail: err.Error()}
	}
	return cfg, nil
}
