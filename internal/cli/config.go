package cli

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	aemerrors "github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

// configFile is the config location relative to the XDG config home.
var configFile = filepath.Join(appName, "config.toml")

// loadConfig reads scan defaults from path. An empty path searches the XDG
// config directories; finding nothing there is not an error. Unknown keys
// are rejected.
func loadConfig(path string) (pipeline.Options, error) {
	var opts pipeline.Options
	if path == "" {
		found, err := xdg.SearchConfigFile(configFile)
		if err != nil {
			return opts, nil
		}
		path = found
	}

	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opts, aemerrors.Wrap(aemerrors.ErrCodeInvalidConfig, err, "config file %s not found", path)
		}
		return opts, aemerrors.Wrap(aemerrors.ErrCodeInvalidConfig, err, "cannot parse config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return opts, aemerrors.New(aemerrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if opts.Workers < 0 || opts.Workers > pipeline.MaxWorkers {
		return opts, aemerrors.New(aemerrors.ErrCodeInvalidConfig, "workers must be between 1 and %d in %s", pipeline.MaxWorkers, path)
	}
	return opts, nil
}
