package launcher

import (
	"path/filepath"

	"github.com/rony4d/go-dxp-maint/integration"
	"github.com/rony4d/go-dxp-maint/logging"
)

const (
	// DefaultDataDirName is created in the home directory.
	DefaultDataDirName = ".dxp-maint"
	// DefaultArchivePath is relative to the data directory.
	DefaultArchivePath = "archive"
)

// defaultConfig returns the configuration of a network preset before any
// file or flag is applied.
func defaultConfig(preset integration.PresetConfig) Config {
	return Config{
		Node: NodeConfig{
			DataDir: filepath.Join(GuessHomeDir(), DefaultDataDirName),
		},
		Network: preset.Name,
		Store: StoreConfig{
			Path:    DefaultArchivePath,
			CacheMB: preset.CacheMB,
		},
		Engine:  preset.Engine,
		Logging: logging.DefaultConfig(),
	}
}
