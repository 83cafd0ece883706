package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-dxp-maint/integration"
	"github.com/rony4d/go-dxp-maint/logging"
	"github.com/rony4d/go-dxp-maint/maint"
)

// Config aggregates everything the launcher needs.
type Config struct {
	Node    NodeConfig
	Network string
	Store   StoreConfig
	Engine  maint.Config
	Logging logging.Config
}

type NodeConfig struct {
	DataDir string
}

type StoreConfig struct {
	// Path is resolved against Node.DataDir unless absolute.
	Path    string
	CacheMB int
}

// ArchiveDir returns the resolved archive database directory.
func (c Config) ArchiveDir() string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Node.DataDir, c.Store.Path)
}

// Preset returns the network preset with the configured engine options.
func (c Config) Preset() (integration.PresetConfig, error) {
	p, err := integration.GetPresetByName(c.Network)
	if err != nil {
		return p, err
	}
	integration.ApplyPreset(&p, integration.PresetConfig{
		Rules:   p.Rules,
		CacheMB: c.Store.CacheMB,
		Engine:  c.Engine,
	})
	return p, nil
}

// MakeAllConfigs merges the network preset defaults, the optional config
// file, then CLI flag overrides.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	var (
		tree    *toml.Tree
		network = ctx.String("network")
	)
	if file := ctx.String("config"); file != "" {
		var err error
		if tree, err = toml.LoadFile(file); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
		if name, ok := tree.Get("Network").(string); ok && !ctx.IsSet("network") {
			network = name
		}
	}

	preset, err := integration.GetPresetByName(network)
	if err != nil {
		return Config{}, err
	}
	cfg := defaultConfig(preset)
	if tree != nil {
		if err := tree.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode config file: %w", err)
		}
	}
	cfg.Network = preset.Name

	applyCLIOverrides(ctx, &cfg)

	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	if err := ensureDir(cfg.Node.DataDir); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = ctx.String("datadir")
	}
	if ctx.IsSet("archive") {
		cfg.Store.Path = ctx.String("archive")
	}
	if ctx.IsSet("cache") {
		cfg.Store.CacheMB = ctx.Int("cache")
	}
	if ctx.Bool("trackstandby") {
		cfg.Engine.TrackStandbyVotes = true
	}

	if ctx.IsSet("log.format") {
		cfg.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.String("sentry.dsn")
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
