// Package integration bundles the per-network settings the replay tool runs
// with and assembles the maintenance engine from them.
//
// Usage:
//
//	preset, err := integration.GetPresetByName("fake")
//	engine, err := integration.NewEngine(preset, nil, log)
package integration

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-dxp-maint/maint"
	"github.com/rony4d/go-dxp-maint/params"
)

// PresetConfig is everything that differs between networks.
type PresetConfig struct {
	Name    string
	Rules   params.Rules
	CacheMB int // archive block cache
	Engine  maint.Config
}

// DefaultPreset returns the mainnet settings.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:    "main",
		Rules:   params.MainNetRules(),
		CacheMB: 256,
		Engine:  maint.DefaultConfig(),
	}
}

// TestNetPreset tracks standby votes so operators can see who would be elected
// next.
func TestNetPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "test"
	cfg.Rules = params.TestNetRules()
	cfg.CacheMB = 64
	cfg.Engine.TrackStandbyVotes = true
	return cfg
}

// FakeNetPreset runs hourly maintenance with every upgrade active.
func FakeNetPreset() PresetConfig {
	cfg := TestNetPreset()
	cfg.Name = "fake"
	cfg.Rules = params.FakeNetRules()
	cfg.CacheMB = 16
	return cfg
}

// GetPresetByName looks up a preset by network name.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "main", "":
		return DefaultPreset(), nil
	case "test":
		return TestNetPreset(), nil
	case "fake":
		return FakeNetPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown network: %q (valid: main, test, fake)", name)
	}
}

// ApplyPreset overrides target with the non-zero settings of preset. Rules
// are always replaced.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.Name != "" {
		target.Name = preset.Name
	}
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
	target.Rules = preset.Rules
	target.Engine = preset.Engine
}

// NewEngine creates the maintenance engine of a preset.
func NewEngine(p PresetConfig, market maint.Market, log logrus.FieldLogger) (*maint.Engine, error) {
	e, err := maint.New(p.Rules, p.Engine, market, log)
	if err != nil {
		return nil, fmt.Errorf("%s rules: %w", p.Name, err)
	}
	return e, nil
}
