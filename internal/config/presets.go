package config

import (
	"sort"

	"github.com/san-kum/choreo/internal/catalog"
)

// Presets holds one configuration per catalog solution, keyed by slug
// ("moth-i", "yin-yang-iia", ...).
var Presets = buildPresets()

func buildPresets() map[string]*Config {
	presets := make(map[string]*Config, catalog.Len())
	for i, s := range catalog.All() {
		cfg := DefaultConfig()
		cfg.Solution = i
		presets[s.Slug()] = cfg
	}
	return presets
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
