package config

import (
	"fmt"
	"sort"
	"strings"
)

// presets are named overrides selectable from the command line.
var presets = map[string]func() *Override{
	"default": func() *Override { return &Override{} },
	// Denser, heavier snowfall with slightly less damping.
	"blizzard": func() *Override {
		return &Override{
			Glow: Bool(true),
			Drag: Float(0.97),
			Layers: []LayerConfig{
				{Count: 220, Gravity: 24, Opacity: Range{0.5, 0.8}, SizePx: Range{1.0, 2.5}, Wind: 10, WindTurbulence: 16},
				{Count: 150, Gravity: 40, Opacity: Range{0.6, 0.9}, SizePx: Range{2.2, 4.5}, Wind: 14, WindTurbulence: 22},
				{Count: 80, Gravity: 65, Opacity: Range{0.7, 1.0}, SizePx: Range{4.0, 8.0}, Wind: 18, WindTurbulence: 30},
			},
		}
	},
	// Sparse flakes, no glow, calm air.
	"flurry": func() *Override {
		return &Override{
			Glow: Bool(false),
			Gust: &GustOverride{Amplitude: Float(4)},
			Layers: []LayerConfig{
				{Count: 60, Gravity: 20, Opacity: Range{0.3, 0.6}, SizePx: Range{1.0, 2.0}, Wind: 4, WindTurbulence: 8},
				{Count: 30, Gravity: 34, Opacity: Range{0.5, 0.8}, SizePx: Range{2.0, 3.5}, Wind: 6, WindTurbulence: 12},
			},
		}
	},
}

// Preset returns a fresh copy of the named override.
func Preset(name string) (*Override, bool) {
	fn, ok := presets[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadPreset returns the named preset with the override file at path, if
// any, layered on top.
func LoadPreset(name, path string) (*Override, error) {
	preset, ok := Preset(name)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(PresetNames(), ", "))
	}
	if path == "" {
		return preset, nil
	}
	file, err := LoadOverride(path)
	if err != nil {
		return nil, err
	}
	return preset.Merge(file), nil
}
