// Package config provides configuration loading and resolution for the snowfall simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the resolved parameters of one simulation instance.
// A resolved Config is treated as immutable; use Clone before handing it out.
type Config struct {
	DPRCap float64       `yaml:"dpr_cap"` // Upper bound on host pixel density
	Drag   float64       `yaml:"drag"`    // Per-frame velocity damping in (0,1)
	Glow   bool          `yaml:"glow"`
	Gust   GustConfig    `yaml:"gust"`
	Layers []LayerConfig `yaml:"layers"` // Far to near

	// Derived values computed after resolving
	Derived DerivedConfig `yaml:"-"`
}

// GustConfig holds the global oscillating wind parameters.
type GustConfig struct {
	Amplitude   float64 `yaml:"amplitude"`
	FrequencyHz float64 `yaml:"frequency_hz"`
}

// LayerConfig defines one parallax depth band of flakes.
type LayerConfig struct {
	Count          int     `yaml:"count"`
	Gravity        float64 `yaml:"gravity"` // Downward acceleration (units/s²)
	Opacity        Range   `yaml:"opacity"`
	SizePx         Range   `yaml:"size_px"` // Radius range
	Wind           float64 `yaml:"wind"`
	WindTurbulence float64 `yaml:"wind_turbulence"`
}

// Range is a closed [min, max] interval.
type Range [2]float64

// Min returns the lower bound.
func (r Range) Min() float64 { return r[0] }

// Max returns the upper bound.
func (r Range) Max() float64 { return r[1] }

// Contains reports whether v lies in the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r[0] && v <= r[1]
}

// DerivedConfig holds computed values derived from the resolved config.
type DerivedConfig struct {
	TotalFlakes int   // Sum of layer counts
	LayerStart  []int // First pool slot of each layer
}

var defaults = mustParseDefaults()

func mustParseDefaults() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: parsing embedded defaults: %v", err))
	}
	cfg.computeDerived()
	return cfg
}

// Defaults returns a copy of the embedded default configuration.
func Defaults() Config {
	return defaults.Clone()
}

// Load reads a YAML override file and resolves it against the embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	o, err := LoadOverride(path)
	if err != nil {
		return Config{}, err
	}
	return Resolve(defaults, o), nil
}

// LoadOverride reads a YAML file into an Override. Only keys present in the
// file are set.
func LoadOverride(path string) (*Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	o, err := ParseOverride(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return o, nil
}

// ParseOverride decodes YAML bytes into an Override.
func ParseOverride(data []byte) (*Override, error) {
	o := &Override{}
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Clone returns a deep copy so callers cannot mutate shared layer slices.
func (c Config) Clone() Config {
	out := c
	out.Layers = append([]LayerConfig(nil), c.Layers...)
	out.Derived.LayerStart = append([]int(nil), c.Derived.LayerStart...)
	return out
}

// computeDerived calculates values derived from the layer list.
func (c *Config) computeDerived() {
	c.Derived.LayerStart = make([]int, len(c.Layers))
	total := 0
	for i, l := range c.Layers {
		c.Derived.LayerStart[i] = total
		total += l.Count
	}
	c.Derived.TotalFlakes = total
}

// WriteYAML writes the configuration to a YAML file.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
