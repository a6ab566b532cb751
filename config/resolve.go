package config

import "math"

// Override is a partial configuration supplied by a caller.
// Nil fields are omitted and fall back to the defaults.
type Override struct {
	DPRCap *float64      `yaml:"dpr_cap,omitempty"`
	Drag   *float64      `yaml:"drag,omitempty"`
	Glow   *bool         `yaml:"glow,omitempty"`
	Gust   *GustOverride `yaml:"gust,omitempty"`
	Layers []LayerConfig `yaml:"layers,omitempty"` // Replaces the whole layer list when non-nil
}

// GustOverride merges into GustConfig field by field.
type GustOverride struct {
	Amplitude   *float64 `yaml:"amplitude,omitempty"`
	FrequencyHz *float64 `yaml:"frequency_hz,omitempty"`
}

// Float returns a pointer to v, for building overrides in code.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Resolve merges o onto def and returns a complete, independent Config.
// Top-level scalars are merged shallowly, gust is merged per field and layers
// are replaced wholesale. Omitted or invalid values keep the default.
func Resolve(def Config, o *Override) Config {
	cfg := def.Clone()
	if o == nil {
		cfg.computeDerived()
		return cfg
	}

	if o.DPRCap != nil && finite(*o.DPRCap) && *o.DPRCap > 0 {
		cfg.DPRCap = *o.DPRCap
	}
	if o.Drag != nil && finite(*o.Drag) && *o.Drag > 0 && *o.Drag < 1 {
		cfg.Drag = *o.Drag
	}
	if o.Glow != nil {
		cfg.Glow = *o.Glow
	}
	if o.Gust != nil {
		if v := o.Gust.Amplitude; v != nil && finite(*v) {
			cfg.Gust.Amplitude = *v
		}
		if v := o.Gust.FrequencyHz; v != nil && finite(*v) {
			cfg.Gust.FrequencyHz = *v
		}
	}
	if o.Layers != nil && validLayers(o.Layers) {
		cfg.Layers = append([]LayerConfig(nil), o.Layers...)
	}

	cfg.computeDerived()
	return cfg
}

// validLayers rejects layer lists that would break pool or spawn invariants.
func validLayers(layers []LayerConfig) bool {
	for _, l := range layers {
		if l.Count < 0 {
			return false
		}
		if !validRange(l.Opacity) || !validRange(l.SizePx) {
			return false
		}
		if l.SizePx.Min() < 0 || l.SizePx.Max() <= 0 {
			return false
		}
		if !finite(l.Gravity) || !finite(l.Wind) || !finite(l.WindTurbulence) {
			return false
		}
	}
	return true
}

func validRange(r Range) bool {
	return finite(r[0]) && finite(r[1]) && r[0] <= r[1]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Merge returns a new override with top's set fields layered over o.
// Either side may be nil.
func (o *Override) Merge(top *Override) *Override {
	out := &Override{}
	for _, src := range []*Override{o, top} {
		if src == nil {
			continue
		}
		if src.DPRCap != nil {
			out.DPRCap = src.DPRCap
		}
		if src.Drag != nil {
			out.Drag = src.Drag
		}
		if src.Glow != nil {
			out.Glow = src.Glow
		}
		if src.Gust != nil {
			if out.Gust == nil {
				out.Gust = &GustOverride{}
			}
			if src.Gust.Amplitude != nil {
				out.Gust.Amplitude = src.Gust.Amplitude
			}
			if src.Gust.FrequencyHz != nil {
				out.Gust.FrequencyHz = src.Gust.FrequencyHz
			}
		}
		if src.Layers != nil {
			out.Layers = append([]LayerConfig(nil), src.Layers...)
		}
	}
	return out
}
