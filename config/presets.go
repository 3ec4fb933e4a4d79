package config

import (
	"fmt"
	"os"

	"github.com/linht/adrv-manager/adrv903x"
	"gopkg.in/yaml.v3"
)

// SlicerSpec is the file form of adrv903x.SlicerConfig. IntGpios may list
// fewer than four pins; the rest are unused.
type SlicerSpec struct {
	IntStepSize adrv903x.SlicerStepSize `yaml:"int_step_size" json:"int_step_size"`
	ExtStepSize adrv903x.SlicerStepSize `yaml:"ext_step_size,omitempty" json:"ext_step_size,omitempty"`
	IntGpios    []adrv903x.GpioPin      `yaml:"int_gpios,omitempty" json:"int_gpios,omitempty"`
	ExtGpio     adrv903x.GpioPin        `yaml:"ext_gpio,omitempty" json:"ext_gpio,omitempty"`
}

// FormatSpec is one data format entry of a preset file.
type FormatSpec struct {
	Channels      []adrv903x.Channel                 `yaml:"channels" json:"channels"`
	Mode          adrv903x.DataFormatMode            `yaml:"mode" json:"mode"`
	Integer       *adrv903x.IntegerConfig            `yaml:"integer,omitempty" json:"integer,omitempty"`
	Slicer        *SlicerSpec                        `yaml:"slicer,omitempty" json:"slicer,omitempty"`
	FloatingPoint *adrv903x.FloatingPointConfig      `yaml:"floating_point,omitempty" json:"floating_point,omitempty"`
	EmbOverload   *adrv903x.EmbOverloadMonitorConfig `yaml:"emb_ovld,omitempty" json:"emb_ovld,omitempty"`
}

// Preset is a named list of data format entries applied in order.
type Preset struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Formats     []FormatSpec `yaml:"formats" json:"formats"`
}

// ToConfig converts the entry into a core data format request.
func (f FormatSpec) ToConfig() (adrv903x.RxDataFormatConfig, error) {
	cfg := adrv903x.RxDataFormatConfig{ChannelMask: adrv903x.MaskOf(f.Channels...)}
	if len(f.Channels) == 0 {
		return cfg, fmt.Errorf("format %s lists no channels", f.Mode)
	}

	var ic adrv903x.IntegerConfig
	if f.Integer != nil {
		ic = *f.Integer
	}
	sc, err := f.slicer()
	if err != nil {
		return cfg, err
	}

	switch f.Mode {
	case adrv903x.GainCompDisabled:
		cfg.Format = adrv903x.GainCompDisabledFormat{}
	case adrv903x.FloatingPoint:
		if f.FloatingPoint == nil {
			return cfg, fmt.Errorf("format %s needs a floating_point section", f.Mode)
		}
		cfg.Format = adrv903x.FloatingPointFormat{Config: *f.FloatingPoint}
	case adrv903x.InternalSlicerNoGpio, adrv903x.InternalSlicer2Pin,
		adrv903x.InternalSlicer3Pin, adrv903x.InternalSlicer4Pin:
		cfg.Format = adrv903x.InternalSlicerFormat{SlicerMode: f.Mode, Integer: ic, Slicer: sc}
	case adrv903x.ExternalSlicer:
		cfg.Format = adrv903x.ExternalSlicerFormat{Integer: ic, Slicer: sc}
	case adrv903x.EmbeddedOverloadMonitor:
		if f.EmbOverload == nil {
			return cfg, fmt.Errorf("format %s needs an emb_ovld section", f.Mode)
		}
		cfg.Format = adrv903x.EmbOverloadFormat{Integer: ic, Monitor: *f.EmbOverload}
	default:
		return cfg, fmt.Errorf("unknown mode %d", uint8(f.Mode))
	}
	return cfg, nil
}

func (f FormatSpec) slicer() (adrv903x.SlicerConfig, error) {
	var sc adrv903x.SlicerConfig
	if f.Slicer == nil {
		return sc, nil
	}
	if len(f.Slicer.IntGpios) > adrv903x.NumSlicerBits {
		return sc, fmt.Errorf("slicer lists %d gpios, at most %d", len(f.Slicer.IntGpios), adrv903x.NumSlicerBits)
	}
	sc.IntStepSize = f.Slicer.IntStepSize
	sc.ExtStepSize = f.Slicer.ExtStepSize
	copy(sc.IntGpioSelect[:], f.Slicer.IntGpios)
	sc.ExtGpioSelect = f.Slicer.ExtGpio
	return sc, nil
}

// FormatSpecFrom describes a configuration read back from the device.
func FormatSpecFrom(cfg adrv903x.RxDataFormatConfig) FormatSpec {
	spec := FormatSpec{Channels: cfg.ChannelMask.Channels()}
	if cfg.Format == nil {
		return spec
	}
	spec.Mode = cfg.Format.Mode()
	switch f := cfg.Format.(type) {
	case adrv903x.FloatingPointFormat:
		fp := f.Config
		spec.FloatingPoint = &fp
	case adrv903x.InternalSlicerFormat:
		ic := f.Integer
		spec.Integer = &ic
		spec.Slicer = slicerSpecFrom(f.Slicer)
	case adrv903x.ExternalSlicerFormat:
		ic := f.Integer
		spec.Integer = &ic
		spec.Slicer = slicerSpecFrom(f.Slicer)
	case adrv903x.EmbOverloadFormat:
		ic, mc := f.Integer, f.Monitor
		spec.Integer = &ic
		spec.EmbOverload = &mc
	}
	return spec
}

func slicerSpecFrom(sc adrv903x.SlicerConfig) *SlicerSpec {
	s := &SlicerSpec{IntStepSize: sc.IntStepSize, ExtStepSize: sc.ExtStepSize, ExtGpio: sc.ExtGpioSelect}
	for _, pin := range sc.IntGpioSelect {
		if !pin.Valid() {
			break
		}
		s.IntGpios = append(s.IntGpios, pin)
	}
	return s
}

// Configs converts every entry of the preset.
func (p *Preset) Configs() ([]adrv903x.RxDataFormatConfig, error) {
	out := make([]adrv903x.RxDataFormatConfig, 0, len(p.Formats))
	for i, f := range p.Formats {
		cfg, err := f.ToConfig()
		if err != nil {
			return nil, fmt.Errorf("preset %s entry %d: %w", p.Name, i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// LoadPresets reads a preset file holding a list of presets.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets %s: %w", path, err)
	}
	var presets []Preset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}
	return presets, nil
}

// SavePresets writes presets to path, replacing the file.
func SavePresets(path string, presets []Preset) error {
	data, err := yaml.Marshal(presets)
	if err != nil {
		return fmt.Errorf("failed to serialize presets: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write presets %s: %w", path, err)
	}
	return nil
}

// FindPreset returns the preset called name.
func FindPreset(presets []Preset, name string) (*Preset, bool) {
	for i := range presets {
		if presets[i].Name == name {
			return &presets[i], true
		}
	}
	return nil, false
}
