package frost

import (
	"errors"
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/frost/corner"
	"github.com/gogpu/frost/strength"
)

// Config holds the settings shared by Effect and Corners.
type Config struct {
	// BlurStrength selects a step of the strength table, 1 to 15.
	BlurStrength int `yaml:"blur_strength"`

	// NoiseStrength is the amplitude of the dithering noise. Zero disables it.
	NoiseStrength int `yaml:"noise_strength"`

	// Roundness is the corner radius in logical pixels.
	Roundness int `yaml:"roundness"`

	// ShadowOffset is the gap between the frame and the rounded outline.
	ShadowOffset int `yaml:"shadow_offset"`

	// CornersType is "rounded" or "squircle".
	CornersType string `yaml:"corners_type"`

	// SquircleRatio is the superellipse exponent of squircle corners.
	SquircleRatio int `yaml:"squircle_ratio"`

	InnerOutline Outline `yaml:"inner_outline"`
	OuterOutline Outline `yaml:"outer_outline"`

	// DisabledForMaximized turns rounding off for maximized windows.
	DisabledForMaximized bool `yaml:"disabled_for_maximized"`
}

// Outline is one of the two outlines drawn along rounded corners.
type Outline struct {
	Enabled bool    `yaml:"enabled"`
	Width   float64 `yaml:"width"`
	Color   string  `yaml:"color"` // #rrggbb
	Alpha   int     `yaml:"alpha"` // 0-255
}

// RGBA returns the outline color with straight alpha, each component in
// [0, 1].
func (o Outline) RGBA() ([4]float32, error) {
	c, err := colorful.Hex(o.Color)
	if err != nil {
		return [4]float32{}, fmt.Errorf("frost: outline color %q: %w", o.Color, err)
	}
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(o.Alpha) / 255}, nil
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		BlurStrength:  10,
		NoiseStrength: 5,
		Roundness:     15,
		ShadowOffset:  2,
		CornersType:   corner.Rounded.String(),
		SquircleRatio: 12,
		InnerOutline:  Outline{Enabled: true, Width: 1, Color: "#ffffff", Alpha: 24},
		OuterOutline:  Outline{Enabled: true, Width: 1, Color: "#000000", Alpha: 38},
	}
}

// LoadConfig reads a YAML configuration file. Keys missing from the file
// keep their defaults; a missing file yields DefaultConfig. The result is
// normalized.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Kind returns the parsed corner shape. Unknown names are rounded.
func (c Config) Kind() corner.Kind {
	k, err := corner.ParseKind(c.CornersType)
	if err != nil {
		return corner.Rounded
	}
	return k
}

// EffectiveRoundness is the mask radius: Roundness, widened for squircles.
func (c Config) EffectiveRoundness() int {
	return corner.EffectiveRadius(c.Roundness, c.Kind(), c.SquircleRatio)
}

// Normalize clamps every field into its valid range so lookups never fail
// later. A shadow offset that reaches the effective radius is pulled back
// to radius-1, and invalid colors fall back to the defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()

	c.BlurStrength = min(max(c.BlurStrength, 1), strength.DefaultSteps)
	c.NoiseStrength = min(max(c.NoiseStrength, 0), 255)
	c.Roundness = max(c.Roundness, 1)
	c.SquircleRatio = max(c.SquircleRatio, 1)
	c.CornersType = c.Kind().String()

	c.ShadowOffset = max(c.ShadowOffset, 0)
	if r := c.EffectiveRoundness(); c.ShadowOffset >= r {
		c.ShadowOffset = max(r-1, 0)
	}

	c.InnerOutline.normalize(def.InnerOutline)
	c.OuterOutline.normalize(def.OuterOutline)
}

func (o *Outline) normalize(def Outline) {
	o.Width = max(o.Width, 0)
	o.Alpha = min(max(o.Alpha, 0), 255)
	if _, err := colorful.Hex(o.Color); err != nil {
		o.Color = def.Color
	}
}

// Shape returns the corner mask parameters for c.
func (c Config) Shape() corner.Shape {
	return corner.Shape{
		Radius:       c.EffectiveRoundness(),
		ShadowOffset: c.ShadowOffset,
		Kind:         c.Kind(),
		Exponent:     c.SquircleRatio,
	}
}
