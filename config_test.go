package frost

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/frost/corner"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frost.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file gave %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
blur_strength: 3
noise_strength: 0
roundness: 8
corners_type: squircle
squircle_ratio: 6
inner_outline:
  enabled: false
  color: "#ff8000"
disabled_for_maximized: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}

	def := DefaultConfig()
	if cfg.BlurStrength != 3 || cfg.NoiseStrength != 0 || cfg.Roundness != 8 {
		t.Errorf("scalars = %d %d %d, want 3 0 8", cfg.BlurStrength, cfg.NoiseStrength, cfg.Roundness)
	}
	if cfg.Kind() != corner.Squircle || cfg.SquircleRatio != 6 {
		t.Errorf("shape = %s ratio %d, want squircle ratio 6", cfg.Kind(), cfg.SquircleRatio)
	}
	if cfg.InnerOutline.Enabled || cfg.InnerOutline.Color != "#ff8000" {
		t.Errorf("inner outline = %+v", cfg.InnerOutline)
	}
	// Keys absent from the file keep their defaults.
	if cfg.InnerOutline.Width != def.InnerOutline.Width || cfg.OuterOutline != def.OuterOutline {
		t.Errorf("defaults lost: inner %+v outer %+v", cfg.InnerOutline, cfg.OuterOutline)
	}
	if cfg.ShadowOffset != def.ShadowOffset {
		t.Errorf("ShadowOffset = %d, want %d", cfg.ShadowOffset, def.ShadowOffset)
	}
	if !cfg.DisabledForMaximized {
		t.Error("DisabledForMaximized = false")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, "blur_strength: [1, 2\n")
	cfg, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() succeeded on malformed YAML")
	}
	if cfg != DefaultConfig() {
		t.Error("malformed file did not fall back to defaults")
	}
}

func TestLoadConfigUnreadable(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(directory) = %v, want read error", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(c *Config)
		check func(t *testing.T, c Config)
	}{
		{
			name: "strength clamped low",
			edit: func(c *Config) { c.BlurStrength = 0 },
			check: func(t *testing.T, c Config) {
				if c.BlurStrength != 1 {
					t.Errorf("BlurStrength = %d, want 1", c.BlurStrength)
				}
			},
		},
		{
			name: "strength clamped high",
			edit: func(c *Config) { c.BlurStrength = 16 },
			check: func(t *testing.T, c Config) {
				if c.BlurStrength != 15 {
					t.Errorf("BlurStrength = %d, want 15", c.BlurStrength)
				}
			},
		},
		{
			name: "negative noise",
			edit: func(c *Config) { c.NoiseStrength = -4 },
			check: func(t *testing.T, c Config) {
				if c.NoiseStrength != 0 {
					t.Errorf("NoiseStrength = %d, want 0", c.NoiseStrength)
				}
			},
		},
		{
			name: "shadow offset reaching the radius",
			edit: func(c *Config) { c.Roundness, c.ShadowOffset = 5, 5 },
			check: func(t *testing.T, c Config) {
				if c.ShadowOffset != 4 {
					t.Errorf("ShadowOffset = %d, want 4", c.ShadowOffset)
				}
			},
		},
		{
			name: "shadow offset below a squircle radius",
			edit: func(c *Config) {
				c.CornersType, c.Roundness, c.SquircleRatio, c.ShadowOffset = "squircle", 5, 12, 10
			},
			check: func(t *testing.T, c Config) {
				if c.ShadowOffset != 10 {
					t.Errorf("ShadowOffset = %d, want 10", c.ShadowOffset)
				}
			},
		},
		{
			name: "unknown corner type",
			edit: func(c *Config) { c.CornersType = "bevel" },
			check: func(t *testing.T, c Config) {
				if c.CornersType != "rounded" {
					t.Errorf("CornersType = %q, want rounded", c.CornersType)
				}
			},
		},
		{
			name: "bad outline",
			edit: func(c *Config) { c.OuterOutline.Color, c.OuterOutline.Alpha, c.OuterOutline.Width = "black", 300, -1 },
			check: func(t *testing.T, c Config) {
				want := Outline{Enabled: true, Width: 0, Color: "#000000", Alpha: 255}
				if c.OuterOutline != want {
					t.Errorf("OuterOutline = %+v, want %+v", c.OuterOutline, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.edit(&c)
			c.Normalize()
			tt.check(t, c)
		})
	}
}

func TestOutlineRGBA(t *testing.T) {
	got, err := Outline{Color: "#ff8000", Alpha: 51}.RGBA()
	if err != nil {
		t.Fatal(err)
	}
	want := [4]float32{1, 128.0 / 255, 0, 0.2}
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("RGBA() = %v, want %v", got, want)
			break
		}
	}

	if _, err := (Outline{Color: "orange"}).RGBA(); err == nil {
		t.Error("RGBA() accepted a named color")
	}
}

func TestConfigShape(t *testing.T) {
	c := DefaultConfig()
	s := c.Shape()
	if s.Radius != 15 || s.ShadowOffset != 2 || s.Kind != corner.Rounded || s.Exponent != 12 {
		t.Errorf("Shape() = %+v", s)
	}
}
