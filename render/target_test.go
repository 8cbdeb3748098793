// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNewPixmapTarget(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"small", 100, 100},
		{"medium", 800, 600},
		{"wide", 1000, 100},
		{"tall", 100, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := NewPixmapTarget(tt.width, tt.height)

			if target.Width() != tt.width {
				t.Errorf("Width() = %d, want %d", target.Width(), tt.width)
			}
			if target.Height() != tt.height {
				t.Errorf("Height() = %d, want %d", target.Height(), tt.height)
			}
			if target.Format() != gputypes.TextureFormatRGBA8Unorm {
				t.Errorf("Format() = %v, want RGBA8Unorm", target.Format())
			}
			if target.TextureView() != nil {
				t.Error("TextureView() should be nil for CPU target")
			}
			if target.Pixels() == nil {
				t.Error("Pixels() should not be nil for CPU target")
			}
			if target.Stride() != tt.width*4 {
				t.Errorf("Stride() = %d, want %d", target.Stride(), tt.width*4)
			}
		})
	}
}

func TestPixmapTargetFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	img.SetRGBA(50, 50, color.RGBA{255, 0, 0, 255})

	target := NewPixmapTargetFromImage(img)

	if target.Width() != 200 || target.Height() != 150 {
		t.Errorf("size = %dx%d, want 200x150", target.Width(), target.Height())
	}
	if got := target.GetPixel(50, 50); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("GetPixel(50, 50) = %v, want red", got)
	}
}

func TestPixmapTargetFill(t *testing.T) {
	target := NewPixmapTarget(10, 10)
	target.Clear(color.RGBA{0, 0, 255, 255})
	target.Fill(image.Rect(5, 5, 20, 20), color.RGBA{255, 0, 0, 255})

	if got := target.GetPixel(2, 2); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("GetPixel(2, 2) = %v, want blue", got)
	}
	if got := target.GetPixel(9, 9); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("GetPixel(9, 9) = %v, want red", got)
	}
}

func TestPixmapTargetImage(t *testing.T) {
	target := NewPixmapTarget(100, 100)
	target.Clear(color.White)

	img := target.Image()
	img.SetRGBA(10, 10, color.RGBA{255, 0, 0, 255})
	if target.GetPixel(10, 10).G != 0 {
		t.Error("Image and target should share memory")
	}
}

func TestSurfaceTarget(t *testing.T) {
	target := NewSurfaceTarget(800, 600, gputypes.TextureFormatBGRA8Unorm, nil)

	if target.Width() != 800 || target.Height() != 600 {
		t.Errorf("size = %dx%d, want 800x600", target.Width(), target.Height())
	}
	if target.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want BGRA8Unorm", target.Format())
	}
	if target.Pixels() != nil || target.Stride() != 0 {
		t.Error("surface target must not expose CPU pixels")
	}
}
