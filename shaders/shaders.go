// Package shaders embeds the WGSL programs of the dual-Kawase blur.
//
// Every program shares one uniform block, vertex layout and bind group
// layout:
//
//	@binding(0) uniform Params (96 bytes)
//	@binding(1) texture_2d<f32> source
//	@binding(2) sampler
//
// and exposes vs_main and fs_main entry points.
package shaders

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/frost/render"
)

// Embedded WGSL shader sources.

//go:embed downsample.wgsl
var downsampleSource string

//go:embed upsample.wgsl
var upsampleSource string

//go:embed noise.wgsl
var noiseSource string

// UniformSize is the byte size of the Params uniform block.
const UniformSize = 96

// Uniform block offsets in bytes.
const (
	OffsetMVP              = 0
	OffsetHalfPixel        = 64
	OffsetOffset           = 72
	OffsetOpacity          = 76
	OffsetNoiseTextureSize = 80
	OffsetTexStartPos      = 88
)

// Source returns the WGSL source of the program kind.
func Source(kind render.ProgramKind) (string, error) {
	switch kind {
	case render.ProgramDownsample:
		return downsampleSource, nil
	case render.ProgramUpsample:
		return upsampleSource, nil
	case render.ProgramNoise:
		return noiseSource, nil
	default:
		return "", fmt.Errorf("shaders: no source for program %v", kind)
	}
}

// Descriptor returns the program descriptor of kind.
func Descriptor(kind render.ProgramKind) (render.ProgramDescriptor, error) {
	src, err := Source(kind)
	if err != nil {
		return render.ProgramDescriptor{}, err
	}
	return render.ProgramDescriptor{
		Label:  "frost_" + kind.String(),
		Kind:   kind,
		Source: src,
	}, nil
}
