package wgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/frost/render"
	"github.com/gogpu/frost/shaders"
)

// packUniforms lays out the Params block shared by every program.
func packUniforms(u render.Uniforms, opacity float32) []byte {
	buf := make([]byte, shaders.UniformSize)
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	for i, v := range u.MVP {
		put(shaders.OffsetMVP+4*i, v)
	}
	put(shaders.OffsetHalfPixel, u.HalfPixel[0])
	put(shaders.OffsetHalfPixel+4, u.HalfPixel[1])
	put(shaders.OffsetOffset, u.Offset)
	put(shaders.OffsetOpacity, opacity)
	put(shaders.OffsetNoiseTextureSize, u.NoiseTextureSize[0])
	put(shaders.OffsetNoiseTextureSize+4, u.NoiseTextureSize[1])
	put(shaders.OffsetTexStartPos, u.TexStartPos[0])
	put(shaders.OffsetTexStartPos+4, u.TexStartPos[1])
	return buf
}

// blendMode is the fixed-function state a render.Blend maps to.
type blendMode uint8

const (
	blendReplace blendMode = iota
	blendPremultiplied
	blendAdditive
)

// blendFor maps b to a pipeline blend mode and the opacity the shader
// multiplies its output by. Constant-alpha factors have no dynamic state in
// the pipeline, so the constant moves into the shader.
func blendFor(b render.Blend) (blendMode, float32) {
	if !b.Enabled {
		return blendReplace, 1
	}
	if b.Dst == render.BlendOne {
		return blendAdditive, b.Factor(b.Src)
	}
	return blendPremultiplied, b.Factor(b.Src)
}
