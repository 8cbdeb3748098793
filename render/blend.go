// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// BlendFactor is a source or destination blend factor.
type BlendFactor uint8

const (
	// BlendZero multiplies by zero.
	BlendZero BlendFactor = iota

	// BlendOne multiplies by one.
	BlendOne

	// BlendConstantAlpha multiplies by the blend constant.
	BlendConstantAlpha

	// BlendOneMinusConstantAlpha multiplies by one minus the blend constant.
	BlendOneMinusConstantAlpha
)

// Blend is the color blend state of a draw: out = src*Src + dst*Dst.
// A disabled blend replaces the destination.
type Blend struct {
	Enabled  bool
	Src      BlendFactor
	Dst      BlendFactor
	Constant float32
}

// OpacityBlend mixes the source over the destination by a constant alpha.
func OpacityBlend(alpha float32) Blend {
	return Blend{Enabled: true, Src: BlendConstantAlpha, Dst: BlendOneMinusConstantAlpha, Constant: alpha}
}

// AdditiveBlend adds the source to the destination.
func AdditiveBlend() Blend {
	return Blend{Enabled: true, Src: BlendOne, Dst: BlendOne}
}

// ConstantAdditiveBlend adds the source scaled by a constant alpha.
func ConstantAdditiveBlend(alpha float32) Blend {
	return Blend{Enabled: true, Src: BlendConstantAlpha, Dst: BlendOne, Constant: alpha}
}

// Factor returns the multiplier f selects under b.
func (b Blend) Factor(f BlendFactor) float32 {
	switch f {
	case BlendOne:
		return 1
	case BlendConstantAlpha:
		return b.Constant
	case BlendOneMinusConstantAlpha:
		return 1 - b.Constant
	default:
		return 0
	}
}

// Apply blends a source color into a destination color, both with
// components in [0, 1]. The result is clamped to [0, 1].
func (b Blend) Apply(src, dst [4]float32) [4]float32 {
	if !b.Enabled {
		return src
	}
	fs, fd := b.Factor(b.Src), b.Factor(b.Dst)
	var out [4]float32
	for i := range out {
		out[i] = min(max(src[i]*fs+dst[i]*fd, 0), 1)
	}
	return out
}
