package software

import "github.com/gogpu/frost/render"

// shader evaluates one program for a fragment.
type shader struct {
	kind render.ProgramKind
	src  *texture
	u    render.Uniforms
}

// shade returns the premultiplied color at fragment (fx, fy) with texture
// coordinate uv. The opacity of a pass is applied by the blend state.
func (s *shader) shade(fx, fy float32, uv [2]float32) [4]float32 {
	hx, hy := s.u.HalfPixel[0]*s.u.Offset, s.u.HalfPixel[1]*s.u.Offset
	u, v := uv[0], uv[1]

	switch s.kind {
	case render.ProgramDownsample:
		sum := scale(s.src.sample(u, v), 4)
		sum = add(sum, s.src.sample(u-hx, v-hy), 1)
		sum = add(sum, s.src.sample(u+hx, v+hy), 1)
		sum = add(sum, s.src.sample(u+hx, v-hy), 1)
		sum = add(sum, s.src.sample(u-hx, v+hy), 1)
		return scale(sum, 1.0/8)

	case render.ProgramUpsample:
		sum := s.src.sample(u-2*hx, v)
		sum = add(sum, s.src.sample(u-hx, v+hy), 2)
		sum = add(sum, s.src.sample(u, v+2*hy), 1)
		sum = add(sum, s.src.sample(u+hx, v+hy), 2)
		sum = add(sum, s.src.sample(u+2*hx, v), 1)
		sum = add(sum, s.src.sample(u+hx, v-hy), 2)
		sum = add(sum, s.src.sample(u, v-2*hy), 1)
		sum = add(sum, s.src.sample(u-hx, v-hy), 2)
		return scale(sum, 1.0/12)

	case render.ProgramNoise:
		nu := (s.u.TexStartPos[0] + fx) / s.u.NoiseTextureSize[0]
		nv := (s.u.TexStartPos[1] + fy) / s.u.NoiseTextureSize[1]
		n := s.src.sample(nu, nv)[0]
		return [4]float32{n, n, n, 0}
	}
	return [4]float32{}
}

func scale(c [4]float32, f float32) [4]float32 {
	for i := range c {
		c[i] *= f
	}
	return c
}

func add(sum, c [4]float32, w float32) [4]float32 {
	for i := range sum {
		sum[i] += c[i] * w
	}
	return sum
}
