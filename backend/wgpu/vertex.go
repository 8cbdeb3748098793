package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frost/render"
)

// vertexStride is the byte size of render.Vertex2D.
const vertexStride = 16

// vertexBuffer mirrors mapped vertices on the host and uploads them to a
// growable GPU buffer on Unmap.
type vertexBuffer struct {
	dev      *Device
	capacity int
	verts    []render.Vertex2D
	mapStart int
	mapping  bool

	buf     hal.Buffer
	bufSize uint64
}

func (b *vertexBuffer) Reset() {
	b.verts = b.verts[:0]
	b.mapping = false
}

// Map appends count vertices and returns them for writing.
func (b *vertexBuffer) Map(count int) ([]render.Vertex2D, error) {
	if b.mapping {
		return nil, fmt.Errorf("%w: buffer already mapped", render.ErrVertexBuffer)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: map of %d vertices", render.ErrVertexBuffer, count)
	}
	if b.capacity > 0 && len(b.verts)+count > b.capacity {
		return nil, fmt.Errorf("%w: %d vertices exceed capacity %d", render.ErrVertexBuffer, len(b.verts)+count, b.capacity)
	}
	b.mapStart = len(b.verts)
	b.verts = append(b.verts, make([]render.Vertex2D, count)...)
	b.mapping = true
	return b.verts[b.mapStart:], nil
}

// Unmap uploads the whole host copy, growing the GPU buffer when needed.
func (b *vertexBuffer) Unmap() error {
	if !b.mapping {
		return fmt.Errorf("%w: buffer not mapped", render.ErrVertexBuffer)
	}
	b.mapping = false
	if err := b.ensure(uint64(len(b.verts)) * vertexStride); err != nil {
		return err
	}
	b.dev.queue.WriteBuffer(b.buf, 0, encodeVertices(b.verts))
	return nil
}

func (b *vertexBuffer) ensure(size uint64) error {
	if b.buf != nil && b.bufSize >= size {
		return nil
	}
	grown := max(size, 2*b.bufSize, 64*vertexStride)
	buf, err := b.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "frost_vertices",
		Size:  grown,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", render.ErrVertexBuffer, err)
	}
	b.destroy()
	b.buf, b.bufSize = buf, grown
	return nil
}

func (b *vertexBuffer) destroy() {
	if b.buf != nil {
		b.dev.device.DestroyBuffer(b.buf)
		b.buf, b.bufSize = nil, 0
	}
}

// check validates a draw range against the uploaded vertices.
func (b *vertexBuffer) check(first, count int) error {
	if b.mapping {
		return fmt.Errorf("%w: draw while mapped", render.ErrVertexBuffer)
	}
	if first < 0 || count <= 0 || first+count > len(b.verts) || b.buf == nil {
		return fmt.Errorf("%w: range [%d,%d) outside %d vertices", render.ErrVertexBuffer, first, first+count, len(b.verts))
	}
	return nil
}

func encodeVertices(verts []render.Vertex2D) []byte {
	out := make([]byte, len(verts)*vertexStride)
	for i, v := range verts {
		o := out[i*vertexStride:]
		binary.LittleEndian.PutUint32(o[0:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(o[4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(o[8:], math.Float32bits(v.TexCoord[0]))
		binary.LittleEndian.PutUint32(o[12:], math.Float32bits(v.TexCoord[1]))
	}
	return out
}

func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: vertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}
