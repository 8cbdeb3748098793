package software

import (
	"fmt"

	"github.com/gogpu/frost/render"
)

// vertexBuffer is a growable host-side vertex store.
type vertexBuffer struct {
	capacity int
	verts    []render.Vertex2D
	mapping  bool
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
	start := len(b.verts)
	b.verts = append(b.verts, make([]render.Vertex2D, count)...)
	b.mapping = true
	return b.verts[start:], nil
}

func (b *vertexBuffer) Unmap() error {
	if !b.mapping {
		return fmt.Errorf("%w: buffer not mapped", render.ErrVertexBuffer)
	}
	b.mapping = false
	return nil
}

func (b *vertexBuffer) slice(first, count int) ([]render.Vertex2D, error) {
	if b.mapping {
		return nil, fmt.Errorf("%w: draw while mapped", render.ErrVertexBuffer)
	}
	if first < 0 || count < 0 || first+count > len(b.verts) {
		return nil, fmt.Errorf("%w: range [%d,%d) outside %d vertices", render.ErrVertexBuffer, first, first+count, len(b.verts))
	}
	return b.verts[first : first+count], nil
}
