package region

import (
	"encoding/binary"
	"image"
	"math"
)

// cardinalQuad is the byte length of one x, y, width, height record.
const cardinalQuad = 4 * 4

// ParseCardinals decodes a blur-behind window property: a sequence of
// native-endian 32-bit x, y, width, height quadruples in X11 device pixels.
//
// A nil value means the property is absent and ok is false. Any other value,
// including a malformed one whose length is not a multiple of 16 bytes, is a
// present property; malformed or empty data yields the empty region, which
// callers treat as "the whole window". Coordinates are divided by scale to
// convert from X11 native pixels to logical pixels; scale <= 0 means 1.
func ParseCardinals(value []byte, scale float64) (r Region, ok bool) {
	if value == nil {
		return Region{}, false
	}
	if len(value) == 0 || len(value)%cardinalQuad != 0 {
		return Region{}, true
	}
	if scale <= 0 {
		scale = 1
	}
	for i := 0; i+cardinalQuad <= len(value); i += cardinalQuad {
		x := float64(int32(binary.NativeEndian.Uint32(value[i:])))      //nolint:gosec // X11 CARD32 reinterpreted as coordinate
		y := float64(int32(binary.NativeEndian.Uint32(value[i+4:])))    //nolint:gosec // X11 CARD32 reinterpreted as coordinate
		w := float64(binary.NativeEndian.Uint32(value[i+8:]))
		h := float64(binary.NativeEndian.Uint32(value[i+12:]))
		// Origin and size round independently, so the far edge may differ
		// by a pixel from rounding (x+w)/scale.
		rx, ry := int(math.Round(x/scale)), int(math.Round(y/scale))
		r = r.UnionRect(image.Rect(
			rx,
			ry,
			rx+int(math.Round(w/scale)),
			ry+int(math.Round(h/scale)),
		))
	}
	return r, true
}

// EncodeCardinals is the inverse of ParseCardinals at scale 1. It is used by
// clients and tests that need to publish a blur-behind property.
func EncodeCardinals(r Region) []byte {
	out := make([]byte, 0, r.Len()*cardinalQuad)
	for _, rc := range r.rects {
		out = binary.NativeEndian.AppendUint32(out, uint32(int32(rc.Min.X))) //nolint:gosec // coordinates fit in CARD32
		out = binary.NativeEndian.AppendUint32(out, uint32(int32(rc.Min.Y))) //nolint:gosec // coordinates fit in CARD32
		out = binary.NativeEndian.AppendUint32(out, uint32(rc.Dx()))         //nolint:gosec // non-negative extent
		out = binary.NativeEndian.AppendUint32(out, uint32(rc.Dy()))         //nolint:gosec // non-negative extent
	}
	return out
}
