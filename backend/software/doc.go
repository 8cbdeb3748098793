// Package software implements render.Device on the CPU.
//
// The device keeps textures as premultiplied RGBA in float32, rasterizes
// triangle lists with the top-left fill rule and evaluates the blur programs
// with bilinear sampling, so its output is a reference for what a GPU backend
// produces. Render targets must expose their pixels (render.PixmapTarget).
//
// Programs are still compiled from their WGSL source with gogpu/naga so a
// broken shader fails on this device exactly as it would on a GPU.
package software
