// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the GPU abstraction the blur stage draws through.
//
// The blur stage never talks to a graphics API directly. It compiles its
// programs, allocates textures and framebuffers, streams vertices and issues
// draws through a Device supplied by the host. Two devices ship with the
// module: backend/software rasterizes on the CPU into *image.RGBA targets and
// backend/wgpu drives a gogpu/wgpu HAL device.
//
// # Key Principle
//
// The blur stage RECEIVES a device from the host compositor, it does NOT
// create one. Render targets, viewports and the window contents all belong to
// the host; the blur stage only owns the offscreen textures it allocates.
//
// # Core Types
//
//   - Device: program compilation, texture and framebuffer allocation,
//     streaming vertex buffer, blits and draws
//   - RenderTarget: where the host is rendering this frame
//   - Viewport: the logical output rectangle and its device scale
//   - DrawCall: one draw with program, source texture, uniforms and blending
//
// # Coordinates
//
// Texture coordinates have their origin at the top-left texel, as in WebGPU.
// Projection matrices map y-down pixel coordinates to normalized device
// coordinates with +y up.
package render
