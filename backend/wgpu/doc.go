// Package wgpu provides a GPU render.Device on gogpu/wgpu HAL.
//
// The device runs the blur programs as WebGPU render pipelines on the host
// compositor's own device and queue:
//
//	host gpucontext.DeviceProvider -> FromProvider -> render.Device
//
// Every Draw and BlitFromTarget is encoded, submitted and waited on before
// returning, so the blur stage keeps its synchronous, in-order model.
//
// # Screen targets
//
// A render target whose TextureView implements SurfaceView is drawn to
// directly. Targets that only expose CPU pixels are mirrored: the pixels are
// uploaded to a texture of the same format, drawn to, and read back.
//
// # Blending
//
// WebGPU blend constants are set per render pass, which the HAL does not
// expose here. The blur programs therefore multiply their output by the
// opacity uniform and use fixed pipelines: replace, premultiplied over, and
// additive.
//
// # Registration
//
// Importing the package registers the "wgpu" backend, which needs
// backend.Options.Provider to expose HalDevice and HalQueue.
package wgpu
