// Package backend selects the render.Device the blur stage draws with.
//
// Device implementations live in sub-packages and register a factory from
// their init functions:
//
//	import _ "github.com/gogpu/frost/backend/software"
//	import _ "github.com/gogpu/frost/backend/wgpu"
//
// # Backend Selection
//
// Use Default to get the best available device for the given options, or
// Get to request one by name:
//
//	dev, err := backend.Default(backend.Options{Provider: provider})
//
//	// Or force the CPU reference device
//	dev, err := backend.Get(backend.BackendSoftware, backend.Options{})
//
// # Available Backends
//
//   - "wgpu": GPU device on gogpu/wgpu, needs Options.Provider
//   - "software": CPU reference device (always available)
package backend
