package wgpu

import (
	"github.com/gogpu/frost/backend"
	"github.com/gogpu/frost/render"
)

func init() {
	backend.Register(backend.BackendWGPU, func(opts backend.Options) (render.Device, error) {
		return FromProvider(opts.Provider, Options{Budget: opts.Budget, Logger: opts.Logger})
	})
}
