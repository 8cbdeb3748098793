package software

import (
	"github.com/gogpu/frost/backend"
	"github.com/gogpu/frost/render"
)

func init() {
	backend.Register(backend.BackendSoftware, func(opts backend.Options) (render.Device, error) {
		return New(Options{Budget: opts.Budget, Logger: opts.Logger}), nil
	})
}
