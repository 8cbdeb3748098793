package backend

import (
	"errors"
	"log/slog"

	"github.com/gogpu/frost/render"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU device.
	BackendSoftware = "software"
	// BackendWGPU is the name of the GPU device on gogpu/wgpu.
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoProvider is returned by GPU backends when Options carries no
	// usable device provider.
	ErrNoProvider = errors.New("backend: no GPU device provider")
)

// Options are passed to every backend factory.
type Options struct {
	// Provider supplies the host compositor's GPU device. CPU backends
	// ignore it.
	Provider render.DeviceHandle

	// Budget limits texture memory. Nil means unlimited.
	Budget *render.Budget

	// Logger receives backend diagnostics. Nil discards them.
	Logger *slog.Logger
}
