package backend

import (
	"errors"

	"github.com/gogpu/streamer/gpucore"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the in-memory CPU backend.
	BackendSoftware = "software"
	// BackendNative is the name of the Pure Go GPU backend (gogpu/wgpu hal).
	BackendNative = "native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend is a device the streamer can upload through, owned by the
// caller that opened it.
type Backend interface {
	gpucore.Device

	// Close releases the device. All loaders using it must be closed
	// first.
	Close() error
}
