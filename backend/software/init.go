package software

import "github.com/gogpu/streamer/backend"

// init registers the software backend on package import.
func init() {
	backend.Register(backend.BackendSoftware, func() (backend.Backend, error) {
		return New(), nil
	})
}
