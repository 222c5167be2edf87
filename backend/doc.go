// Package backend provides a registry of graphics backends the streamer
// can upload through.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Import the backend packages you want available:
//
//	import _ "github.com/gogpu/streamer/backend/software"
//	import _ "github.com/gogpu/streamer/backend/native"
//
// # Backend Selection
//
// Use Default() to open the best available backend, or Open() to request
// a specific backend by name:
//
//	// Open the default (best available) backend
//	b, err := backend.Default()
//
//	// Or request a specific backend
//	b, err := backend.Open("software")
//
// # Available Backends
//
// - "native": Pure Go GPU backend over gogpu/wgpu hal (Vulkan)
// - "software": in-memory CPU emulation (always available)
package backend
