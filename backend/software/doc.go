// Package software provides an in-memory implementation of the gpucore
// device interfaces.
//
// Every queue runs its submissions on a dedicated goroutine that plays the
// role of the GPU timeline: commands execute after Submit returns, staging
// memory is read at execution time, and fences are signaled once a
// submission has run. Copies are validated against the device caps and
// queue granularity; violations are collected and reported by [Device.Err].
//
// The device also keeps a log of executed barriers, copies and submissions
// (see [Device.Events]) so tests can inspect what a client recorded.
//
// Importing the package registers it with the backend registry:
//
//	import _ "github.com/gogpu/streamer/backend/software"
package software
