// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import "github.com/gogpu/streamer/backend"

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() (backend.Backend, error) {
		return Open()
	})
}
