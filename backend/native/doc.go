// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native implements the gpucore device interfaces on top of the
// Pure Go gogpu/wgpu hal layer.
//
// A Device either shares the hal device of a host application (see [New]
// and [NewFromProvider]) or opens its own Vulkan device (see [Open]).
// WebGPU exposes a single queue, so every queue type maps to it and the
// transfer granularity is always one block.
//
// Staging buffers keep a host shadow of their contents. Submit flushes the
// ranges a command list reads with hal.Queue.WriteBuffer before handing
// the command buffer to the queue.
//
// Importing the package registers it with the backend registry under
// "native". The package is empty when built with the nogpu tag.
package native
