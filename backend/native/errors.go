// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrClosed is returned when the device is used after Close.
	ErrClosed = errors.New("native: device closed")

	// ErrNotRecording is returned when a command list is ended or
	// submitted out of order.
	ErrNotRecording = errors.New("native: command list not recording")

	// ErrForeignObject is returned when an object created by another
	// device is passed in.
	ErrForeignObject = errors.New("native: object from another device")

	// ErrNoAdapter is returned by Open when no GPU adapter is found.
	ErrNoAdapter = errors.New("native: no GPU adapter found")

	// ErrUnsupportedFormat is returned when a texture format has no
	// WebGPU counterpart.
	ErrUnsupportedFormat = errors.New("native: unsupported texture format")
)
