package software

import "errors"

// Package errors for the software backend.
var (
	// ErrClosed is returned when the device is used after Close.
	ErrClosed = errors.New("software: device closed")

	// ErrNotRecording is returned when a command list is ended or
	// submitted out of order.
	ErrNotRecording = errors.New("software: command list not recording")

	// ErrForeignObject is returned when an object created by another
	// device is passed in.
	ErrForeignObject = errors.New("software: object from another device")

	// ErrInvalidCopy is wrapped by every copy validation failure.
	ErrInvalidCopy = errors.New("software: invalid copy")
)
