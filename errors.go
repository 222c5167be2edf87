package streamer

import (
	"errors"

	"github.com/gogpu/streamer/internal/tracker"
)

// Package errors.
var (
	// ErrInvalidConfig is returned by New and LoadConfig for unusable
	// settings.
	ErrInvalidConfig = errors.New("streamer: invalid configuration")

	// ErrClosed is returned by waits released by Close. Enqueueing on a
	// closed loader panics with it.
	ErrClosed = errors.New("streamer: loader closed")

	// ErrNilResource reports an update without a destination.
	ErrNilResource = errors.New("streamer: nil destination resource")

	// ErrEmptyUpdate reports an update of zero bytes or texels.
	ErrEmptyUpdate = errors.New("streamer: empty update")

	// ErrOutOfRange reports an update region outside its destination.
	ErrOutOfRange = errors.New("streamer: update region out of range")

	// ErrMisaligned reports an offset or region that violates the device
	// alignment, block size or transfer granularity.
	ErrMisaligned = errors.New("streamer: misaligned update")

	// ErrShortData reports source data smaller than the update region.
	ErrShortData = errors.New("streamer: source data too short")

	// ErrStagingTooSmall reports a texture update whose smallest transfer
	// unit does not fit into one resource set.
	ErrStagingTooSmall = errors.New("streamer: staging buffer too small")
)

// waitErr maps tracker errors onto package errors.
func waitErr(err error) error {
	if errors.Is(err, tracker.ErrClosed) {
		return ErrClosed
	}
	return err
}
