package streamer

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/streamer/gpucore"
)

// Defaults used when no option overrides them.
const (
	DefaultStagingSize = 8 << 20
	DefaultRingSize    = 2
)

// Option configures a Loader during creation.
//
// Example:
//
//	l, err := streamer.New(dev,
//		streamer.WithStagingSize(16<<20),
//		streamer.WithRingSize(3),
//	)
type Option func(*options)

// options holds optional configuration for Loader creation.
type options struct {
	stagingSize int64
	ringSize    int
	queue       gpucore.QueueType
	logger      *slog.Logger
}

// defaultOptions returns the default loader options.
func defaultOptions() options {
	return options{
		stagingSize: DefaultStagingSize,
		ringSize:    DefaultRingSize,
		queue:       gpucore.QueueTransfer,
	}
}

// WithStagingSize sets the staging capacity of every resource set in
// bytes. Texture requests whose smallest transfer unit does not fit are
// rejected at enqueue time.
func WithStagingSize(bytes int64) Option {
	return func(o *options) {
		o.stagingSize = bytes
	}
}

// WithRingSize sets the number of resource sets. At most n-1 submissions
// are in flight. n must be at least 2.
func WithRingSize(n int) Option {
	return func(o *options) {
		o.ringSize = n
	}
}

// WithQueue selects the queue copies are submitted to. The default is the
// transfer queue.
func WithQueue(q gpucore.QueueType) Option {
	return func(o *options) {
		o.queue = q
	}
}

// WithLogger sets the logger of one loader, overriding [SetLogger].
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func (o *options) validate() error {
	if o.stagingSize <= 0 {
		return fmt.Errorf("%w: staging size %d", ErrInvalidConfig, o.stagingSize)
	}
	if o.ringSize < 2 {
		return fmt.Errorf("%w: ring size %d, need at least 2", ErrInvalidConfig, o.ringSize)
	}
	return nil
}
