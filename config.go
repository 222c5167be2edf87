package streamer

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/streamer/gpucore"
)

// ByteSize is a byte count that reads from YAML either as an integer or as
// a human-readable size such as "8 MiB" or "512KB".
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	n, err := humanize.ParseBytes(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*b = ByteSize(n)
	return nil
}

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Config is the file form of the loader options.
//
//	staging_size: 8 MiB
//	ring_size: 3
//	queue: transfer
type Config struct {
	StagingSize ByteSize `yaml:"staging_size"`
	RingSize    int      `yaml:"ring_size"`
	Queue       string   `yaml:"queue"`
}

// DefaultConfig returns the configuration matching the default options.
func DefaultConfig() Config {
	return Config{
		StagingSize: DefaultStagingSize,
		RingSize:    DefaultRingSize,
		Queue:       gpucore.QueueTransfer.String(),
	}
}

// LoadConfig reads a YAML config file on top of the defaults. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("streamer.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("streamer.yaml: %w", err)
	}
	return cfg, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.StagingSize == 0 {
		c.StagingSize = d.StagingSize
	}
	if c.RingSize == 0 {
		c.RingSize = d.RingSize
	}
	c.Queue = strings.ToLower(strings.TrimSpace(c.Queue))
	if c.Queue == "" {
		c.Queue = d.Queue
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.StagingSize <= 0 {
		return fmt.Errorf("%w: staging_size %d", ErrInvalidConfig, c.StagingSize)
	}
	if c.RingSize < 2 {
		return fmt.Errorf("%w: ring_size %d, need at least 2", ErrInvalidConfig, c.RingSize)
	}
	if _, err := gpucore.ParseQueueType(c.Queue); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Options converts the configuration to loader options. It assumes
// Validate passed; an unknown queue name keeps the default queue.
func (c Config) Options() []Option {
	opts := []Option{
		WithStagingSize(int64(c.StagingSize)),
		WithRingSize(c.RingSize),
	}
	if q, err := gpucore.ParseQueueType(c.Queue); err == nil {
		opts = append(opts, WithQueue(q))
	}
	return opts
}
