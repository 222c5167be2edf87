package streamer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/streamer/gpucore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamer.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig(\"\") = %+v, want %+v", cfg, DefaultConfig())
	}
	if got := cfg.StagingSize.String(); got != "8.0 MiB" {
		t.Errorf("StagingSize.String() = %q, want %q", got, "8.0 MiB")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, "staging_size: 1 MiB\nring_size: 3\nqueue: Graphics\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := Config{StagingSize: 1 << 20, RingSize: 3, Queue: "graphics"}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}

	l, _ := newLoader(t, nil, cfg.Options()...)
	if l.opts.stagingSize != 1<<20 || l.opts.ringSize != 3 || l.opts.queue != gpucore.QueueGraphics {
		t.Errorf("options = %+v", l.opts)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "staging_size: 65536\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.StagingSize != 64<<10 || cfg.RingSize != DefaultRingSize || cfg.Queue != "transfer" {
		t.Errorf("LoadConfig() = %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{"ring too small", "ring_size: 1\n", true},
		{"unknown queue", "queue: video\n", true},
		{"bad size", "staging_size: lots\n", false},
		{"not yaml", "staging_size: [\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("LoadConfig() error = nil")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalidConfig) = %v, want %v", err, got, tt.invalid)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want os.ErrNotExist", err)
	}
}
