package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/streamer/source"
)

func TestRunSoftware(t *testing.T) {
	dir := t.TempDir()
	payload := filepath.Join(dir, "payload.zst")
	if err := source.Save(payload, bytes.Repeat([]byte("vertex"), 10<<10)); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "streamer.yaml")
	if err := os.WriteFile(cfg, []byte("staging_size: 256 KiB\nring_size: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	err := run(params{
		config:    cfg,
		backend:   "software",
		producers: 3,
		updates:   5,
		payload:   payload,
	}, log)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	// 3 producers x (5 buffers + 2 textures of 9 levels).
	if s := out.String(); !strings.Contains(s, "updates=69") || !strings.Contains(s, "backend=software") || !strings.Contains(s, "hits=") {
		t.Errorf("log = %q", s)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if err := run(params{backend: "metal", producers: 1, updates: 1, size: "1 KiB"}, log); err == nil {
		t.Error("run() error = nil for unknown backend")
	}
}
