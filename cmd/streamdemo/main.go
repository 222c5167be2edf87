// Command streamdemo streams buffers and textures through a loader from
// several producer goroutines and reports throughput.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/streamer"
	"github.com/gogpu/streamer/backend"
	"github.com/gogpu/streamer/gpucore"
	"github.com/gogpu/streamer/source"
)

type params struct {
	config    string
	backend   string
	producers int
	updates   int
	size      string
	payload   string
	image     string
}

func main() {
	var (
		p       params
		verbose = flag.Bool("v", false, "log every chunk")
	)
	flag.StringVar(&p.config, "config", "", "YAML config file (staging_size, ring_size, queue)")
	flag.StringVar(&p.backend, "backend", "", "backend name; empty picks the best available")
	flag.IntVar(&p.producers, "producers", 4, "concurrent producer goroutines")
	flag.IntVar(&p.updates, "updates", 16, "buffer updates per producer")
	flag.StringVar(&p.size, "size", "1 MiB", "buffer update size")
	flag.StringVar(&p.payload, "payload", "", "buffer payload file (.zst is decompressed)")
	flag.StringVar(&p.image, "image", "", "PNG or JPEG streamed as a mipmapped texture")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	streamer.SetLogger(logger)

	if err := run(p, logger); err != nil {
		logger.Error("streamdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(p params, log *slog.Logger) error {
	cfg, err := streamer.LoadConfig(p.config)
	if err != nil {
		return err
	}
	b, err := openBackend(p.backend)
	if err != nil {
		return err
	}
	defer b.Close()
	alloc, err := allocatorFor(b)
	if err != nil {
		return err
	}
	defer alloc.release()

	payloads := source.NewCache(64 << 20)
	data, err := bufferPayload(p, payloads)
	if err != nil {
		return err
	}
	img, err := texturePayload(p.image)
	if err != nil {
		return err
	}

	l, err := streamer.New(b, cfg.Options()...)
	if err != nil {
		return err
	}
	defer l.Close()

	start := time.Now()
	var producers errgroup.Group
	for range p.producers {
		producers.Go(func() error {
			for i := range p.updates {
				data := data
				if p.payload != "" {
					// Hits the cache after the first load.
					cached, err := payloads.Load(p.payload)
					if err != nil {
						return err
					}
					data = cached
				}
				buf, err := alloc.newBuffer(int64(len(data)))
				if err != nil {
					return err
				}
				l.EnqueueBufferUpdate(streamer.BufferUpdate{
					Buffer: buf,
					Data:   data,
					State:  gpucore.StateVertexAndUniform,
				})
				if i%4 != 0 {
					continue
				}
				tex, err := alloc.newTexture(textureDesc(img))
				if err != nil {
					return err
				}
				l.EnqueueTextureLevels(tex, 0, streamer.ImageMipChain(img, tex), gpucore.StateShaderResource)
			}
			return nil
		})
	}
	if err := producers.Wait(); err != nil {
		return err
	}
	if err := l.WaitForBatch(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	st := l.Stats()
	log.Info("streamdemo: done",
		"backend", b.Name(),
		"elapsed", elapsed.Round(time.Millisecond),
		"updates", st.Completed,
		"submissions", st.Submissions,
		"chunks", st.Chunks,
		"staged", humanize.IBytes(st.BytesStaged),
		"throughput", humanize.IBytes(uint64(float64(st.BytesStaged)/elapsed.Seconds()))+"/s")
	if p.payload != "" {
		cs := payloads.Stats()
		log.Info("streamdemo: payload cache", "hits", cs.Hits, "misses", cs.Misses, "cached", humanize.IBytes(uint64(cs.Bytes)))
	}
	return nil
}

func openBackend(name string) (backend.Backend, error) {
	if name == "" {
		return backend.Default()
	}
	return backend.Open(name)
}

func bufferPayload(p params, cache *source.Cache) ([]byte, error) {
	if p.payload != "" {
		return cache.Load(p.payload)
	}
	n, err := humanize.ParseBytes(p.size)
	if err != nil {
		return nil, fmt.Errorf("-size: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("-size: must be positive")
	}
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data, nil
}

// texturePayload decodes path, or returns a generated gradient.
func texturePayload(path string) (image.Image, error) {
	if path == "" {
		img := image.NewRGBA(image.Rect(0, 0, 256, 256))
		for y := range 256 {
			for x := range 256 {
				img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
			}
		}
		return img, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func textureDesc(img image.Image) gpucore.TextureDesc {
	b := img.Bounds()
	w, h := uint32(b.Dx()), uint32(b.Dy())
	mips := uint32(1)
	for max(w, h)>>mips > 0 {
		mips++
	}
	return gpucore.TextureDesc{Width: w, Height: h, MipLevels: mips, Format: gpucore.FormatRGBA8}
}
