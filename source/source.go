// Package source reads upload payloads from disk.
//
// Files whose name ends in ".zst" hold zstd-compressed payloads and are
// decompressed transparently; any other file is read as is.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/streamer"
	"github.com/gogpu/streamer/gpucore"
)

// Ext marks zstd-compressed payload files.
const Ext = ".zst"

// ErrEmpty is returned for payload files without data.
var ErrEmpty = errors.New("source: empty payload")

// Compressed reports whether path names a zstd payload.
func Compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Ext)
}

// Open returns a reader over the decoded payload of path.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !Compressed(path) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return &zstdFile{Decoder: dec, f: f}, nil
}

type zstdFile struct {
	*zstd.Decoder
	f *os.File
}

func (z *zstdFile) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// Load reads the whole decoded payload of path.
func Load(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return data, nil
}

// Save writes data to path, compressing it when path ends in ".zst".
func Save(path string, data []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !Compressed(path) {
		_, err = f.Write(data)
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if _, err := bw.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// BufferUpdate loads path into an update of buf at offset.
func BufferUpdate(path string, buf gpucore.Buffer, offset int64, state gpucore.ResourceState) (streamer.BufferUpdate, error) {
	data, err := Load(path)
	if err != nil {
		return streamer.BufferUpdate{}, err
	}
	return streamer.BufferUpdate{
		Buffer: buf,
		Offset: offset,
		Data:   data,
		State:  state,
	}, nil
}

// TextureUpdate loads path into an update of the whole mip level mip of
// layer in tex. The payload must hold the level's blocks in the texture's
// source order.
func TextureUpdate(path string, tex gpucore.Texture, mip, layer uint32, state gpucore.ResourceState) (streamer.TextureUpdate, error) {
	data, err := Load(path)
	if err != nil {
		return streamer.TextureUpdate{}, err
	}
	desc := tex.Desc()
	if want := desc.Format.Size(desc.LevelExtent(mip)); int64(len(data)) < want {
		return streamer.TextureUpdate{}, fmt.Errorf("source: %s holds %d bytes, mip %d needs %d: %w",
			path, len(data), mip, want, streamer.ErrShortData)
	}
	return streamer.TextureUpdate{
		Texture:    tex,
		MipLevel:   mip,
		ArrayLayer: layer,
		Data:       data,
		State:      state,
	}, nil
}
