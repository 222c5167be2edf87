package software

import (
	"sync"

	"github.com/gogpu/streamer/gpucore"
)

// StagingBuffer is host memory the queue goroutine reads at execution
// time.
type StagingBuffer struct {
	dev  *Device
	data []byte
	gone bool
}

// Bytes returns the buffer memory.
func (s *StagingBuffer) Bytes() []byte { return s.data }

// Size returns the capacity in bytes.
func (s *StagingBuffer) Size() int64 { return int64(len(s.data)) }

// Destroy releases the buffer.
func (s *StagingBuffer) Destroy() {
	if s.gone {
		return
	}
	s.gone = true
	s.dev.release()
}

// Buffer is a copy destination.
type Buffer struct {
	dev *Device

	mu   sync.Mutex
	data []byte
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() int64 { return int64(len(b.data)) }

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Texture is a copy destination. Each subresource is stored as tightly
// packed block rows in raster order.
type Texture struct {
	dev  *Device
	desc gpucore.TextureDesc

	mu     sync.Mutex
	levels [][]byte
}

// Desc returns the texture description.
func (t *Texture) Desc() gpucore.TextureDesc { return t.desc }

func (t *Texture) index(mip, layer uint32) uint32 {
	return layer*t.desc.MipLevels + mip
}

// Level returns a copy of one subresource.
func (t *Texture) Level(mip, layer uint32) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.levels[t.index(mip, layer)]...)
}
