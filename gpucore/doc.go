// Package gpucore defines the graphics backend abstraction consumed by the
// resource streamer.
//
// The streamer never talks to a GPU API directly. It records barriers and
// staging copies through the [Device], [Queue] and [CommandList] interfaces
// and synchronizes with [Fence]. Thin adapters translate these calls to a
// concrete API:
//
//	               +------------------+
//	               |     streamer     |
//	               | (Loader, worker) |
//	               +--------+---------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	| native adapter  |          |    software     |
//	|  (hal.Device)   |          | (CPU emulation) |
//	+--------+--------+          +-----------------+
//	         |
//	+--------v--------+
//	|   gogpu/wgpu    |
//	|   (Pure Go)     |
//	+-----------------+
//
// # Resource States
//
// Every copy destination is transitioned from [StateUndefined] to
// [StateCopyDest] before its first copy and to its declared end state after
// the last one. Backends that track usage implicitly may treat barriers as
// no-ops.
//
// # Formats
//
// [Format] describes a texel block footprint. Block-compressed formats
// cover several texels per block; staging layouts are expressed in blocks
// and converted back to texels when copy commands are recorded.
package gpucore
