package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// BufferSize represents different buffer size categories for pooling.
type BufferSize int

const (
	// SmallBuffer for buffers < 4KB.
	SmallBuffer BufferSize = iota
	// MediumBuffer for buffers 4KB-1MB.
	MediumBuffer
	// LargeBuffer for buffers > 1MB.
	LargeBuffer

	numBufferSizes
)

const (
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB

	// defaultPoolCapacity is the number of idle buffers kept per category.
	defaultPoolCapacity = 100
)

// pooledBuffer wraps a GPU buffer with metadata.
type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  gputypes.BufferUsage
}

// BufferPool recycles GPU buffers (result and staging) between ops.
// Buffers are categorized by size and matched on usage flags.
//
// The device is shared with the host renderer, so with capacity 0 the
// pool degrades to allocate-and-free and keeps nothing alive between ops.
type BufferPool struct {
	alloc func(size uint64, usage gputypes.BufferUsage) *wgpu.Buffer
	free  func(*wgpu.Buffer)

	capacity int
	idle     [numBufferSizes][]*pooledBuffer

	mu sync.Mutex

	// Statistics
	totalAllocated uint64
	totalReleased  uint64
	poolHits       uint64
	poolMisses     uint64
}

// NewBufferPool creates a pool that allocates buffers on device.
func NewBufferPool(device *wgpu.Device, strategy MemoryStrategy) *BufferPool {
	capacity := defaultPoolCapacity
	if strategy == MemoryExclusive {
		capacity = 0
	}
	return newBufferPool(
		func(size uint64, usage gputypes.BufferUsage) *wgpu.Buffer {
			return device.CreateBuffer(&wgpu.BufferDescriptor{Usage: usage, Size: size})
		},
		func(b *wgpu.Buffer) { b.Release() },
		capacity,
	)
}

func newBufferPool(alloc func(uint64, gputypes.BufferUsage) *wgpu.Buffer, free func(*wgpu.Buffer), capacity int) *BufferPool {
	return &BufferPool{alloc: alloc, free: free, capacity: capacity}
}

// Acquire gets a buffer from the pool or creates a new one.
// The returned buffer is at least size bytes and has every usage flag.
func (p *BufferPool) Acquire(size uint64, usage gputypes.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	category := categorize(size)
	for i, pb := range p.idle[category] {
		if pb.size >= size && pb.usage&usage == usage {
			p.idle[category] = append(p.idle[category][:i], p.idle[category][i+1:]...)
			p.poolHits++
			return pb.buffer
		}
	}

	p.poolMisses++
	p.totalAllocated++
	return p.alloc(size, usage)
}

// Release returns a buffer to the pool for reuse.
// size and usage must be the values passed to Acquire. When the category
// is full the buffer is freed immediately.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage gputypes.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalReleased++

	category := categorize(size)
	if len(p.idle[category]) >= p.capacity {
		p.free(buffer)
		return
	}
	p.idle[category] = append(p.idle[category], &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear releases all pooled buffers.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.idle {
		for _, pb := range p.idle[c] {
			p.free(pb.buffer)
		}
		p.idle[c] = nil
	}
}

// Stats returns statistics about buffer pool usage.
func (p *BufferPool) Stats() (allocated, released, hits, misses uint64, pooledCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.idle {
		pooledCount += len(p.idle[c])
	}
	return p.totalAllocated, p.totalReleased, p.poolHits, p.poolMisses, pooledCount
}

// categorize determines the size category for a buffer.
func categorize(size uint64) BufferSize {
	switch {
	case size < smallThreshold:
		return SmallBuffer
	case size < mediumThreshold:
		return MediumBuffer
	default:
		return LargeBuffer
	}
}
