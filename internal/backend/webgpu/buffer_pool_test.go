package webgpu

import (
	"testing"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPool returns a pool whose buffers are host-side placeholders,
// and the number of buffers it has freed.
func countingPool(capacity int) (*BufferPool, *int) {
	freed := 0
	pool := newBufferPool(
		func(uint64, gputypes.BufferUsage) *wgpu.Buffer { return new(wgpu.Buffer) },
		func(*wgpu.Buffer) { freed++ },
		capacity,
	)
	return pool, &freed
}

func TestBufferPoolCategorize(t *testing.T) {
	tests := []struct {
		size uint64
		want BufferSize
	}{
		{4, SmallBuffer},
		{2048, SmallBuffer},
		{smallThreshold, MediumBuffer},
		{512 * 1024, MediumBuffer},
		{mediumThreshold, LargeBuffer},
		{2 * 1024 * 1024, LargeBuffer},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorize(tt.size), "size %d", tt.size)
	}
}

func TestBufferPoolReuse(t *testing.T) {
	pool, freed := countingPool(defaultPoolCapacity)

	buf1 := pool.Acquire(1024, resultUsage)
	allocated, released, hits, misses, pooled := pool.Stats()
	assert.Equal(t, uint64(1), allocated)
	assert.Equal(t, uint64(0), released)
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0, pooled)

	pool.Release(buf1, 1024, resultUsage)
	_, released, _, _, pooled = pool.Stats()
	assert.Equal(t, uint64(1), released)
	assert.Equal(t, 1, pooled)

	// A smaller request in the same category with a subset of the usage
	// flags is served by the pooled buffer.
	buf2 := pool.Acquire(512, gputypes.BufferUsageStorage)
	assert.Same(t, buf1, buf2)
	_, _, hits, _, pooled = pool.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, 0, pooled)
	assert.Equal(t, 0, *freed)
}

func TestBufferPoolUsageMismatch(t *testing.T) {
	pool, _ := countingPool(defaultPoolCapacity)

	buf := pool.Acquire(1024, resultUsage)
	pool.Release(buf, 1024, resultUsage)

	staging := pool.Acquire(1024, stagingUsage)
	assert.NotSame(t, buf, staging)
	_, _, hits, misses, pooled := pool.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(2), misses)
	assert.Equal(t, 1, pooled)
}

func TestBufferPoolTooSmall(t *testing.T) {
	pool, _ := countingPool(defaultPoolCapacity)

	buf := pool.Acquire(1024, resultUsage)
	pool.Release(buf, 1024, resultUsage)

	bigger := pool.Acquire(2048, resultUsage)
	assert.NotSame(t, buf, bigger)
}

func TestBufferPoolExclusiveFreesImmediately(t *testing.T) {
	pool, freed := countingPool(0)

	sizes := []uint64{1024, 8192, 2 * 1024 * 1024}
	for _, size := range sizes {
		pool.Release(pool.Acquire(size, resultUsage), size, resultUsage)
	}

	_, released, hits, _, pooled := pool.Stats()
	assert.Equal(t, uint64(len(sizes)), released)
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, 0, pooled)
	assert.Equal(t, len(sizes), *freed)
}

func TestBufferPoolCapacity(t *testing.T) {
	pool, freed := countingPool(2)

	bufs := make([]*wgpu.Buffer, 3)
	for i := range bufs {
		bufs[i] = pool.Acquire(1024, resultUsage)
	}
	for _, buf := range bufs {
		pool.Release(buf, 1024, resultUsage)
	}

	_, _, _, _, pooled := pool.Stats()
	assert.Equal(t, 2, pooled)
	assert.Equal(t, 1, *freed)
}

func TestBufferPoolClear(t *testing.T) {
	pool, freed := countingPool(defaultPoolCapacity)

	sizes := []uint64{1024, 8192, 2 * 1024 * 1024} // Small, medium, large
	for _, size := range sizes {
		pool.Release(pool.Acquire(size, resultUsage), size, resultUsage)
	}
	_, _, _, _, pooled := pool.Stats()
	require.Equal(t, len(sizes), pooled)

	pool.Clear()

	_, _, _, _, pooled = pool.Stats()
	assert.Equal(t, 0, pooled)
	assert.Equal(t, len(sizes), *freed)
}

func TestNewBufferPoolStrategy(t *testing.T) {
	device := new(wgpu.Device)
	assert.Equal(t, defaultPoolCapacity, NewBufferPool(device, MemoryPooled).capacity)
	assert.Equal(t, 0, NewBufferPool(device, MemoryExclusive).capacity)
}
