// Package webgpu implements the WebGPU backend for GPU-accelerated tensor operations.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// A Backend either creates its own GPU context (New) or adopts one that a
// host renderer already initialized (InitDevice). Adopted handles are never
// released by the backend.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/born-ml/gpushare/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// AdapterInfo describes the GPU adapter a Backend runs on.
type AdapterInfo struct {
	Vendor       string
	Architecture string
	Device       string
	Description  string
	BackendType  wgpu.BackendType
	AdapterType  wgpu.AdapterType
	VendorID     uint32
	DeviceID     uint32
}

// String returns a one-line description for logs.
func (i AdapterInfo) String() string {
	return fmt.Sprintf("%s (%s) on %s", i.Device, i.Description, BackendName(i.BackendType))
}

// compiled is a pipeline cache entry. The shader module is kept next to
// the pipeline so both are released together on eviction.
type compiled struct {
	shader   *wgpu.ShaderModule
	pipeline *wgpu.ComputePipeline
}

// Backend implements tensor operations on GPU using WebGPU.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// owned is false when the handles were adopted through InitDevice.
	owned bool

	opts      RuntimeOptions
	pipelines *lru.Cache[string, *compiled]

	// Device info
	adapterInfo *AdapterInfo

	// Buffer pool for result and staging buffers.
	bufferPool *BufferPool

	// Memory tracking
	memoryStats struct {
		totalAllocatedBytes uint64
		peakMemoryBytes     uint64
		activeBuffers       int64
		mu                  sync.RWMutex
	}

	// Command batching. Commands are accumulated and submitted together
	// to reduce GPU sync overhead.
	pendingCommands []*wgpu.CommandBuffer
	pendingMu       sync.Mutex

	mu       sync.RWMutex
	released bool
}

// New creates a new WebGPU backend with its own instance, adapter, device
// and queue. Returns an error if WebGPU is not available or initialization fails.
func New(opts RuntimeOptions) (backend *Backend, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = errors.Wrapf(ErrNativeUnavailable, "%v", r)
		}
	}()

	if err := wgpu.Init(); err != nil {
		return nil, errors.Wrap(ErrNativeUnavailable, err.Error())
	}

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, errors.Wrap(err, "webgpu: instance creation failed")
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, errors.Wrap(ErrNoAdapter, err.Error())
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(err, "webgpu: failed to request device")
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.New("webgpu: failed to get queue")
	}

	info, err := readAdapterInfo(adapter)
	if err != nil {
		// Adapter info is informational only for an owned context.
		klog.Warningf("webgpu: adapter info unavailable: %v", err)
	}

	b, err := newBackend(Setup{Instance: instance, Adapter: adapter, Device: device, Queue: queue}, opts, true)
	if err != nil {
		queue.Release()
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, err
	}
	b.adapterInfo = info
	klog.V(1).Infof("webgpu: created backend %s", b.Name())
	return b, nil
}

// InitDevice creates a Backend on top of an existing GPU context.
//
// The handles in setup are adopted, not copied: compute work is recorded
// on setup.Device and submitted on setup.Queue. The Backend never releases
// them; their creator stays responsible for that.
func InitDevice(setup Setup, opts RuntimeOptions) (backend *Backend, err error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = errors.Wrapf(ErrNativeUnavailable, "%v", r)
		}
	}()

	info, err := readAdapterInfo(setup.Adapter)
	if err != nil {
		return nil, err
	}
	if info.BackendType != setup.Backend {
		return nil, errors.Wrapf(ErrBackendMismatch, "adapter reports %s, setup claims %s",
			BackendName(info.BackendType), BackendName(setup.Backend))
	}

	b, err := newBackend(setup, opts, false)
	if err != nil {
		return nil, err
	}
	b.adapterInfo = info
	klog.V(1).Infof("webgpu: adopted device %p on %s", setup.Device, info)
	return b, nil
}

// newBackend assembles a Backend around valid handles without talking to
// the native library.
func newBackend(setup Setup, opts RuntimeOptions, owned bool) (*Backend, error) {
	pipelines, err := lru.NewWithEvict(opts.PipelineCacheSize, func(name string, c *compiled) {
		klog.V(2).Infof("webgpu: evicting pipeline %s", name)
		c.release()
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidOptions, err.Error())
	}
	return &Backend{
		instance:   setup.Instance,
		adapter:    setup.Adapter,
		device:     setup.Device,
		queue:      setup.Queue,
		owned:      owned,
		opts:       opts,
		pipelines:  pipelines,
		bufferPool: NewBufferPool(setup.Device, opts.MemoryStrategy),
	}, nil
}

// readAdapterInfo copies the adapter's properties.
func readAdapterInfo(adapter *wgpu.Adapter) (*AdapterInfo, error) {
	info, err := adapter.GetInfo()
	if err != nil {
		return nil, errors.Wrap(err, "webgpu: adapter info")
	}
	return &AdapterInfo{
		Vendor:       info.Vendor,
		Architecture: info.Architecture,
		Device:       info.Device,
		Description:  info.Description,
		BackendType:  info.BackendType,
		AdapterType:  info.AdapterType,
		VendorID:     info.VendorID,
		DeviceID:     info.DeviceID,
	}, nil
}

func (c *compiled) release() {
	if c.pipeline != nil {
		c.pipeline.Release()
	}
	if c.shader != nil {
		c.shader.Release()
	}
}

// queueCommand adds a command buffer to the pending queue for batch submission.
// Commands are automatically flushed when reading data or when batch size limit is reached.
func (b *Backend) queueCommand(cmdBuffer *wgpu.CommandBuffer) {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()

	b.pendingCommands = append(b.pendingCommands, cmdBuffer)

	// Auto-flush if batch size limit is reached (0 = no limit)
	if b.opts.MaxBatchSize > 0 && len(b.pendingCommands) >= b.opts.MaxBatchSize {
		b.flushCommandsLocked()
	}
}

// flushCommandsLocked submits all pending command buffers (must hold pendingMu lock).
func (b *Backend) flushCommandsLocked() {
	if len(b.pendingCommands) == 0 {
		return
	}
	b.queue.Submit(b.pendingCommands...)
	b.pendingCommands = b.pendingCommands[:0]
}

// FlushCommands submits all pending command buffers to the GPU queue.
// It is called automatically before reading data from GPU buffers.
func (b *Backend) FlushCommands() {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	b.flushCommandsLocked()
}

// PendingCommands returns the number of recorded but unsubmitted command buffers.
func (b *Backend) PendingCommands() int {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	return len(b.pendingCommands)
}

// Release releases the backend's GPU resources. Handles adopted through
// InitDevice are left untouched. Release is idempotent.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}

	b.FlushCommands()
	b.released = true

	if b.bufferPool != nil {
		b.bufferPool.Clear()
	}
	if b.pipelines != nil {
		// Purge runs the eviction callback for every entry.
		b.pipelines.Purge()
	}

	if !b.owned {
		klog.V(1).Infof("webgpu: released backend, adopted device %p left to its owner", b.device)
		return
	}
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
	klog.V(1).Infof("webgpu: released backend and its device")
}

// Released reports whether Release was called.
func (b *Backend) Released() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.released
}

// Name returns the backend name.
func (b *Backend) Name() string {
	if b.adapterInfo != nil && b.adapterInfo.Device != "" {
		return fmt.Sprintf("WebGPU (%s %s)", b.adapterInfo.Device, BackendName(b.adapterInfo.BackendType))
	}
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterInfo returns information about the GPU adapter, nil if unknown.
func (b *Backend) AdapterInfo() *AdapterInfo {
	return b.adapterInfo
}

// Owned reports whether the backend created, and will release, its handles.
func (b *Backend) Owned() bool {
	return b.owned
}

// Options returns the runtime options the backend was created with.
func (b *Backend) Options() RuntimeOptions {
	return b.opts
}

// WgpuDevice returns the logical device the backend records work on.
func (b *Backend) WgpuDevice() *wgpu.Device {
	return b.device
}

// WgpuQueue returns the queue the backend submits work on.
func (b *Backend) WgpuQueue() *wgpu.Queue {
	return b.queue
}

// WgpuAdapter returns the adapter the device was created from.
func (b *Backend) WgpuAdapter() *wgpu.Adapter {
	return b.adapter
}

// WgpuInstance returns the instance the adapter was requested from.
func (b *Backend) WgpuInstance() *wgpu.Instance {
	return b.instance
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	if err := wgpu.Init(); err != nil {
		return false
	}
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// MemoryStats represents GPU memory usage statistics.
type MemoryStats struct {
	// Total bytes currently allocated by the backend
	TotalAllocatedBytes uint64
	// Peak memory usage in bytes
	PeakMemoryBytes uint64
	// Number of currently active buffers
	ActiveBuffers int64
	// Buffer pool statistics
	PoolAllocated uint64
	PoolReleased  uint64
	PoolHits      uint64
	PoolMisses    uint64
	PooledBuffers int
	// Number of cached compute pipelines
	CachedPipelines int
}

// MemoryStats returns current GPU memory usage statistics.
func (b *Backend) MemoryStats() MemoryStats {
	b.memoryStats.mu.RLock()
	totalAllocated := b.memoryStats.totalAllocatedBytes
	peakMemory := b.memoryStats.peakMemoryBytes
	activeBuffers := b.memoryStats.activeBuffers
	b.memoryStats.mu.RUnlock()

	stats := MemoryStats{
		TotalAllocatedBytes: totalAllocated,
		PeakMemoryBytes:     peakMemory,
		ActiveBuffers:       activeBuffers,
	}
	if b.bufferPool != nil {
		stats.PoolAllocated, stats.PoolReleased, stats.PoolHits, stats.PoolMisses, stats.PooledBuffers = b.bufferPool.Stats()
	}
	if b.pipelines != nil {
		stats.CachedPipelines = b.pipelines.Len()
	}
	return stats
}

// trackBufferAllocation records a buffer allocation in memory statistics.
func (b *Backend) trackBufferAllocation(size uint64) {
	b.memoryStats.mu.Lock()
	defer b.memoryStats.mu.Unlock()

	b.memoryStats.totalAllocatedBytes += size
	b.memoryStats.activeBuffers++

	if b.memoryStats.totalAllocatedBytes > b.memoryStats.peakMemoryBytes {
		b.memoryStats.peakMemoryBytes = b.memoryStats.totalAllocatedBytes
	}
}

// trackBufferRelease records a buffer release in memory statistics.
func (b *Backend) trackBufferRelease(size uint64) {
	b.memoryStats.mu.Lock()
	defer b.memoryStats.mu.Unlock()

	if b.memoryStats.totalAllocatedBytes >= size {
		b.memoryStats.totalAllocatedBytes -= size
	}
	b.memoryStats.activeBuffers--
}

// checkUsable returns ErrReleased once Release has been called.
func (b *Backend) checkUsable() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.released {
		return ErrReleased
	}
	return nil
}
