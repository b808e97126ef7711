// Package render is the host rendering subsystem: it initializes the WebGPU
// context once and publishes its handles as resources of a World.
package render

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Renderer owns the host's instance, adapter, device and queue.
type Renderer struct {
	mu       sync.Mutex
	opts     Options
	world    *World
	info     RenderAdapterInfo
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	released bool
}

// New initializes a headless GPU context and inserts RenderInstance,
// RenderAdapter, RenderDevice, RenderQueue and RenderAdapterInfo into the
// renderer's world. Whatever was created before a failure is released.
func New(opts Options) (r *Renderer, err error) {
	r = &Renderer{opts: opts, world: NewWorld()}
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Wrapf(ErrLibraryNotFound, "%v", rec)
		}
		if err != nil {
			r.releaseHandles()
			r = nil
		}
	}()

	if err := wgpu.Init(); err != nil {
		return r, errors.Wrap(ErrLibraryNotFound, err.Error())
	}

	r.instance, err = wgpu.CreateInstance(nil)
	if err != nil {
		return r, errors.Wrap(err, "render: instance creation failed")
	}

	r.adapter, err = r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      opts.PowerPreference,
		ForceFallbackAdapter: wgpuBool(opts.ForceFallbackAdapter),
	})
	if err != nil {
		return r, errors.Wrap(ErrNoAdapter, err.Error())
	}

	info, err := r.adapter.GetInfo()
	if err != nil {
		return r, errors.Wrap(err, "render: adapter info")
	}
	r.info = RenderAdapterInfo{
		Name:        info.Device,
		Vendor:      info.Vendor,
		Driver:      info.Description,
		VendorID:    info.VendorID,
		DeviceID:    info.DeviceID,
		AdapterType: info.AdapterType,
		Backend:     info.BackendType,
	}

	r.device, err = r.adapter.RequestDevice(nil)
	if err != nil {
		return r, errors.Wrap(err, "render: device creation failed")
	}

	r.queue = r.device.GetQueue()
	if r.queue == nil {
		return r, errors.New("render: queue retrieval failed")
	}

	Insert(r.world, RenderInstance{NewWrapper(r.instance)})
	Insert(r.world, RenderAdapter{NewWrapper(r.adapter)})
	Insert(r.world, NewRenderDevice(r.device))
	Insert(r.world, RenderQueue{NewWrapper(r.queue)})
	Insert(r.world, r.info)

	klog.V(1).Infof("render: initialized %s", r.info)
	return r, nil
}

// World returns the renderer's resource world.
func (r *Renderer) World() *World {
	return r.world
}

// AdapterInfo returns the properties of the selected adapter.
func (r *Renderer) AdapterInfo() RenderAdapterInfo {
	return r.info
}

// Options returns the options the renderer was created with.
func (r *Renderer) Options() Options {
	return r.opts
}

// Release removes the GPU resources from the world and releases them in
// reverse order of creation. Release is idempotent.
func (r *Renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true

	Remove[RenderAdapterInfo](r.world)
	Remove[RenderQueue](r.world)
	Remove[RenderDevice](r.world)
	Remove[RenderAdapter](r.world)
	Remove[RenderInstance](r.world)
	r.releaseHandles()
	klog.V(1).Infof("render: released")
}

// Released reports whether Release was called.
func (r *Renderer) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

func (r *Renderer) releaseHandles() {
	if r.queue != nil {
		r.queue.Release()
		r.queue = nil
	}
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
	if r.adapter != nil {
		r.adapter.Release()
		r.adapter = nil
	}
	if r.instance != nil {
		r.instance.Release()
		r.instance = nil
	}
}
