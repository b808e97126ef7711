package render

import (
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"k8s.io/klog/v2"
)

// sharedDevice is the gpucontext view of the renderer's device. The
// renderer keeps ownership, so Destroy does not release anything.
type sharedDevice struct {
	device *wgpu.Device
}

func (d *sharedDevice) Poll(bool) {}

func (d *sharedDevice) Destroy() {
	klog.Warningf("render: ignoring Destroy on shared device %p; release the Renderer instead", d.device)
}

// Provider exposes the renderer's GPU context to gpucontext consumers.
type Provider struct {
	device  *sharedDevice
	queue   *wgpu.Queue
	adapter *wgpu.Adapter
	info    RenderAdapterInfo
	format  gputypes.TextureFormat
}

var _ gpucontext.DeviceProvider = (*Provider)(nil)

// NewProvider returns a Provider over handles the caller keeps owning.
func NewProvider(device *wgpu.Device, queue *wgpu.Queue, adapter *wgpu.Adapter, info RenderAdapterInfo, format gputypes.TextureFormat) *Provider {
	return &Provider{
		device:  &sharedDevice{device: device},
		queue:   queue,
		adapter: adapter,
		info:    info,
		format:  format,
	}
}

// Provider returns a gpucontext.DeviceProvider backed by the renderer's
// device, queue and adapter. Nil once the renderer was released.
func (r *Renderer) Provider() *Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	return NewProvider(r.device, r.queue, r.adapter, r.info, r.opts.TargetFormat)
}

func (p *Provider) Device() gpucontext.Device             { return p.device }
func (p *Provider) Queue() gpucontext.Queue               { return p.queue }
func (p *Provider) Adapter() gpucontext.Adapter           { return p.adapter }
func (p *Provider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// AdapterInfo satisfies gpucontext.DeviceProvider. The descriptive fields
// are reported by RenderAdapterInfo.
func (p *Provider) AdapterInfo() gpucontext.AdapterInfo {
	var info gpucontext.AdapterInfo
	return info
}

// RenderAdapterInfo returns the properties of the renderer's adapter.
func (p *Provider) RenderAdapterInfo() RenderAdapterInfo {
	return p.info
}

// WgpuDevice returns the native device behind the provider.
func (p *Provider) WgpuDevice() *wgpu.Device {
	return p.device.device
}
