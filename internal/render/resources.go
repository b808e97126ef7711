package render

import (
	"fmt"

	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/go-webgpu/webgpu/wgpu"
)

// RenderInstance is the world resource holding the renderer's WebGPU instance.
type RenderInstance struct {
	*Wrapper[*wgpu.Instance]
}

// RenderAdapter is the world resource holding the adapter the device was
// created from.
type RenderAdapter struct {
	*Wrapper[*wgpu.Adapter]
}

// RenderQueue is the world resource holding the device's default queue.
type RenderQueue struct {
	*Wrapper[*wgpu.Queue]
}

// RenderDevice is the world resource holding the logical device. Unlike the
// other handles it is exposed directly.
type RenderDevice struct {
	device *wgpu.Device
}

// NewRenderDevice wraps d as a world resource.
func NewRenderDevice(d *wgpu.Device) RenderDevice {
	return RenderDevice{device: d}
}

// WgpuDevice returns the logical device.
func (d RenderDevice) WgpuDevice() *wgpu.Device {
	return d.device
}

// RenderAdapterInfo describes the adapter in the world.
type RenderAdapterInfo struct {
	Name        string
	Vendor      string
	Driver      string
	VendorID    uint32
	DeviceID    uint32
	AdapterType wgpu.AdapterType

	// Backend is the graphics API the adapter runs on.
	Backend wgpu.BackendType
}

// String returns a one-line description for logs.
func (i RenderAdapterInfo) String() string {
	return fmt.Sprintf("%s [%s] vendor=0x%04X device=0x%04X", i.Name, webgpu.BackendName(i.Backend), i.VendorID, i.DeviceID)
}
