package render

import (
	"testing"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldTypedResources(t *testing.T) {
	w := NewWorld()
	assert.False(t, Has[RenderDevice](w))
	_, ok := Resource[RenderDevice](w)
	assert.False(t, ok)

	device := new(wgpu.Device)
	Insert(w, NewRenderDevice(device))
	Insert(w, RenderAdapterInfo{Name: "gpu", Backend: wgpu.BackendTypeMetal})

	got, ok := Resource[RenderDevice](w)
	require.True(t, ok)
	assert.Same(t, device, got.WgpuDevice())

	info, ok := Resource[RenderAdapterInfo](w)
	require.True(t, ok)
	assert.Equal(t, wgpu.BackendTypeMetal, info.Backend)
	assert.Equal(t, 2, w.Len())

	// Wrapper-based resources are distinct types even though they share a
	// generic shape.
	Insert(w, RenderQueue{NewWrapper(new(wgpu.Queue))})
	assert.False(t, Has[RenderAdapter](w))
	assert.True(t, Has[RenderQueue](w))

	Insert(w, RenderAdapterInfo{Name: "replaced"})
	info, _ = Resource[RenderAdapterInfo](w)
	assert.Equal(t, "replaced", info.Name)
	assert.Equal(t, 3, w.Len())

	removed, ok := Remove[RenderDevice](w)
	require.True(t, ok)
	assert.Same(t, device, removed.WgpuDevice())
	assert.False(t, Has[RenderDevice](w))
	_, ok = Remove[RenderDevice](w)
	assert.False(t, ok)
}

func TestResourceName(t *testing.T) {
	assert.Equal(t, "RenderAdapter", ResourceName[RenderAdapter]())
	assert.Equal(t, "RenderAdapterInfo", ResourceName[RenderAdapterInfo]())
}

func TestRenderAdapterInfoString(t *testing.T) {
	info := RenderAdapterInfo{Name: "llvmpipe", VendorID: 0x10005, DeviceID: 0, Backend: wgpu.BackendTypeVulkan}
	assert.Equal(t, "llvmpipe [Vulkan] vendor=0x10005 device=0x0000", info.String())
}
