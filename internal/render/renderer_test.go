package render

import (
	"testing"

	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("WGPU_FORCE_FALLBACK_ADAPTER", "1")
	t.Setenv("WGPU_POWER_PREFERENCE", "low")
	opts, err := OptionsFromEnv()
	require.NoError(t, err)
	assert.True(t, opts.ForceFallbackAdapter)
	assert.Equal(t, gputypes.PowerPreferenceLowPower, opts.PowerPreference)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, opts.TargetFormat)

	t.Setenv("WGPU_FORCE_FALLBACK_ADAPTER", "0")
	t.Setenv("WGPU_POWER_PREFERENCE", "turbo")
	opts, err = OptionsFromEnv()
	assert.ErrorContains(t, err, "WGPU_POWER_PREFERENCE")
	assert.False(t, opts.ForceFallbackAdapter)
}

func TestParsePowerPreference(t *testing.T) {
	tests := []struct {
		in      string
		want    gputypes.PowerPreference
		wantErr bool
	}{
		{"", gputypes.PowerPreferenceHighPerformance, false},
		{"HIGH", gputypes.PowerPreferenceHighPerformance, false},
		{"low", gputypes.PowerPreferenceLowPower, false},
		{"fast", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePowerPreference(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestProvider(t *testing.T) {
	info := RenderAdapterInfo{Name: "placeholder", Backend: wgpu.BackendTypeVulkan}
	r := &Renderer{
		opts:    DefaultOptions(),
		world:   NewWorld(),
		info:    info,
		adapter: new(wgpu.Adapter),
		device:  new(wgpu.Device),
		queue:   new(wgpu.Queue),
	}

	var p gpucontext.DeviceProvider = r.Provider()
	assert.NotNil(t, p.Device())
	assert.Equal(t, gpucontext.Queue(r.queue), p.Queue())
	assert.Equal(t, gpucontext.Adapter(r.adapter), p.Adapter())
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, p.SurfaceFormat())
	assert.Same(t, r.device, r.Provider().WgpuDevice())
	assert.Equal(t, info, r.Provider().RenderAdapterInfo())

	// The provider never tears down the renderer's device.
	shared, ok := p.Device().(*sharedDevice)
	require.True(t, ok)
	shared.Poll(true)
	shared.Destroy()
	assert.False(t, r.Released())

	r.released = true
	assert.Nil(t, r.Provider())
}

func TestNewPopulatesWorld(t *testing.T) {
	if !webgpu.IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	r, err := New(DefaultOptions())
	require.NoError(t, err)

	w := r.World()
	assert.True(t, Has[RenderInstance](w))
	assert.True(t, Has[RenderAdapter](w))
	assert.True(t, Has[RenderDevice](w))
	assert.True(t, Has[RenderQueue](w))
	info, ok := Resource[RenderAdapterInfo](w)
	require.True(t, ok)
	assert.Equal(t, r.AdapterInfo(), info)
	t.Logf("adapter: %s", info)

	device, _ := Resource[RenderDevice](w)
	assert.NotNil(t, device.WgpuDevice())

	r.Release()
	assert.True(t, r.Released())
	assert.Equal(t, 0, w.Len())
	r.Release()
}
