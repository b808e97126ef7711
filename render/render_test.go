package render_test

import (
	"testing"

	"github.com/born-ml/gpushare/render"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicWorld(t *testing.T) {
	w := render.NewWorld()
	device := new(wgpu.Device)
	render.Insert(w, render.NewRenderDevice(device))
	render.Insert(w, render.RenderQueue{Wrapper: render.NewWrapper(new(wgpu.Queue))})
	render.Insert(w, render.RenderAdapterInfo{Name: "placeholder", Backend: wgpu.BackendTypeVulkan})

	got, ok := render.Resource[render.RenderDevice](w)
	require.True(t, ok)
	assert.Same(t, device, got.WgpuDevice())
	assert.True(t, render.Has[render.RenderQueue](w))
	assert.False(t, render.Has[render.RenderInstance](w))

	_, ok = render.Remove[render.RenderQueue](w)
	assert.True(t, ok)
	assert.False(t, render.Has[render.RenderQueue](w))
	assert.True(t, render.EmptyWrapper[*wgpu.Adapter]().IsEmpty())
}

func TestPublicOptions(t *testing.T) {
	t.Setenv("WGPU_POWER_PREFERENCE", "low")
	opts, err := render.OptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, gputypes.PowerPreferenceLowPower, opts.PowerPreference)
	assert.Equal(t, gputypes.PowerPreferenceHighPerformance, render.DefaultOptions().PowerPreference)

	_, err = render.ParsePowerPreference("medium")
	assert.Error(t, err)
}

func TestPublicProvider(t *testing.T) {
	device := new(wgpu.Device)
	info := render.RenderAdapterInfo{Name: "placeholder"}
	p := render.NewProvider(device, new(wgpu.Queue), new(wgpu.Adapter), info, gputypes.TextureFormatBGRA8Unorm)
	assert.Same(t, device, p.WgpuDevice())
	assert.Equal(t, info, p.RenderAdapterInfo())
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, p.SurfaceFormat())
}
