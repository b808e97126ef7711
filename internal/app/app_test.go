package app

import (
	"context"
	"sync"
	"testing"

	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/born-ml/gpushare/internal/consumer"
	"github.com/born-ml/gpushare/internal/handoff"
	"github.com/born-ml/gpushare/internal/render"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal records phase events from plugins and systems.
type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(e string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

type recordingPlugin struct {
	name     string
	j        *journal
	buildErr error
}

func (p recordingPlugin) Name() string { return p.name }

func (p recordingPlugin) Build(*App) error {
	p.j.add(p.name + ".build")
	return p.buildErr
}

func (p recordingPlugin) Finish(*App) error {
	p.j.add(p.name + ".finish")
	return nil
}

// fakeRenderPlugin installs a render world of placeholder handles.
type fakeRenderPlugin struct{}

func (fakeRenderPlugin) Name() string { return "fake-render" }

func (fakeRenderPlugin) Build(a *App) error {
	w := render.NewWorld()
	render.Insert(w, render.RenderInstance{Wrapper: render.NewWrapper(new(wgpu.Instance))})
	render.Insert(w, render.RenderAdapter{Wrapper: render.NewWrapper(new(wgpu.Adapter))})
	render.Insert(w, render.NewRenderDevice(new(wgpu.Device)))
	render.Insert(w, render.RenderQueue{Wrapper: render.NewWrapper(new(wgpu.Queue))})
	render.Insert(w, render.RenderAdapterInfo{Name: "fake", Backend: wgpu.BackendTypeVulkan})
	a.SetWorld(w)
	return nil
}

func (fakeRenderPlugin) Finish(*App) error { return nil }

func fakeOptions() Options {
	opts := DefaultOptions()
	opts.Publisher = &handoff.Publisher{
		Init: func(webgpu.Setup, webgpu.RuntimeOptions) (*webgpu.Backend, error) {
			return new(webgpu.Backend), nil
		},
	}
	return opts
}

func TestFinishIsABarrier(t *testing.T) {
	j := &journal{}
	a := New(fakeOptions()).
		AddPlugin(recordingPlugin{name: "a", j: j}).
		AddPlugin(fakeRenderPlugin{}).
		AddPlugin(HandoffPlugin{}).
		AddPlugin(recordingPlugin{name: "b", j: j}).
		AddStartup("s", func(context.Context, handoff.Device) error {
			j.add("startup")
			return nil
		})

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, []string{"a.build", "b.build", "a.finish", "b.finish", "startup"}, j.list())
	assert.Equal(t, handoff.StageConsumed, a.Handoff().Stage())
}

func TestStartupSystemsShareThePublishedDevice(t *testing.T) {
	a := New(fakeOptions()).AddPlugin(fakeRenderPlugin{}).AddPlugin(HandoffPlugin{})

	var (
		mu   sync.Mutex
		seen = map[handoff.Device]int{}
	)
	for _, name := range []string{"one", "two", "three"} {
		a.AddStartup(name, func(_ context.Context, dev handoff.Device) error {
			mu.Lock()
			defer mu.Unlock()
			seen[dev]++
			return nil
		})
	}
	require.NoError(t, a.Run(context.Background()))

	published := a.Handoff().Slot().MustGet()
	assert.Equal(t, map[handoff.Device]int{published: 3}, seen)
}

func TestStartupWithoutPublicationFails(t *testing.T) {
	called := false
	a := New(fakeOptions()).AddStartup("early", func(context.Context, handoff.Device) error {
		called = true
		return nil
	})

	err := a.Run(context.Background())
	assert.True(t, errors.Is(err, handoff.ErrNotPublished))
	assert.ErrorContains(t, err, "early")
	assert.False(t, called)
}

func TestHandoffWithoutRenderer(t *testing.T) {
	err := New(fakeOptions()).AddPlugin(HandoffPlugin{}).Run(context.Background())
	assert.True(t, errors.Is(err, handoff.ErrMissingResource))
	var missing *handoff.MissingResourceError
	require.True(t, errors.As(err, &missing))
}

func TestHandoffConstructionFailure(t *testing.T) {
	opts := DefaultOptions()
	opts.Publisher = &handoff.Publisher{
		Init: func(webgpu.Setup, webgpu.RuntimeOptions) (*webgpu.Backend, error) {
			return nil, webgpu.ErrNativeUnavailable
		},
	}
	err := New(opts).AddPlugin(fakeRenderPlugin{}).AddPlugin(HandoffPlugin{}).Run(context.Background())
	assert.True(t, errors.Is(err, handoff.ErrDeviceConstruction))
	assert.True(t, errors.Is(err, webgpu.ErrNativeUnavailable))
}

func TestBuildErrorStopsRun(t *testing.T) {
	j := &journal{}
	boom := errors.New("boom")
	err := New(fakeOptions()).
		AddPlugin(recordingPlugin{name: "bad", j: j, buildErr: boom}).
		AddPlugin(recordingPlugin{name: "next", j: j}).
		Run(context.Background())

	assert.True(t, errors.Is(err, boom))
	assert.ErrorContains(t, err, "plugin bad build")
	assert.Equal(t, []string{"bad.build"}, j.list())
}

func TestStartupErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	a := New(fakeOptions()).AddPlugin(fakeRenderPlugin{}).AddPlugin(HandoffPlugin{})
	a.AddStartup("fails", func(context.Context, handoff.Device) error { return boom })
	a.AddStartup("waits", func(ctx context.Context, _ handoff.Device) error {
		<-ctx.Done()
		return nil
	})

	err := a.Run(context.Background())
	assert.True(t, errors.Is(err, boom))
	assert.ErrorContains(t, err, "startup system fails")
}

func TestCleanupsRunInReverseOnce(t *testing.T) {
	j := &journal{}
	a := New(fakeOptions())
	a.AddCleanup(func() { j.add("first") })
	a.AddCleanup(func() { j.add("second") })

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, []string{"second", "first"}, j.list())
	assert.Error(t, a.Run(context.Background()))
	assert.Len(t, j.list(), 2)
}

func TestCheckSharedDevice(t *testing.T) {
	p := render.NewProvider(new(wgpu.Device), new(wgpu.Queue), new(wgpu.Adapter), render.RenderAdapterInfo{}, gputypes.TextureFormatBGRA8Unorm)

	err := checkSharedDevice(p, handoff.NewDevice(new(webgpu.Backend)))
	assert.ErrorContains(t, err, "is not the renderer's device")

	err = checkSharedDevice(nil, handoff.NewDevice(new(webgpu.Backend)))
	assert.ErrorContains(t, err, "renderer released")
}

func TestConsumersShareRendererDeviceOnGPU(t *testing.T) {
	if !webgpu.IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}

	a := New(DefaultOptions()).AddPlugin(RenderPlugin{}).AddPlugin(HandoffPlugin{})

	var (
		mu             sync.Mutex
		rendererDevice *wgpu.Device
		tensorDevices  []*wgpu.Device
		data           [][]float32
	)
	for _, name := range []string{"first", "second"} {
		a.AddStartup(name, func(ctx context.Context, dev handoff.Device) error {
			res, err := consumer.Run(ctx, dev)
			if err != nil {
				return err
			}
			rd, ok := render.Resource[render.RenderDevice](a.World())
			if !ok {
				return errors.New("render device missing from world")
			}
			mu.Lock()
			defer mu.Unlock()
			rendererDevice = rd.WgpuDevice()
			tensorDevices = append(tensorDevices, res.Device.Backend().WgpuDevice())
			data = append(data, res.Tensor.Data())
			return nil
		})
	}
	require.NoError(t, a.Run(context.Background()))

	require.NotNil(t, rendererDevice)
	require.Len(t, tensorDevices, 2)
	for i := range tensorDevices {
		assert.Same(t, rendererDevice, tensorDevices[i])
		assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, data[i])
	}
	assert.False(t, a.Handoff().Slot().MustGet().Backend().Owned())
}
