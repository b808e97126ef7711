package app

import (
	"github.com/born-ml/gpushare/internal/handoff"
	"github.com/born-ml/gpushare/internal/render"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// RenderPlugin creates the host renderer during Build.
type RenderPlugin struct{}

func (RenderPlugin) Name() string { return "render" }

func (RenderPlugin) Build(a *App) error {
	r, err := render.New(a.opts.Render)
	if err != nil {
		return err
	}
	a.SetRenderer(r)
	a.AddCleanup(r.Release)
	return nil
}

func (RenderPlugin) Finish(*App) error { return nil }

// HandoffPlugin hands the renderer's GPU context to the tensor backend
// during Finish, after the renderer was built.
type HandoffPlugin struct{}

func (HandoffPlugin) Name() string { return "handoff" }

func (HandoffPlugin) Build(*App) error { return nil }

func (HandoffPlugin) Finish(a *App) error {
	dev, err := a.handoff.Run(a.world, a.opts.Runtime)
	if err != nil {
		return errors.WithMessage(err, "handoff")
	}
	// Registered after the renderer's cleanup, so it runs first.
	a.AddCleanup(func() {
		b := dev.Backend()
		if b == nil {
			return
		}
		if klog.V(1).Enabled() {
			klog.Infof("app: tensor memory %+v", b.MemoryStats())
		}
		b.Release()
	})
	if a.renderer != nil {
		if err := checkSharedDevice(a.renderer.Provider(), dev); err != nil {
			return err
		}
	}
	klog.V(1).Infof("app: tensor device %s ready", dev)
	return nil
}

// checkSharedDevice fails unless dev runs on the device p exposes.
func checkSharedDevice(p *render.Provider, dev handoff.Device) error {
	if p == nil {
		return errors.New("app: renderer released before the handoff finished")
	}
	if got, want := dev.Backend().WgpuDevice(), p.WgpuDevice(); got != want {
		return errors.Errorf("app: tensor device %p is not the renderer's device %p", got, want)
	}
	return nil
}
