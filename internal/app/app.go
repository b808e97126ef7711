// Package app sequences host startup: every plugin's Build, then every
// plugin's Finish, then the startup systems. The published tensor device
// is handed to each startup system as an argument.
package app

import (
	"context"

	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/born-ml/gpushare/internal/handoff"
	"github.com/born-ml/gpushare/internal/render"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Plugin contributes setup to an App.
type Plugin interface {
	Name() string
	// Build runs before any plugin's Finish.
	Build(a *App) error
	// Finish runs after every plugin's Build and before startup systems.
	Finish(a *App) error
}

// StartupFunc is a system run once after all plugins finished.
type StartupFunc func(ctx context.Context, dev handoff.Device) error

type startup struct {
	name string
	fn   StartupFunc
}

// Options configures an App.
type Options struct {
	Render  render.Options
	Runtime webgpu.RuntimeOptions

	// Publisher overrides the handoff's device publisher.
	Publisher *handoff.Publisher
}

// DefaultOptions returns the render and runtime defaults.
func DefaultOptions() Options {
	return Options{
		Render:  render.DefaultOptions(),
		Runtime: webgpu.DefaultRuntimeOptions(),
	}
}

// App holds the plugins, startup systems and shared state of one run.
type App struct {
	opts     Options
	plugins  []Plugin
	startups []startup
	cleanups []func()

	world    *render.World
	renderer *render.Renderer
	handoff  *handoff.Handoff
	ran      bool
}

// New returns an empty App.
func New(opts Options) *App {
	return &App{opts: opts, handoff: handoff.New(opts.Publisher)}
}

// Options returns the options the App was created with.
func (a *App) Options() Options { return a.opts }

// AddPlugin appends p; plugins build and finish in insertion order.
func (a *App) AddPlugin(p Plugin) *App {
	a.plugins = append(a.plugins, p)
	return a
}

// AddStartup registers a startup system.
func (a *App) AddStartup(name string, fn StartupFunc) *App {
	a.startups = append(a.startups, startup{name: name, fn: fn})
	return a
}

// AddCleanup registers fn to run when Run returns. Cleanups run in
// reverse order of registration.
func (a *App) AddCleanup(fn func()) {
	a.cleanups = append(a.cleanups, fn)
}

// World returns the render world, nil before a renderer was set.
func (a *App) World() *render.World { return a.world }

// SetWorld installs the render world used by the handoff.
func (a *App) SetWorld(w *render.World) { a.world = w }

// Renderer returns the host renderer, nil if none was created.
func (a *App) Renderer() *render.Renderer { return a.renderer }

// SetRenderer installs r and its world.
func (a *App) SetRenderer(r *render.Renderer) {
	a.renderer = r
	a.world = r.World()
}

// Handoff returns the App's GPU context handoff.
func (a *App) Handoff() *handoff.Handoff { return a.handoff }

// Run executes the startup sequence. It returns the first error of any
// phase; startup systems run concurrently and share a context canceled on
// the first failure.
func (a *App) Run(ctx context.Context) error {
	if a.ran {
		return errors.New("app: Run called twice")
	}
	a.ran = true
	defer a.cleanup()

	for _, p := range a.plugins {
		klog.V(1).Infof("app: build %s", p.Name())
		if err := p.Build(a); err != nil {
			return errors.WithMessagef(err, "app: plugin %s build", p.Name())
		}
	}
	// Finish of every plugin completes before any startup system starts.
	for _, p := range a.plugins {
		klog.V(1).Infof("app: finish %s", p.Name())
		if err := p.Finish(a); err != nil {
			return errors.WithMessagef(err, "app: plugin %s finish", p.Name())
		}
	}

	if len(a.startups) == 0 {
		return nil
	}
	dev, err := a.handoff.Acquire()
	if err != nil {
		return errors.WithMessagef(err, "app: startup system %s", a.startups[0].name)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range a.startups {
		g.Go(func() error {
			klog.V(1).Infof("app: startup %s on %s", s.name, dev)
			if err := s.fn(gctx, dev); err != nil {
				return errors.WithMessagef(err, "app: startup system %s", s.name)
			}
			return nil
		})
	}
	return g.Wait()
}

func (a *App) cleanup() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}
