// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package render provides the host renderer whose GPU context the tensor
// backend adopts.
//
// The renderer creates the instance, adapter, device and queue once and
// publishes them as resources of a World. The handoff package reads them
// from there.
//
// Example:
//
//	r, err := render.New(render.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Release()
//
//	dev, err := handoff.New(nil).Run(r.World(), webgpu.DefaultRuntimeOptions())
package render

import (
	"github.com/born-ml/gpushare/internal/render"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

type (
	// Renderer owns the host's instance, adapter, device and queue.
	Renderer = render.Renderer
	// Options configures the headless GPU setup of a Renderer.
	Options = render.Options
	// World is the typed resource store the renderer publishes into.
	World = render.World
	// Provider exposes a renderer's GPU context as a gpucontext.DeviceProvider.
	Provider = render.Provider

	// RenderInstance holds the renderer's WebGPU instance.
	RenderInstance = render.RenderInstance
	// RenderAdapter holds the adapter the device was created from.
	RenderAdapter = render.RenderAdapter
	// RenderDevice holds the logical device.
	RenderDevice = render.RenderDevice
	// RenderQueue holds the device's queue.
	RenderQueue = render.RenderQueue
	// RenderAdapterInfo describes the adapter.
	RenderAdapterInfo = render.RenderAdapterInfo
)

// Wrapper guards a native GPU handle shared between goroutines.
type Wrapper[T any] = render.Wrapper[T]

// Errors returned by New.
var (
	ErrLibraryNotFound = render.ErrLibraryNotFound
	ErrNoAdapter       = render.ErrNoAdapter
)

// New initializes a headless GPU context and publishes it into the
// renderer's world.
func New(opts Options) (*Renderer, error) {
	return render.New(opts)
}

// DefaultOptions prefers a discrete GPU.
func DefaultOptions() Options {
	return render.DefaultOptions()
}

// OptionsFromEnv returns DefaultOptions overridden by
// WGPU_FORCE_FALLBACK_ADAPTER and WGPU_POWER_PREFERENCE.
func OptionsFromEnv() (Options, error) {
	return render.OptionsFromEnv()
}

// ParsePowerPreference parses "high" or "low".
func ParsePowerPreference(s string) (gputypes.PowerPreference, error) {
	return render.ParsePowerPreference(s)
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return render.NewWorld()
}

// Insert stores v in w, replacing any resource of the same type.
func Insert[T any](w *World, v T) {
	render.Insert(w, v)
}

// Resource returns the resource of type T in w.
func Resource[T any](w *World) (T, bool) {
	return render.Resource[T](w)
}

// Has reports whether w holds a resource of type T.
func Has[T any](w *World) bool {
	return render.Has[T](w)
}

// Remove deletes the resource of type T from w and returns it.
func Remove[T any](w *World) (T, bool) {
	return render.Remove[T](w)
}

// NewWrapper returns a Wrapper holding v.
func NewWrapper[T any](v T) *Wrapper[T] {
	return render.NewWrapper(v)
}

// EmptyWrapper returns a Wrapper holding nothing.
func EmptyWrapper[T any]() *Wrapper[T] {
	return render.EmptyWrapper[T]()
}

// NewRenderDevice wraps d as a world resource.
func NewRenderDevice(d *wgpu.Device) RenderDevice {
	return render.NewRenderDevice(d)
}

// NewProvider returns a Provider over handles the caller keeps owning.
func NewProvider(device *wgpu.Device, queue *wgpu.Queue, adapter *wgpu.Adapter, info RenderAdapterInfo, format gputypes.TextureFormat) *Provider {
	return render.NewProvider(device, queue, adapter, info, format)
}
