package handoff

import (
	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/born-ml/gpushare/internal/render"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
)

// Handles are the four native handles and the backend identifier read
// from one render world.
type Handles struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Backend  wgpu.BackendType
}

// Unwrap returns the handle held by w without emptying w.
func Unwrap[T any](w *render.Wrapper[T]) (T, error) {
	if w == nil {
		var zero T
		return zero, ErrEmptyWrapper
	}
	v, ok := w.Clone().IntoInner()
	if !ok {
		return v, ErrEmptyWrapper
	}
	return v, nil
}

// resource fetches R from w or returns a *MissingResourceError naming it.
func resource[R any](w *render.World) (R, error) {
	r, ok := render.Resource[R](w)
	if !ok {
		return r, &MissingResourceError{Resource: render.ResourceName[R]()}
	}
	return r, nil
}

// unwrapResource unwraps a wrapper-backed resource, attributing an empty
// wrapper to the resource's name.
func unwrapResource[T any](name string, w *render.Wrapper[T]) (T, error) {
	v, err := Unwrap(w)
	if err != nil {
		return v, errors.WithMessagef(err, "resource %s", name)
	}
	return v, nil
}

// Extract reads the GPU context from w. Resources are looked up in the
// order adapter, device, instance, queue, adapter info; the first missing
// one is reported.
func Extract(w *render.World) (Handles, error) {
	var h Handles
	if w == nil {
		return h, &MissingResourceError{Resource: "World"}
	}

	adapter, err := resource[render.RenderAdapter](w)
	if err != nil {
		return h, err
	}
	if h.Adapter, err = unwrapResource("RenderAdapter", adapter.Wrapper); err != nil {
		return h, err
	}

	device, err := resource[render.RenderDevice](w)
	if err != nil {
		return h, err
	}
	h.Device = device.WgpuDevice()

	instance, err := resource[render.RenderInstance](w)
	if err != nil {
		return h, err
	}
	if h.Instance, err = unwrapResource("RenderInstance", instance.Wrapper); err != nil {
		return h, err
	}

	queue, err := resource[render.RenderQueue](w)
	if err != nil {
		return h, err
	}
	if h.Queue, err = unwrapResource("RenderQueue", queue.Wrapper); err != nil {
		return h, err
	}

	info, err := resource[render.RenderAdapterInfo](w)
	if err != nil {
		return h, err
	}
	h.Backend = info.Backend

	return h, nil
}

// Adapt converts extracted handles to the tensor backend's setup
// descriptor. It does not validate them; InitDevice does.
func Adapt(h Handles) webgpu.Setup {
	return webgpu.Setup{
		Instance: h.Instance,
		Adapter:  h.Adapter,
		Device:   h.Device,
		Queue:    h.Queue,
		Backend:  h.Backend,
	}
}
