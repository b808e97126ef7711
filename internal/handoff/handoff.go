// Package handoff moves the host renderer's GPU context into the tensor
// backend exactly once and publishes the resulting tensor device.
//
// The sequence is Extract (read handles from the render world), Adapt
// (build the backend's setup descriptor) and Publish (construct the
// backend and store its Device). Handoff runs these steps in order and
// rejects anything else.
package handoff

import (
	"sync"

	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/born-ml/gpushare/internal/render"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Stage is the progress of a Handoff.
type Stage int

const (
	StageUninitialized Stage = iota
	StageExtracted
	StageAdapted
	StagePublished
	StageConsumed
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "Uninitialized"
	case StageExtracted:
		return "Extracted"
	case StageAdapted:
		return "Adapted"
	case StagePublished:
		return "Published"
	case StageConsumed:
		return "Consumed"
	default:
		return "Unknown"
	}
}

// Handoff drives one GPU context handoff.
type Handoff struct {
	mu        sync.Mutex
	stage     Stage
	publisher *Publisher
}

// New returns a Handoff publishing through p. A nil p uses a default
// Publisher backed by webgpu.InitDevice.
func New(p *Publisher) *Handoff {
	if p == nil {
		p = &Publisher{}
	}
	return &Handoff{publisher: p}
}

// Stage returns the current stage.
func (h *Handoff) Stage() Stage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stage
}

// Slot returns the slot the device is published to.
func (h *Handoff) Slot() *Slot {
	return h.publisher.Slot()
}

func (h *Handoff) expect(op string, want Stage) error {
	if h.stage != want {
		return errors.Wrapf(ErrOutOfOrder, "%s requires stage %s, at %s", op, want, h.stage)
	}
	return nil
}

// BeginHandoff extracts the GPU context from w and adapts it. It must be
// the first call on h.
func (h *Handoff) BeginHandoff(w *render.World) (webgpu.Setup, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.expect("BeginHandoff", StageUninitialized); err != nil {
		return webgpu.Setup{}, err
	}

	handles, err := Extract(w)
	if err != nil {
		return webgpu.Setup{}, err
	}
	h.stage = StageExtracted
	klog.V(1).Infof("handoff: extracted device %p on backend %s", handles.Device, webgpu.BackendName(handles.Backend))

	setup := Adapt(handles)
	h.stage = StageAdapted
	return setup, nil
}

// Publish constructs the tensor device from setup and publishes it.
// BeginHandoff must have succeeded; a failed Publish may be retried.
func (h *Handoff) Publish(setup webgpu.Setup, opts webgpu.RuntimeOptions) (Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stage >= StagePublished {
		return Device{}, ErrAlreadyPublished
	}
	if err := h.expect("Publish", StageAdapted); err != nil {
		return Device{}, err
	}

	d, err := h.publisher.Publish(setup, opts)
	if err != nil {
		return Device{}, err
	}
	h.stage = StagePublished
	return d, nil
}

// Acquire returns the published device for a consumer. It may be called
// any number of times after Publish.
func (h *Handoff) Acquire() (Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stage < StagePublished {
		return Device{}, errors.Wrapf(ErrNotPublished, "handoff at stage %s", h.stage)
	}
	d, err := h.publisher.Slot().Get()
	if err != nil {
		return Device{}, err
	}
	h.stage = StageConsumed
	return d, nil
}

// Run performs BeginHandoff and Publish on w.
func (h *Handoff) Run(w *render.World, opts webgpu.RuntimeOptions) (Device, error) {
	setup, err := h.BeginHandoff(w)
	if err != nil {
		return Device{}, err
	}
	return h.Publish(setup, opts)
}
