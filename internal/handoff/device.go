package handoff

import (
	"fmt"
	"sync"

	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Device is the published tensor device. It is a small comparable value:
// copies are equal to the original, and it can be used as a map key.
type Device struct {
	backend *webgpu.Backend
}

// NewDevice wraps an initialized backend.
func NewDevice(b *webgpu.Backend) Device {
	return Device{backend: b}
}

// Backend returns the tensor backend, nil for the zero Device.
func (d Device) Backend() *webgpu.Backend {
	return d.backend
}

// IsZero reports whether d refers to no backend.
func (d Device) IsZero() bool {
	return d.backend == nil
}

func (d Device) String() string {
	if d.backend == nil {
		return "Device(none)"
	}
	return fmt.Sprintf("Device(%s @%p)", d.backend.Name(), d.backend)
}

// Slot holds the published Device. It is written once and then only read.
type Slot struct {
	mu     sync.RWMutex
	device Device
	set    bool
}

// Set publishes d. A second call leaves the first device in place and
// returns ErrAlreadyPublished.
func (s *Slot) Set(d Device) error {
	if d.IsZero() {
		return errors.New("handoff: cannot publish a zero Device")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return errors.Wrapf(ErrAlreadyPublished, "holding %s", s.device)
	}
	s.device, s.set = d, true
	return nil
}

// Get returns the published device or ErrNotPublished.
func (s *Slot) Get() (Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Device{}, ErrNotPublished
	}
	return s.device, nil
}

// MustGet is Get for callers that run strictly after publication.
// It panics if nothing was published.
func (s *Slot) MustGet() Device {
	d, err := s.Get()
	if err != nil {
		klog.Errorf("handoff: %v", err)
		panic(err)
	}
	return d
}

// Published reports whether a device was set.
func (s *Slot) Published() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// InitFunc constructs a tensor backend on an existing GPU context.
type InitFunc func(webgpu.Setup, webgpu.RuntimeOptions) (*webgpu.Backend, error)

// Publisher turns a setup descriptor into the published Device.
type Publisher struct {
	// Init defaults to webgpu.InitDevice.
	Init InitFunc

	// mu serializes construction, so the constructor runs at most once
	// per successful publication.
	mu   sync.Mutex
	slot Slot
}

// Publish constructs the backend and stores its Device in the publisher's
// slot. Construction is not attempted once a device was published.
func (p *Publisher) Publish(setup webgpu.Setup, opts webgpu.RuntimeOptions) (Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.slot.Published() {
		return Device{}, ErrAlreadyPublished
	}

	construct := p.Init
	if construct == nil {
		construct = webgpu.InitDevice
	}
	backend, err := construct(setup, opts)
	if err != nil {
		// Both sentinels stay matchable with errors.Is.
		return Device{}, fmt.Errorf("%w: %w", ErrDeviceConstruction, err)
	}
	if backend == nil {
		return Device{}, errors.Wrap(ErrDeviceConstruction, "constructor returned no backend")
	}

	d := NewDevice(backend)
	if err := p.slot.Set(d); err != nil {
		// Set directly on the slot by another writer.
		backend.Release()
		return Device{}, err
	}
	klog.V(1).Infof("handoff: published %s", d)
	return d, nil
}

// Slot returns the slot the publisher writes to.
func (p *Publisher) Slot() *Slot {
	return &p.slot
}
