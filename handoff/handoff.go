// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package handoff moves a host renderer's GPU context into the tensor
// backend once and publishes the resulting device.
//
// Example:
//
//	r, err := render.New(render.DefaultOptions())
//	if err != nil {
//	    klog.Exitf("render: %v", err)
//	}
//	defer r.Release()
//
//	h := handoff.New(nil)
//	dev, err := h.Run(r.World(), webgpu.DefaultRuntimeOptions())
//	if err != nil {
//	    klog.Exitf("handoff: %v", err)
//	}
//	x := tensor.Ones[float32](tensor.Shape{2, 3}, dev.Backend())
package handoff

import (
	"github.com/born-ml/gpushare/backend/webgpu"
	"github.com/born-ml/gpushare/internal/handoff"
	"github.com/born-ml/gpushare/render"
)

type (
	// Handoff drives one GPU context handoff.
	Handoff = handoff.Handoff
	// Stage is the progress of a Handoff.
	Stage = handoff.Stage
	// Device is the published tensor device.
	Device = handoff.Device
	// Handles are the native handles read from a render world.
	Handles = handoff.Handles
	// Publisher constructs and publishes the tensor device.
	Publisher = handoff.Publisher
	// InitFunc constructs a tensor backend on an existing GPU context.
	InitFunc = handoff.InitFunc
	// Slot holds the published Device.
	Slot = handoff.Slot
	// MissingResourceError names a render resource the handoff could not find.
	MissingResourceError = handoff.MissingResourceError
)

// Stages.
const (
	StageUninitialized = handoff.StageUninitialized
	StageExtracted     = handoff.StageExtracted
	StageAdapted       = handoff.StageAdapted
	StagePublished     = handoff.StagePublished
	StageConsumed      = handoff.StageConsumed
)

// Errors.
var (
	ErrMissingResource    = handoff.ErrMissingResource
	ErrEmptyWrapper       = handoff.ErrEmptyWrapper
	ErrDeviceConstruction = handoff.ErrDeviceConstruction
	ErrNotPublished       = handoff.ErrNotPublished
	ErrAlreadyPublished   = handoff.ErrAlreadyPublished
	ErrOutOfOrder         = handoff.ErrOutOfOrder
)

// New returns a Handoff publishing through p; nil selects the default
// WebGPU publisher.
func New(p *Publisher) *Handoff {
	return handoff.New(p)
}

// Extract reads the GPU context from a render world.
func Extract(w *render.World) (Handles, error) {
	return handoff.Extract(w)
}

// Adapt converts extracted handles to a backend setup descriptor.
func Adapt(h Handles) webgpu.Setup {
	return handoff.Adapt(h)
}

// Unwrap returns the handle held by w, or ErrEmptyWrapper.
func Unwrap[T any](w *render.Wrapper[T]) (T, error) {
	return handoff.Unwrap(w)
}
