// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for GPU-accelerated tensor operations.
//
// A backend either owns its GPU context (New) or runs on one that a host
// renderer already created (InitDevice). An adopted context is never
// released by the backend.
//
// Example:
//
//	gpu, err := webgpu.InitDevice(webgpu.Setup{
//	    Instance: instance,
//	    Adapter:  adapter,
//	    Device:   device,
//	    Queue:    queue,
//	    Backend:  wgpu.BackendTypeVulkan,
//	}, webgpu.DefaultRuntimeOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	x := tensor.Ones[float32](tensor.Shape{2, 3}, gpu)
package webgpu

import (
	internalwebgpu "github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/born-ml/gpushare/tensor"
)

// Backend represents the WebGPU backend implementation for GPU-accelerated
// tensor operations.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Setup describes an existing GPU context for InitDevice.
type Setup = internalwebgpu.Setup

// RuntimeOptions tunes backend execution.
type RuntimeOptions = internalwebgpu.RuntimeOptions

// MemoryStrategy selects how the backend recycles GPU buffers.
type MemoryStrategy = internalwebgpu.MemoryStrategy

// Memory strategies.
const (
	MemoryPooled    = internalwebgpu.MemoryPooled
	MemoryExclusive = internalwebgpu.MemoryExclusive
)

// AdapterInfo describes the GPU adapter a Backend runs on.
type AdapterInfo = internalwebgpu.AdapterInfo

// MemoryStats represents GPU memory usage statistics.
type MemoryStats = internalwebgpu.MemoryStats

// Errors returned by New and InitDevice.
var (
	ErrNativeUnavailable = internalwebgpu.ErrNativeUnavailable
	ErrNoAdapter         = internalwebgpu.ErrNoAdapter
	ErrInvalidSetup      = internalwebgpu.ErrInvalidSetup
	ErrBackendMismatch   = internalwebgpu.ErrBackendMismatch
	ErrInvalidOptions    = internalwebgpu.ErrInvalidOptions
)

// DefaultRuntimeOptions returns options suitable for most callers.
func DefaultRuntimeOptions() RuntimeOptions {
	return internalwebgpu.DefaultRuntimeOptions()
}

// New creates a WebGPU backend with its own device.
//
// Call Release() when done to free GPU resources.
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
func New(opts RuntimeOptions) (*Backend, error) {
	return internalwebgpu.New(opts)
}

// InitDevice creates a WebGPU backend on the GPU context in setup.
func InitDevice(setup Setup, opts RuntimeOptions) (*Backend, error) {
	return internalwebgpu.InitDevice(setup, opts)
}

// IsAvailable checks if WebGPU is available on the current system.
//
// This function attempts to initialize a WebGPU adapter to verify
// that a compatible GPU and drivers are present.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
