package webgpu

import (
	"github.com/born-ml/gpushare/internal/tensor"
	"github.com/pkg/errors"
)

// Package errors for the WebGPU backend.
var (
	// ErrNativeUnavailable is returned when wgpu-native cannot be loaded or
	// panics while the backend talks to it.
	ErrNativeUnavailable = errors.New("webgpu: native library not available")

	// ErrNoAdapter is returned when no GPU adapter satisfies the request.
	ErrNoAdapter = errors.New("webgpu: no GPU adapter available")

	// ErrInvalidSetup is returned by InitDevice for an incomplete Setup.
	ErrInvalidSetup = errors.New("webgpu: invalid setup")

	// ErrBackendMismatch is returned by InitDevice when the adopted adapter
	// reports a different graphics backend than the Setup claims.
	ErrBackendMismatch = errors.New("webgpu: backend mismatch")

	// ErrInvalidOptions is returned for out-of-range RuntimeOptions.
	ErrInvalidOptions = errors.New("webgpu: invalid runtime options")

	// ErrReleased is returned when a released backend is used.
	ErrReleased = errors.New("webgpu: backend released")
)

func errDTypeMismatch(a, b tensor.DataType) error {
	return errors.Errorf("webgpu: dtype mismatch: %s vs %s", a, b)
}

func errUnsupportedDType(dt tensor.DataType) error {
	return errors.Errorf("webgpu: unsupported dtype %s (only float32 and int32)", dt)
}

func errShapeMismatch(a, b tensor.Shape) error {
	return errors.Errorf("webgpu: shape mismatch: %v vs %v", a, b)
}
