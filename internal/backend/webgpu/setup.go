package webgpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
)

// Setup describes an already-initialized GPU context that InitDevice adopts
// instead of creating its own. All four handles must come from the same
// adapter/device creation call; nothing here can verify that, mixing them
// is undefined behaviour for wgpu-native.
type Setup struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue

	// Backend is the graphics API the adapter was created on.
	Backend wgpu.BackendType
}

// Validate reports the first nil handle in s.
func (s Setup) Validate() error {
	switch {
	case s.Instance == nil:
		return errors.Wrap(ErrInvalidSetup, "nil instance")
	case s.Adapter == nil:
		return errors.Wrap(ErrInvalidSetup, "nil adapter")
	case s.Device == nil:
		return errors.Wrap(ErrInvalidSetup, "nil device")
	case s.Queue == nil:
		return errors.Wrap(ErrInvalidSetup, "nil queue")
	}
	return nil
}

// String implements fmt.Stringer for logs; handles print as addresses.
func (s Setup) String() string {
	return fmt.Sprintf("Setup{instance=%p adapter=%p device=%p queue=%p backend=%s}",
		s.Instance, s.Adapter, s.Device, s.Queue, BackendName(s.Backend))
}

// BackendName converts a wgpu backend type to a display name.
func BackendName(bt wgpu.BackendType) string {
	switch bt {
	case wgpu.BackendTypeNull:
		return "Null"
	case wgpu.BackendTypeWebGPU:
		return "WebGPU"
	case wgpu.BackendTypeD3D11:
		return "D3D11"
	case wgpu.BackendTypeD3D12:
		return "D3D12"
	case wgpu.BackendTypeMetal:
		return "Metal"
	case wgpu.BackendTypeVulkan:
		return "Vulkan"
	case wgpu.BackendTypeOpenGL:
		return "OpenGL"
	case wgpu.BackendTypeOpenGLES:
		return "OpenGLES"
	default:
		return "Unknown"
	}
}
