// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/gpushare/internal/tensor"

// Backend defines the interface that compute backends implement.
//
// Implementations:
//   - backend/webgpu: WebGPU compute, on its own device or one adopted
//     from a host renderer
//   - NewMockBackend: host reference implementation
type Backend = tensor.Backend
