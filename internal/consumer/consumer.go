// Package consumer is the unit of work that runs on the published tensor
// device after the handoff.
package consumer

import (
	"context"
	"fmt"

	"github.com/born-ml/gpushare/internal/backend/webgpu"
	"github.com/born-ml/gpushare/internal/handoff"
	"github.com/born-ml/gpushare/internal/tensor"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// OnesShape is the shape of the tensor every consumer builds.
var OnesShape = tensor.Shape{2, 3}

// tolerance bounds the distance of a computed element from 1.
const tolerance = 1e-6

// Ones builds the fixed [2, 3] tensor of ones on b.
func Ones[B tensor.Backend](b B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](OnesShape, b)
}

// Result is what Run computed.
type Result struct {
	Device handoff.Device
	Tensor *tensor.Tensor[float32, *webgpu.Backend]
}

// Run builds ones on dev's backend, multiplies them by one on the GPU so
// the shared device executes real work, logs the tensor and verifies it.
// Failures raised inside the tensor backend are returned as errors.
func Run(ctx context.Context, dev handoff.Device) (res Result, err error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if dev.IsZero() {
		return Result{}, handoff.ErrNotPublished
	}
	// Copies of a Device share its backend.
	local := dev

	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = errors.Errorf("consumer: tensor backend failed: %v", r)
		}
	}()

	ones := Ones(local.Backend())
	out := ones.MulScalar(1)
	klog.Info(Describe(out))

	if err := VerifyOnes(out.Data()); err != nil {
		return Result{}, err
	}
	return Result{Device: local, Tensor: out}, nil
}

// VerifyOnes checks that data holds exactly the elements of a ones tensor
// of OnesShape, within tolerance.
func VerifyOnes(data []float32) error {
	want := OnesShape.NumElements()
	if len(data) != want {
		return errors.Errorf("consumer: got %d elements, want %d", len(data), want)
	}
	for i, v := range data {
		if math32.IsNaN(v) || math32.Abs(v-1) > tolerance {
			return errors.Errorf("consumer: element %d = %v, want 1", i, v)
		}
	}
	return nil
}

// Describe returns the log line Run prints for t.
func Describe[B tensor.Backend](t *tensor.Tensor[float32, B]) string {
	return fmt.Sprintf("consumer: %s", t)
}
