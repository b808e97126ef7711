package webgpu

import (
	"github.com/born-ml/gpushare/internal/tensor"
)

// Add performs element-wise addition on GPU.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runBinaryOp("add", a, other)
	if err != nil {
		panic("webgpu: Add: " + err.Error())
	}
	return result
}

// Sub performs element-wise subtraction on GPU.
func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runBinaryOp("sub", a, other)
	if err != nil {
		panic("webgpu: Sub: " + err.Error())
	}
	return result
}

// Mul performs element-wise multiplication on GPU.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runBinaryOp("mul", a, other)
	if err != nil {
		panic("webgpu: Mul: " + err.Error())
	}
	return result
}

// Div performs element-wise division on GPU.
func (b *Backend) Div(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runBinaryOp("div", a, other)
	if err != nil {
		panic("webgpu: Div: " + err.Error())
	}
	return result
}

// AddScalar adds a scalar to every element on GPU.
func (b *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := b.runScalarOp("add", x, scalar)
	if err != nil {
		panic("webgpu: AddScalar: " + err.Error())
	}
	return result
}

// MulScalar multiplies every element by a scalar on GPU.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := b.runScalarOp("mul", x, scalar)
	if err != nil {
		panic("webgpu: MulScalar: " + err.Error())
	}
	return result
}

// Sum reduces all elements to a 0-D tensor.
// The reduction runs on the host; inputs are already host-resident.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	if err := b.checkUsable(); err != nil {
		panic("webgpu: Sum: " + err.Error())
	}
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), tensor.WebGPU)
	if err != nil {
		panic("webgpu: Sum: " + err.Error())
	}
	switch x.DType() {
	case tensor.Float32:
		var s float32
		for _, v := range x.AsFloat32() {
			s += v
		}
		result.AsFloat32()[0] = s
	case tensor.Float64:
		var s float64
		for _, v := range x.AsFloat64() {
			s += v
		}
		result.AsFloat64()[0] = s
	case tensor.Int32:
		var s int32
		for _, v := range x.AsInt32() {
			s += v
		}
		result.AsInt32()[0] = s
	case tensor.Int64:
		var s int64
		for _, v := range x.AsInt64() {
			s += v
		}
		result.AsInt64()[0] = s
	default:
		panic("webgpu: Sum: " + errUnsupportedDType(x.DType()).Error())
	}
	return result
}
