package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a host-memory backend for testing.
// It implements all operations naively for correctness verification.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs element-wise addition.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	return m.elementWise("Add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction.
func (m *MockBackend) Sub(a, b *RawTensor) *RawTensor {
	return m.elementWise("Sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication.
func (m *MockBackend) Mul(a, b *RawTensor) *RawTensor {
	return m.elementWise("Mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division.
func (m *MockBackend) Div(a, b *RawTensor) *RawTensor {
	return m.elementWise("Div", a, b, func(x, y float64) float64 { return x / y })
}

// AddScalar adds scalar to every element.
func (m *MockBackend) AddScalar(x *RawTensor, scalar any) *RawTensor {
	s := scalarToFloat64(scalar)
	return m.unary(x, func(v float64) float64 { return v + s })
}

// MulScalar multiplies every element by scalar.
func (m *MockBackend) MulScalar(x *RawTensor, scalar any) *RawTensor {
	s := scalarToFloat64(scalar)
	return m.unary(x, func(v float64) float64 { return v * s })
}

// Sum reduces all elements to a scalar tensor.
func (m *MockBackend) Sum(x *RawTensor) *RawTensor {
	total := 0.0
	for _, v := range m.toFloat64Slice(x) {
		total += v
	}
	result, err := NewRaw(Shape{}, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}
	m.fromFloat64Slice([]float64{total}, result)
	return result
}

func (m *MockBackend) elementWise(op string, a, b *RawTensor, fn func(float64, float64) float64) *RawTensor {
	if err := checkSameShape(op, a.Shape(), b.Shape()); err != nil {
		panic(err)
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, a.DType(), b.DType()))
	}

	result, err := NewRaw(a.Shape(), a.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	aData := m.toFloat64Slice(a)
	bData := m.toFloat64Slice(b)
	out := make([]float64, len(aData))
	for i := range aData {
		out[i] = fn(aData[i], bData[i])
	}

	m.fromFloat64Slice(out, result)
	return result
}

func (m *MockBackend) unary(x *RawTensor, fn func(float64) float64) *RawTensor {
	result, err := NewRaw(x.Shape(), x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	src := m.toFloat64Slice(x)
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = fn(v)
	}

	m.fromFloat64Slice(out, result)
	return result
}

// Helper functions

func (m *MockBackend) toFloat64Slice(t *RawTensor) []float64 {
	dst := make([]float64, t.NumElements())
	switch t.DType() {
	case Float32:
		for i, v := range t.AsFloat32() {
			dst[i] = float64(v)
		}
	case Float64:
		copy(dst, t.AsFloat64())
	case Int32:
		for i, v := range t.AsInt32() {
			dst[i] = float64(v)
		}
	case Int64:
		for i, v := range t.AsInt64() {
			dst[i] = float64(v)
		}
	case Uint8:
		for i, v := range t.AsUint8() {
			dst[i] = float64(v)
		}
	default:
		panic(fmt.Sprintf("unsupported dtype: %s", t.DType()))
	}
	return dst
}

func (m *MockBackend) fromFloat64Slice(src []float64, t *RawTensor) {
	switch t.DType() {
	case Float32:
		dst := t.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case Float64:
		copy(t.AsFloat64(), src)
	case Int32:
		dst := t.AsInt32()
		for i, v := range src {
			dst[i] = int32(v)
		}
	case Int64:
		dst := t.AsInt64()
		for i, v := range src {
			dst[i] = int64(v)
		}
	case Uint8:
		dst := t.AsUint8()
		for i, v := range src {
			dst[i] = uint8(v)
		}
	}
}

// scalarToFloat64 converts a scalar operand passed through the Backend
// interface to float64.
func scalarToFloat64(scalar any) float64 {
	switch v := scalar.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint8:
		return float64(v)
	case int:
		return float64(v)
	default:
		panic(fmt.Sprintf("unsupported scalar type %T", scalar))
	}
}
