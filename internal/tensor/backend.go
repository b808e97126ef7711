package tensor

// Backend defines the operations a compute backend provides to Tensor.
// Implementations panic on invalid input, as the element-wise operators of
// Tensor have no error result.
//
// Implementations:
//   - MockBackend: host reference implementation for tests
//   - webgpu.Backend: WebGPU compute on an owned or adopted device
type Backend interface {
	// Element-wise binary operations. Shapes must match.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	AddScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor

	// Sum reduces all elements to a scalar (0-D) tensor.
	Sum(x *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
