package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	tests := []struct {
		name     string
		shape    Shape
		elements int
		strides  []int
		valid    bool
	}{
		{"scalar", Shape{}, 1, []int{}, true},
		{"vector", Shape{4}, 4, []int{1}, true},
		{"matrix", Shape{2, 3}, 6, []int{3, 1}, true},
		{"3d", Shape{2, 3, 4}, 24, []int{12, 4, 1}, true},
		{"zero dim", Shape{2, 0}, 0, []int{0, 1}, false},
		{"negative dim", Shape{-1}, -1, []int{1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.elements, tt.shape.NumElements())
			assert.Equal(t, tt.strides, tt.shape.ComputeStrides())
			if tt.valid {
				assert.NoError(t, tt.shape.Validate())
			} else {
				assert.Error(t, tt.shape.Validate())
			}
		})
	}
}

func TestShapeCloneIsIndependent(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	c[0] = 7

	assert.True(t, Shape{2, 3}.Equal(s))
	assert.False(t, s.Equal(c))
	assert.False(t, s.Equal(Shape{2}))
}

func TestDataType(t *testing.T) {
	tests := []struct {
		dt   DataType
		size int
		name string
		wgsl string
	}{
		{Float32, 4, "float32", "f32"},
		{Float64, 8, "float64", ""},
		{Int32, 4, "int32", "i32"},
		{Int64, 8, "int64", ""},
		{Uint8, 1, "uint8", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.size, tt.dt.Size())
			assert.Equal(t, tt.name, tt.dt.String())
			wgsl, ok := tt.dt.WGSLType()
			assert.Equal(t, tt.wgsl, wgsl)
			assert.Equal(t, tt.wgsl != "", ok)
		})
	}
}

func TestOnes(t *testing.T) {
	backend := NewMockBackend()

	ones := Ones[float32](Shape{2, 3}, backend)

	assert.Equal(t, Shape{2, 3}, ones.Shape())
	assert.Equal(t, Float32, ones.DType())
	assert.Equal(t, CPU, ones.Device())
	require.Equal(t, 6, ones.NumElements())
	for _, v := range ones.Data() {
		assert.Equal(t, float32(1), v)
	}
}

func TestFromSlice(t *testing.T) {
	backend := NewMockBackend()

	x, err := FromSlice([]int32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, int32(6), x.At(1, 2))
	assert.Equal(t, int32(2), x.At(0, 1))

	_, err = FromSlice([]int32{1, 2}, Shape{2, 3}, backend)
	assert.Error(t, err)
}

func TestAtPanicsOutOfBounds(t *testing.T) {
	x := Zeros[float32](Shape{2, 2}, NewMockBackend())

	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) })
}

func TestNewPanicsOnDTypeMismatch(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Int32, CPU)
	require.NoError(t, err)

	assert.Panics(t, func() { New[float32](raw, NewMockBackend()) })
}

func TestCloneIsDeep(t *testing.T) {
	x := Ones[float32](Shape{3}, NewMockBackend())
	c := x.Clone()
	c.Data()[0] = 5

	assert.Equal(t, float32(1), x.Data()[0])
	assert.Equal(t, float32(5), c.Data()[0])
}

func TestRawFromBytesPadding(t *testing.T) {
	padded := make([]byte, 16) // 3 float32 padded to 16 bytes
	raw, err := NewRawFromBytes(padded, Shape{3}, Float32, WebGPU)
	require.NoError(t, err)
	assert.Equal(t, 12, raw.ByteSize())
	assert.Len(t, raw.Data(), 12)

	_, err = NewRawFromBytes(make([]byte, 4), Shape{3}, Float32, WebGPU)
	assert.Error(t, err)
}
