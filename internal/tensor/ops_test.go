package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementWiseOps(t *testing.T) {
	backend := NewMockBackend()
	a, err := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)
	require.NoError(t, err)
	b, err := FromSlice([]float32{4, 3, 2, 1}, Shape{2, 2}, backend)
	require.NoError(t, err)

	tests := []struct {
		name string
		got  *Tensor[float32, *MockBackend]
		want []float32
	}{
		{"add", a.Add(b), []float32{5, 5, 5, 5}},
		{"sub", a.Sub(b), []float32{-3, -1, 1, 3}},
		{"mul", a.Mul(b), []float32{4, 6, 6, 4}},
		{"div", a.Div(b), []float32{0.25, 2.0 / 3.0, 1.5, 4}},
		{"add scalar", a.AddScalar(10), []float32{11, 12, 13, 14}},
		{"mul scalar", a.MulScalar(2), []float32{2, 4, 6, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Shape{2, 2}, tt.got.Shape())
			assert.InDeltaSlice(t, tt.want, tt.got.Data(), 1e-6)
		})
	}
}

func TestSum(t *testing.T) {
	ones := Ones[float32](Shape{2, 3}, NewMockBackend())

	sum := ones.Sum()

	assert.Empty(t, sum.Shape())
	assert.Equal(t, float32(6), sum.Item())
}

func TestShapeMismatchPanics(t *testing.T) {
	backend := NewMockBackend()
	a := Ones[float32](Shape{2, 3}, backend)
	b := Ones[float32](Shape{3, 2}, backend)

	assert.Panics(t, func() { a.Add(b) })
}

func TestString(t *testing.T) {
	backend := NewMockBackend()

	tests := []struct {
		name string
		t    *Tensor[float32, *MockBackend]
		want string
	}{
		{
			name: "matrix of ones",
			t:    Ones[float32](Shape{2, 3}, backend),
			want: "Tensor[float32][2 3] on CPU\n[[1, 1, 1],\n [1, 1, 1]]",
		},
		{
			name: "vector",
			t:    Full[float32](Shape{3}, 0.5, backend),
			want: "Tensor[float32][3] on CPU\n[0.5, 0.5, 0.5]",
		},
		{
			name: "scalar",
			t:    Ones[float32](Shape{2}, backend).Sum(),
			want: "Tensor[float32][] on CPU\n2",
		},
		{
			name: "rank 3",
			t:    Zeros[float32](Shape{2, 1, 2}, backend),
			want: "Tensor[float32][2 1 2] on CPU\n[[[0, 0]],\n [[0, 0]]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.String())
		})
	}
}
