package tensor

import (
	"fmt"
	"strings"
)

// String returns the tensor header followed by its values nested by
// dimension:
//
//	Tensor[float32][2 3] on WebGPU
//	[[1, 1, 1],
//	 [1, 1, 1]]
func (t *Tensor[T, B]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor[%s]%v on %s\n", t.raw.DType(), []int(t.raw.Shape()), t.raw.Device())
	formatValues(&sb, t.Data(), t.Shape(), 0)
	return sb.String()
}

// formatValues writes data with shape as nested brackets. depth is the
// number of enclosing brackets, used to indent continuation rows.
func formatValues[T DType](sb *strings.Builder, data []T, shape Shape, depth int) {
	if len(shape) == 0 {
		fmt.Fprint(sb, data[0])
		return
	}

	sb.WriteByte('[')
	if len(shape) == 1 {
		for i, v := range data[:shape[0]] {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprint(sb, v)
		}
		sb.WriteByte(']')
		return
	}

	step := shape[1:].NumElements()
	for i := 0; i < shape[0]; i++ {
		if i > 0 {
			sb.WriteString(",\n")
			sb.WriteString(strings.Repeat(" ", depth+1))
		}
		formatValues(sb, data[i*step:(i+1)*step], shape[1:], depth+1)
	}
	sb.WriteByte(']')
}
