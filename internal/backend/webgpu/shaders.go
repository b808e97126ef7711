package webgpu

import (
	"strings"

	"github.com/pkg/errors"
)

// workgroupSize is the number of invocations per workgroup in every
// kernel below; dispatch sizes are derived from it.
const workgroupSize = 256

// binaryShaderTemplate computes result = a OP b element-wise.
// {{T}} is the WGSL element type and {{OP}} the operator.
const binaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> a: array<{{T}}>;
@group(0) @binding(1) var<storage, read> b: array<{{T}}>;
@group(0) @binding(2) var<storage, read_write> result: array<{{T}}>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = a[idx] {{OP}} b[idx];
    }
}
`

// scalarShaderTemplate computes result = input OP scalar element-wise.
// The scalar is passed through the uniform block next to the size.
const scalarShaderTemplate = `
@group(0) @binding(0) var<storage, read> input: array<{{T}}>;
@group(0) @binding(1) var<storage, read_write> result: array<{{T}}>;

struct Params {
    size: u32,
    scalar: {{T}},
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = input[idx] {{OP}} params.scalar;
    }
}
`

// binaryOps maps op names to WGSL operators.
var binaryOps = map[string]string{
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
}

// renderShader expands a template for op on element type wgslType.
// The returned name is the cache key for the shader and its pipeline.
func renderShader(template, kind, op, wgslType string) (name, code string, err error) {
	symbol, ok := binaryOps[op]
	if !ok {
		return "", "", errors.Errorf("webgpu: unknown op %q", op)
	}
	code = strings.NewReplacer("{{T}}", wgslType, "{{OP}}", symbol).Replace(template)
	return kind + "_" + op + "_" + wgslType, code, nil
}
