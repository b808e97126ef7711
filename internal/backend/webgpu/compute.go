package webgpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/born-ml/gpushare/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	"github.com/pkg/errors"
)

const (
	inputUsage   = gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	resultUsage  = gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	stagingUsage = gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
	uniformUsage = gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst

	// paramsSize is the uniform block size of every kernel, padded to 16 bytes.
	paramsSize = 16
)

// pipeline returns the cached compute pipeline for name, compiling code
// on a miss. Evicted pipelines are released by the cache.
func (b *Backend) pipeline(name, code string) (*wgpu.ComputePipeline, error) {
	if c, ok := b.pipelines.Get(name); ok {
		return c.pipeline, nil
	}

	shader := b.device.CreateShaderModuleWGSL(code)
	if shader == nil {
		return nil, errors.Errorf("webgpu: failed to compile shader %s", name)
	}
	// Create compute pipeline with auto layout (nil layout)
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")
	if pipeline == nil {
		shader.Release()
		return nil, errors.Errorf("webgpu: failed to create pipeline %s", name)
	}

	c := &compiled{shader: shader, pipeline: pipeline}
	if prev, found, _ := b.pipelines.PeekOrAdd(name, c); found {
		// Lost a race with another goroutine compiling the same kernel.
		c.release()
		return prev.pipeline, nil
	}
	return pipeline, nil
}

// createBuffer creates a GPU buffer and uploads initial data.
func (b *Backend) createBuffer(data []byte, usage gputypes.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	// Create buffer with MappedAtCreation for initial data upload
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	b.trackBufferAllocation(size)
	return buffer
}

// createUniformBuffer creates a uniform buffer with 16-byte alignment.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	aligned := make([]byte, (len(data)+15)&^15)
	copy(aligned, data)
	return b.createBuffer(aligned, uniformUsage)
}

// releaseBuffer releases a buffer created by createBuffer.
func (b *Backend) releaseBuffer(buffer *wgpu.Buffer, size uint64) {
	buffer.Release()
	b.trackBufferRelease(size)
}

func (b *Backend) acquireBuffer(size uint64, usage gputypes.BufferUsage) *wgpu.Buffer {
	b.trackBufferAllocation(size)
	return b.bufferPool.Acquire(size, usage)
}

func (b *Backend) recycleBuffer(buffer *wgpu.Buffer, size uint64, usage gputypes.BufferUsage) {
	b.bufferPool.Release(buffer, size, usage)
	b.trackBufferRelease(size)
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Pending commands are flushed first so the read observes them.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	// Storage buffers can't be mapped directly.
	staging := b.acquireBuffer(size, stagingUsage)
	defer b.recycleBuffer(staging, size, stagingUsage)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, staging, 0, size)
	b.queueCommand(encoder.Finish(nil))
	b.FlushCommands()

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, errors.Wrap(err, "webgpu: failed to map staging buffer")
	}

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)
	staging.Unmap()

	return result, nil
}

// dispatch records one compute pass running pipeline over numElements
// invocations and queues it for submission.
func (b *Backend) dispatch(pipeline *wgpu.ComputePipeline, entries []wgpu.BindGroupEntry, numElements int) {
	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	// Calculate workgroup count: ceil(numElements / workgroupSize)
	//nolint:gosec // G115: Safe conversion, workgroup count is non-negative
	workgroups := uint32((numElements + workgroupSize - 1) / workgroupSize)
	computePass.DispatchWorkgroups(workgroups, 1, 1)
	computePass.End()

	b.queueCommand(encoder.Finish(nil))
}

// kernelType returns the WGSL element type for dt.
func kernelType(dt tensor.DataType) (string, error) {
	wgslType, ok := dt.WGSLType()
	if !ok {
		return "", errUnsupportedDType(dt)
	}
	return wgslType, nil
}

// runBinaryOp executes a binary element-wise operation (add, sub, mul, div) on GPU.
func (b *Backend) runBinaryOp(op string, a, other *tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := b.checkUsable(); err != nil {
		return nil, err
	}
	if a.DType() != other.DType() {
		return nil, errDTypeMismatch(a.DType(), other.DType())
	}
	if !a.Shape().Equal(other.Shape()) {
		return nil, errShapeMismatch(a.Shape(), other.Shape())
	}
	wgslType, err := kernelType(a.DType())
	if err != nil {
		return nil, err
	}

	name, code, err := renderShader(binaryShaderTemplate, "binary", op, wgslType)
	if err != nil {
		return nil, err
	}
	pipeline, err := b.pipeline(name, code)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G115: Safe conversion, ByteSize() returns non-negative int
	size := uint64(a.ByteSize())
	bufferA := b.createBuffer(a.Data()[:size], inputUsage)
	defer b.releaseBuffer(bufferA, size)
	bufferOther := b.createBuffer(other.Data()[:size], inputUsage)
	defer b.releaseBuffer(bufferOther, size)
	bufferResult := b.acquireBuffer(size, resultUsage)
	defer b.recycleBuffer(bufferResult, size, resultUsage)

	params := make([]byte, paramsSize)
	//nolint:gosec // G115: Safe conversion, NumElements() returns non-negative int
	binary.LittleEndian.PutUint32(params[0:4], uint32(a.NumElements()))
	bufferParams := b.createUniformBuffer(params)
	defer b.releaseBuffer(bufferParams, paramsSize)

	b.dispatch(pipeline, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferA, 0, size),
		wgpu.BufferBindingEntry(1, bufferOther, 0, size),
		wgpu.BufferBindingEntry(2, bufferResult, 0, size),
		wgpu.BufferBindingEntry(3, bufferParams, 0, paramsSize),
	}, a.NumElements())

	data, err := b.readBuffer(bufferResult, size)
	if err != nil {
		return nil, err
	}
	return tensor.NewRawFromBytes(data, a.Shape(), a.DType(), tensor.WebGPU)
}

// runScalarOp executes input OP scalar element-wise on GPU.
func (b *Backend) runScalarOp(op string, input *tensor.RawTensor, scalar any) (*tensor.RawTensor, error) {
	if err := b.checkUsable(); err != nil {
		return nil, err
	}
	wgslType, err := kernelType(input.DType())
	if err != nil {
		return nil, err
	}
	params := make([]byte, paramsSize)
	//nolint:gosec // G115: Safe conversion, NumElements() returns non-negative int
	binary.LittleEndian.PutUint32(params[0:4], uint32(input.NumElements()))
	if err := encodeScalar(params[4:8], input.DType(), scalar); err != nil {
		return nil, err
	}

	name, code, err := renderShader(scalarShaderTemplate, "scalar", op, wgslType)
	if err != nil {
		return nil, err
	}
	pipeline, err := b.pipeline(name, code)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G115: Safe conversion, ByteSize() returns non-negative int
	size := uint64(input.ByteSize())
	bufferInput := b.createBuffer(input.Data()[:size], inputUsage)
	defer b.releaseBuffer(bufferInput, size)
	bufferResult := b.acquireBuffer(size, resultUsage)
	defer b.recycleBuffer(bufferResult, size, resultUsage)
	bufferParams := b.createUniformBuffer(params)
	defer b.releaseBuffer(bufferParams, paramsSize)

	b.dispatch(pipeline, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferInput, 0, size),
		wgpu.BufferBindingEntry(1, bufferResult, 0, size),
		wgpu.BufferBindingEntry(2, bufferParams, 0, paramsSize),
	}, input.NumElements())

	data, err := b.readBuffer(bufferResult, size)
	if err != nil {
		return nil, err
	}
	return tensor.NewRawFromBytes(data, input.Shape(), input.DType(), tensor.WebGPU)
}

// encodeScalar writes scalar as a little-endian value of type dt into dst.
func encodeScalar(dst []byte, dt tensor.DataType, scalar any) error {
	var v float64
	switch s := scalar.(type) {
	case float32:
		v = float64(s)
	case float64:
		v = s
	case int32:
		v = float64(s)
	case int64:
		v = float64(s)
	case int:
		v = float64(s)
	case uint8:
		v = float64(s)
	default:
		return errors.Errorf("webgpu: unsupported scalar type %T", scalar)
	}

	switch dt {
	case tensor.Float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
	case tensor.Int32:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return errors.Errorf("webgpu: scalar %v does not fit int32", scalar)
		}
		//nolint:gosec // G115: range checked above
		binary.LittleEndian.PutUint32(dst, uint32(int32(v)))
	default:
		return errUnsupportedDType(dt)
	}
	return nil
}
