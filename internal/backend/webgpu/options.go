package webgpu

import (
	"strings"

	"github.com/pkg/errors"
)

// MemoryStrategy selects how the backend recycles GPU buffers.
type MemoryStrategy int

const (
	// MemoryPooled keeps released buffers in a size-bucketed pool.
	MemoryPooled MemoryStrategy = iota
	// MemoryExclusive releases every buffer as soon as an op is done
	// with it, leaving the device's memory to the host renderer.
	MemoryExclusive
)

// String returns the flag spelling of the strategy.
func (m MemoryStrategy) String() string {
	switch m {
	case MemoryPooled:
		return "pooled"
	case MemoryExclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}

// ParseMemoryStrategy parses the String form of a MemoryStrategy.
func ParseMemoryStrategy(s string) (MemoryStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pooled", "":
		return MemoryPooled, nil
	case "exclusive":
		return MemoryExclusive, nil
	default:
		return 0, errors.Wrapf(ErrInvalidOptions, "unknown memory strategy %q", s)
	}
}

// RuntimeOptions tunes backend execution. The zero value is not valid;
// start from DefaultRuntimeOptions.
type RuntimeOptions struct {
	MemoryStrategy MemoryStrategy

	// MaxBatchSize is the number of queued command buffers that triggers
	// an automatic submit. 0 disables the limit.
	MaxBatchSize int

	// PipelineCacheSize bounds the number of compiled compute pipelines.
	PipelineCacheSize int
}

// DefaultRuntimeOptions returns the options used when a caller has no
// tuning requirements.
func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{
		MemoryStrategy:    MemoryPooled,
		MaxBatchSize:      64,
		PipelineCacheSize: 32,
	}
}

// Validate checks the option ranges.
func (o RuntimeOptions) Validate() error {
	if o.MemoryStrategy != MemoryPooled && o.MemoryStrategy != MemoryExclusive {
		return errors.Wrapf(ErrInvalidOptions, "memory strategy %d", o.MemoryStrategy)
	}
	if o.MaxBatchSize < 0 {
		return errors.Wrapf(ErrInvalidOptions, "max batch size %d < 0", o.MaxBatchSize)
	}
	if o.PipelineCacheSize <= 0 {
		return errors.Wrapf(ErrInvalidOptions, "pipeline cache size %d <= 0", o.PipelineCacheSize)
	}
	return nil
}
