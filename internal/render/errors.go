package render

import "github.com/pkg/errors"

var (
	// ErrLibraryNotFound is returned when wgpu-native cannot be loaded.
	ErrLibraryNotFound = errors.New("render: wgpu-native library not found")

	// ErrNoAdapter is returned when no adapter matches the Options.
	ErrNoAdapter = errors.New("render: no suitable GPU adapter")
)
