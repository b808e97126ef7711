package handoff

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingResource is wrapped by every *MissingResourceError.
	ErrMissingResource = errors.New("handoff: missing render resource")

	// ErrEmptyWrapper is returned by Unwrap for a wrapper holding no handle.
	ErrEmptyWrapper = errors.New("handoff: empty handle wrapper")

	// ErrDeviceConstruction wraps failures of the tensor backend's device
	// constructor.
	ErrDeviceConstruction = errors.New("handoff: tensor device construction failed")

	// ErrNotPublished is returned when the device is read before publication.
	ErrNotPublished = errors.New("handoff: tensor device not published")

	// ErrAlreadyPublished is returned by a second publication.
	ErrAlreadyPublished = errors.New("handoff: tensor device already published")

	// ErrOutOfOrder is returned when handoff stages are run out of sequence.
	ErrOutOfOrder = errors.New("handoff: stage out of order")
)

// MissingResourceError names the render resource a handoff could not find.
type MissingResourceError struct {
	Resource string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingResource, e.Resource)
}

// Unwrap makes errors.Is(err, ErrMissingResource) hold.
func (e *MissingResourceError) Unwrap() error {
	return ErrMissingResource
}
