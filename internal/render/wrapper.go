package render

import "sync"

// Wrapper guards a native GPU handle that is shared between goroutines.
// The zero value, like EmptyWrapper, holds nothing.
type Wrapper[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

// NewWrapper returns a Wrapper holding v.
func NewWrapper[T any](v T) *Wrapper[T] {
	return &Wrapper[T]{value: v, set: true}
}

// EmptyWrapper returns a Wrapper for a handle that is not initialized yet.
func EmptyWrapper[T any]() *Wrapper[T] {
	return &Wrapper[T]{}
}

// Clone returns a new Wrapper holding the same handle. Handles are
// reference-like, so both wrappers refer to one native object.
func (w *Wrapper[T]) Clone() *Wrapper[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &Wrapper[T]{value: w.value, set: w.set}
}

// IntoInner takes the handle out of w, leaving it empty. ok is false if w
// held nothing.
func (w *Wrapper[T]) IntoInner() (v T, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok = w.value, w.set
	var zero T
	w.value, w.set = zero, false
	return v, ok
}

// IsEmpty reports whether w holds no handle.
func (w *Wrapper[T]) IsEmpty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.set
}
