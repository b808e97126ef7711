package render

import (
	"reflect"
	"sync"
)

// World is a typed resource store: at most one value per Go type.
// It is safe for concurrent use.
type World struct {
	mu        sync.RWMutex
	resources map[reflect.Type]any
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{resources: make(map[reflect.Type]any)}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Insert stores v, replacing any previous resource of type T.
func Insert[T any](w *World, v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resources[typeOf[T]()] = v
}

// Resource returns the resource of type T.
func Resource[T any](w *World) (T, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.resources[typeOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Has reports whether a resource of type T is present.
func Has[T any](w *World) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.resources[typeOf[T]()]
	return ok
}

// Remove deletes the resource of type T and returns it.
func Remove[T any](w *World) (T, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := typeOf[T]()
	v, ok := w.resources[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(w.resources, key)
	return v.(T), true
}

// Len returns the number of stored resources.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.resources)
}

// ResourceName returns the display name used for T in errors and logs.
func ResourceName[T any]() string {
	return typeOf[T]().Name()
}
