package weft

import "sync"

// Ref holds a mutable reference to a value. Unlike a writable computed
// cell, writing a Ref never requests a re-render; it is a stable box for
// values that must survive across renders without participating in
// reconciliation.
//
// Ref[T] is safe for concurrent access.
type Ref[T any] struct {
	value T
	isSet bool
	mu    sync.RWMutex
}

// UseRef returns a Ref with stable identity across renders, initialized
// with the given value at mount.
//
// This is a hook-like API and MUST be called unconditionally during render.
func UseRef[T any](initial T) *Ref[T] {
	owner := mustCurrentOwner("UseRef")
	owner.TrackHook(HookRef)

	if slot := owner.UseHookSlot(); slot != nil {
		ref, ok := slot.(*Ref[T])
		if !ok {
			panic("weft: hook slot type mismatch for UseRef")
		}
		return ref
	}

	ref := &Ref[T]{value: initial}
	owner.SetHookSlot(ref)
	return ref
}

// Current returns the current value of the ref.
func (r *Ref[T]) Current() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set sets the ref's value.
func (r *Ref[T]) Set(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = value
	r.isSet = true
}

// IsSet returns true if the ref has been written since mount.
func (r *Ref[T]) IsSet() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isSet
}

// Clear resets the ref to its zero value.
func (r *Ref[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.isSet = false
}
