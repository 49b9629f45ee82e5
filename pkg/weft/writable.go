package weft

import "sync"

// Initial supplies the value a writable computed cell is (re)computed from.
// It is a tagged union: either a literal payload (Static) or a producer
// function (Computed). The union makes the producer-vs-payload decision a
// single type check at the call boundary - a function-typed T supplied via
// Static is stored verbatim, never invoked.
type Initial[T any] struct {
	value   T
	compute func(prev *T) T
}

// Static supplies a literal initial value. On a dependency change the
// literal currently supplied is stored verbatim.
func Static[T any](v T) Initial[T] {
	return Initial[T]{value: v}
}

// Computed supplies a producer. At mount it is invoked with prev == nil;
// on a dependency change it is invoked with a pointer to the current cell
// value - which may be a manual override - so recomputation folds the
// latest state.
func Computed[T any](fn func(prev *T) T) Initial[T] {
	return Initial[T]{compute: fn}
}

// resolve produces the cell value. Producer panics propagate to
// the caller unrecovered.
func (in Initial[T]) resolve(prev *T) T {
	if in.compute != nil {
		return in.compute(prev)
	}
	return in.value
}

// Setter is the stable update handle for a writable computed cell. It is
// allocated exactly once at mount and the same pointer is returned from
// every subsequent invocation, regardless of dependency changes or writes.
type Setter[T any] struct {
	cell *writableCell[T]
}

// Set stores v into the cell if it differs from the current value under
// same-value equality, and requests a re-render from the host. Writing a
// same-value-equal value is a no-op: no mutation, no render request.
func (s *Setter[T]) Set(v T) {
	c := s.cell

	c.mu.Lock()
	changed := !sameValueOf(c.value, v)
	if changed {
		c.value = v
	}
	c.mu.Unlock()

	if changed {
		c.owner.RequestRender()
	}
}

// Update derives the next value from the current one. The same convergence
// rule applies: if fn returns a value same-value-equal to the current one,
// nothing is stored and no render is requested.
func (s *Setter[T]) Update(fn func(T) T) {
	c := s.cell

	c.mu.Lock()
	next := fn(c.value)
	changed := !sameValueOf(c.value, next)
	if changed {
		c.value = next
	}
	c.mu.Unlock()

	if changed {
		c.owner.RequestRender()
	}
}

// writableCell is the per-instance state behind UseWritableComputed:
// the value cell, the dependency snapshot, and the stable setter.
type writableCell[T any] struct {
	mu     sync.Mutex
	value  T
	deps   []any
	owner  *Owner
	setter *Setter[T]
}

// reconcile applies the per-invocation dependency check. If the snapshot
// changed, a new value is resolved from the currently supplied initial
// (with the live cell value as prev) and the snapshot is replaced. If
// unchanged, the cell is left untouched.
func (c *writableCell[T]) reconcile(initial Initial[T], deps []any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !depsChanged(c.deps, deps) {
		return
	}

	prev := c.value
	c.value = initial.resolve(&prev)
	c.deps = deps
}

// get returns the current cell value.
func (c *writableCell[T]) get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// UseWritableComputed maintains a piece of state that is recomputed from
// its dependency sequence whenever that sequence changes, and freely
// overridable via the returned Setter in between. A manual override is
// preserved as the basis for the next dependency-triggered recomputation.
//
// This is a hook-like API and MUST be called unconditionally during render.
//
// On the first invocation for an instance, initial is resolved exactly once
// (a Computed producer receives prev == nil) and the dependency sequence is
// snapshotted. On every invocation the supplied deps are compared against
// the snapshot with positional same-value equality; any length mismatch or
// positional inequality triggers recomputation, which completes before the
// call returns. Supplying a different initial on later invocations has no
// effect while the dependencies are unchanged - the dependency sequence is
// the authoritative re-trigger.
//
// Example:
//
//	total, setTotal := weft.UseWritableComputed(
//	    weft.Computed(func(prev *int) int {
//	        if prev == nil {
//	            return unitPrice
//	        }
//	        return *prev + unitPrice
//	    }),
//	    unitPrice,
//	)
//	// event handler:
//	setTotal.Set(0) // override survives until unitPrice changes
func UseWritableComputed[T any](initial Initial[T], deps ...any) (T, *Setter[T]) {
	owner := mustCurrentOwner("UseWritableComputed")
	owner.TrackHook(HookWritable)

	if slot := owner.UseHookSlot(); slot != nil {
		cell, ok := slot.(*writableCell[T])
		if !ok {
			panic("weft: hook slot type mismatch for UseWritableComputed")
		}
		cell.reconcile(initial, deps)
		return cell.get(), cell.setter
	}

	// Mount: resolve the initial value once for the instance's lifetime.
	cell := &writableCell[T]{
		owner: owner,
		deps:  deps,
	}
	cell.value = initial.resolve(nil)
	cell.setter = &Setter[T]{cell: cell}
	owner.SetHookSlot(cell)

	return cell.value, cell.setter
}
