package weft

// memoCell is the slot state behind UseMemo.
type memoCell[T any] struct {
	value T
	deps  []any
}

// UseMemo returns a cached computation keyed on its dependency sequence.
// The computation runs at mount and again whenever the dependencies change
// under positional same-value comparison; otherwise the cached value is
// returned untouched.
//
// This is a hook-like API and MUST be called unconditionally during render.
//
// Example:
//
//	sorted := weft.UseMemo(func() []Item {
//	    return sortItems(items)
//	}, items)
func UseMemo[T any](compute func() T, deps ...any) T {
	owner := mustCurrentOwner("UseMemo")
	owner.TrackHook(HookMemo)

	if slot := owner.UseHookSlot(); slot != nil {
		cell, ok := slot.(*memoCell[T])
		if !ok {
			panic("weft: hook slot type mismatch for UseMemo")
		}
		if depsChanged(cell.deps, deps) {
			cell.value = compute()
			cell.deps = deps
		}
		return cell.value
	}

	cell := &memoCell[T]{
		value: compute(),
		deps:  deps,
	}
	owner.SetHookSlot(cell)
	return cell.value
}
