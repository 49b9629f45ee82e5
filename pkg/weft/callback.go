package weft

// callbackCell is the slot state behind UseCallback.
type callbackCell[F any] struct {
	fn   F
	deps []any
}

// UseCallback memoizes a function value, returning the same identity on
// every render until the dependency sequence changes. Use it to hand stable
// callbacks to child components or transports that compare by identity.
//
// This is a hook-like API and MUST be called unconditionally during render.
//
// Example:
//
//	onSave := weft.UseCallback(func() {
//	    store.Save(draft)
//	}, draft.ID)
func UseCallback[F any](fn F, deps ...any) F {
	owner := mustCurrentOwner("UseCallback")
	owner.TrackHook(HookCallback)

	if slot := owner.UseHookSlot(); slot != nil {
		cell, ok := slot.(*callbackCell[F])
		if !ok {
			panic("weft: hook slot type mismatch for UseCallback")
		}
		if depsChanged(cell.deps, deps) {
			cell.fn = fn
			cell.deps = deps
		}
		return cell.fn
	}

	cell := &callbackCell[F]{
		fn:   fn,
		deps: deps,
	}
	owner.SetHookSlot(cell)
	return cell.fn
}
