// Package weft provides the reactive hook core for the Weft runtime.
//
// Unlike auto-tracking signal systems, Weft hooks are dependency-keyed:
// each hook receives an explicit dependency sequence, and recomputes only
// when a positional same-value comparison of that sequence reports a change.
//
// # Core Types
//
// UseWritableComputed is the central primitive: a cell that is recomputed
// from its dependencies and freely overridable in between:
//
//	count, setCount := weft.UseWritableComputed(
//	    weft.Computed(func(prev *int) int {
//	        if prev == nil {
//	            return base
//	        }
//	        return *prev + base
//	    }),
//	    base,
//	)
//	setCount.Set(100)                              // manual override
//	setCount.Update(func(n int) int { return n+1 }) // derive from current
//
// UseMemo caches a computation keyed on its dependencies, UseRef holds a
// stable mutable box, and UseCallback pins a function identity across renders.
//
// # Owners and Hook Slots
//
// Hooks must be called unconditionally during render, in the same order on
// every render. Each component instance is represented by an Owner, which
// stores hook state in positional slots that survive across renders. The host
// runtime brackets every render with StartRender/EndRender and establishes
// the Owner for the rendering goroutine via WithOwner.
//
// # Re-render Signaling
//
// Writes that change a cell's value notify the Owner's Scheduler. The request
// is fire-and-forget: the host decides when re-evaluation happens and whether
// concurrent requests coalesce.
package weft
