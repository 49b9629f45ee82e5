package weft

import (
	"runtime"
	"sync"
)

// trackingContext holds the hook state for a goroutine.
// Each goroutine has its own context so concurrent sessions can render
// components at the same time without sharing owner state.
type trackingContext struct {
	// currentOwner is the Owner whose hook slots are consumed by hook calls.
	// Set during component rendering.
	currentOwner *Owner
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine.
// This parses the goroutine header from the runtime stack and is an
// implementation detail that must not be relied upon externally.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating one if none exists.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// getCurrentOwner returns the current owner for the goroutine.
// Returns nil if no owner context is set.
func getCurrentOwner() *Owner {
	return getTrackingContext().currentOwner
}

// setCurrentOwner sets the current owner for hook calls.
// Returns the previous owner so it can be restored.
func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	return old
}

// WithOwner runs a function with the specified owner as the current owner.
// The host runtime uses this to bracket component render functions; it is
// also needed when spawning goroutines that call hooks on behalf of a
// specific component instance.
//
// Example:
//
//	weft.WithOwner(owner, func() {
//	    owner.StartRender()
//	    html = component()
//	    owner.EndRender()
//	})
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// CleanupGoroutineContext removes the tracking context for the current
// goroutine. The host runtime calls this when a session loop goroutine
// exits. Optional - contexts are lightweight and are overwritten on
// goroutine ID reuse.
func CleanupGoroutineContext() {
	trackingContexts.Delete(getGoroutineID())
}
