package weft

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DebugMode enables dev-time validation like hook order checking.
// This should be set at startup and not changed during runtime.
var DebugMode bool

// HookType identifies the type of hook call for order validation.
type HookType uint8

const (
	HookWritable HookType = iota + 1
	HookMemo
	HookRef
	HookCallback
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookWritable:
		return "WritableComputed"
	case HookMemo:
		return "Memo"
	case HookRef:
		return "Ref"
	case HookCallback:
		return "Callback"
	default:
		return "Unknown"
	}
}

// hookRecord records a single hook call for order validation.
type hookRecord struct {
	Type HookType
}

// Owner represents one component instance: the scope that owns the
// persistent hook cells for one logical call site across repeated renders.
// When an Owner is disposed, its cleanups and child owners are disposed too.
//
// Owners form a hierarchy: each component creates an Owner that is a child
// of its parent component's Owner, mirroring the component tree.
type Owner struct {
	id uint64

	// parent is the parent Owner in the hierarchy.
	// nil for the root Owner (typically the session).
	parent *Owner

	// children are child Owners (sub-components).
	children   []*Owner
	childrenMu sync.Mutex

	// cleanups are functions registered via OnCleanup.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// scheduler receives re-render requests from writable cells owned by
	// this instance. If nil, requests walk up to the parent.
	scheduler   Scheduler
	schedulerMu sync.RWMutex

	// disposed indicates whether this Owner has been disposed.
	disposed atomic.Bool

	// Dev-mode hook order tracking (only used when DebugMode is true)
	hookOrder   []hookRecord // Expected order from first render
	hookIndex   int          // Current index during render
	renderCount int          // 0 = first render, 1+ = subsequent

	// Hook slot storage for stable hook identity across renders.
	hookSlots   []any // Stored hook state values (one per hook)
	hookSlotIdx int   // Current slot index during render
}

// NewOwner creates a new Owner with the given parent.
// The new Owner is automatically registered as a child of the parent.
// If parent is nil, creates a root Owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil if this is a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// SetScheduler installs the host's re-render request capability for this
// owner. Child owners without their own scheduler delegate to their parent,
// so a session only needs to install one scheduler on the root.
func (o *Owner) SetScheduler(s Scheduler) {
	o.schedulerMu.Lock()
	o.scheduler = s
	o.schedulerMu.Unlock()
}

// RequestRender signals the host that this instance needs another render
// pass. Requests after disposal are dropped. The call is fire-and-forget;
// coalescing is the host's responsibility.
func (o *Owner) RequestRender() {
	if o.disposed.Load() {
		return
	}

	o.schedulerMu.RLock()
	s := o.scheduler
	o.schedulerMu.RUnlock()

	if s != nil {
		s.RequestRender()
		return
	}
	if o.parent != nil {
		o.parent.RequestRender()
	}
}

// addChild registers a child Owner.
func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

// removeChild removes a child Owner from this Owner's children.
func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers a cleanup function to run when this Owner is disposed.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		// Already disposed, run cleanup immediately
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// Dispose disposes this Owner and all its children and cleanups.
// Children are disposed in reverse order (last created first).
// Hook slots are released; after disposal the Owner cannot be used.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		// Already disposed
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	// Run cleanups in reverse order
	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.hookSlots = nil
}

// =============================================================================
// Render Bracketing
// =============================================================================

// StartRender is called at the beginning of a component render.
// It resets the hook slot index for stable identity, and in debug mode,
// also resets the hook order validation index.
func (o *Owner) StartRender() {
	o.hookSlotIdx = 0

	if DebugMode {
		o.hookIndex = 0
	}
}

// EndRender is called at the end of a component render.
// In debug mode, it validates that all expected hooks were called.
func (o *Owner) EndRender() {
	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		// First render complete, lock in hook order
		o.renderCount = 1
	} else if o.hookIndex < len(o.hookOrder) {
		panic(fmt.Sprintf("[WEFT E002] Hook order changed: expected %d hooks, got %d",
			len(o.hookOrder), o.hookIndex))
	}
}

// TrackHook records a hook call during render for order validation.
// In debug mode, it validates that hooks are called in the same order
// on every render. Violations cause a panic with a descriptive error.
func (o *Owner) TrackHook(ht HookType) {
	if !DebugMode {
		return
	}

	if o.renderCount == 0 {
		// First render: record hook order
		o.hookOrder = append(o.hookOrder, hookRecord{Type: ht})
	} else {
		// Subsequent renders: validate order
		if o.hookIndex >= len(o.hookOrder) {
			panic(fmt.Sprintf("[WEFT E002] Hook order changed: extra %s hook at index %d",
				ht, o.hookIndex))
		}
		expected := o.hookOrder[o.hookIndex]
		if expected.Type != ht {
			panic(fmt.Sprintf("[WEFT E002] Hook order changed at index %d: expected %s, got %s",
				o.hookIndex, expected.Type, ht))
		}
	}
	o.hookIndex++
}

// =============================================================================
// Hook Slot Storage
// =============================================================================

// UseHookSlot returns the stored value for the current hook slot, or nil on
// the first render. Hook slots are the persistent per-instance cells that
// give hooks stable identity across renders.
//
// Usage pattern:
//
//	slot := owner.UseHookSlot()
//	if slot != nil {
//	    return slot.(*cell) // Subsequent render: reuse stored cell
//	}
//	c := newCell()
//	owner.SetHookSlot(c) // First render: allocate and store
//	return c
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++

	if idx < len(o.hookSlots) {
		// Subsequent render: return stored value
		return o.hookSlots[idx]
	}

	// First render: no slot yet, caller creates the value and calls SetHookSlot
	return nil
}

// SetHookSlot stores a value in the current hook slot.
// Must be called after UseHookSlot returns nil (first render).
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}

// mustCurrentOwner returns the goroutine's current owner, panicking with the
// hook name if called outside of a render context.
func mustCurrentOwner(hook string) *Owner {
	owner := getCurrentOwner()
	if owner == nil {
		panic(fmt.Sprintf("[WEFT E001] %s called outside of a render context; "+
			"hooks require a current Owner (see WithOwner)", hook))
	}
	return owner
}
