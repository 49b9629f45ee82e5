// Package weft provides the public API for the Weft framework.
//
// This is the recommended import for most applications:
//
//	import "github.com/weft-ui/weft"
//
// Usage:
//
//	count, setCount := weft.UseWritableComputed(weft.Static(0))
//	total := weft.UseMemo(func() float64 { return price * qty }, price, qty)
package weft

import (
	"github.com/weft-ui/weft/pkg/runtime"
	coreweft "github.com/weft-ui/weft/pkg/weft"
)

// =============================================================================
// Hook core (pkg/weft)
// =============================================================================

// Owner manages hook cells, child owners, and cleanup for one component
// instance.
type Owner = coreweft.Owner

// Scheduler receives re-render requests from hook writes.
type Scheduler = coreweft.Scheduler

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc = coreweft.SchedulerFunc

// Initial describes how a writable computed cell obtains its value.
type Initial[T any] = coreweft.Initial[T]

// Setter imperatively overrides a writable computed cell.
type Setter[T any] = coreweft.Setter[T]

// Ref is a mutable box that persists across renders without causing them.
type Ref[T any] = coreweft.Ref[T]

// NewOwner creates an owner. A nil parent makes a root owner.
func NewOwner(parent *Owner) *Owner {
	return coreweft.NewOwner(parent)
}

// Static returns an Initial carrying a plain value.
func Static[T any](v T) Initial[T] {
	return coreweft.Static(v)
}

// Computed returns an Initial carrying a producer function. At mount the
// producer is called with a nil previous value; on dependency changes it
// receives a pointer to the current value.
func Computed[T any](fn func(prev *T) T) Initial[T] {
	return coreweft.Computed(fn)
}

// UseWritableComputed returns dependency-keyed state with a stable setter.
func UseWritableComputed[T any](initial Initial[T], deps ...any) (T, *Setter[T]) {
	return coreweft.UseWritableComputed(initial, deps...)
}

// UseMemo returns a memoized value recomputed when deps change.
func UseMemo[T any](compute func() T, deps ...any) T {
	return coreweft.UseMemo(compute, deps...)
}

// UseCallback returns a function value that is stable while deps are
// unchanged.
func UseCallback[F any](fn F, deps ...any) F {
	return coreweft.UseCallback(fn, deps...)
}

// UseRef returns a stable mutable reference.
func UseRef[T any](initial T) *Ref[T] {
	return coreweft.UseRef(initial)
}

// WithOwner runs fn with the owner established for the current goroutine.
func WithOwner(owner *Owner, fn func()) {
	coreweft.WithOwner(owner, fn)
}

// =============================================================================
// Host runtime (pkg/runtime)
// =============================================================================

// Component is a render function hosted by a session.
type Component = runtime.Component

// App constructs a component for a session.
type App = runtime.App

// Session hosts one component instance and its render loop.
type Session = runtime.Session

// SessionConfig configures session behavior.
type SessionConfig = runtime.SessionConfig

// SessionManager tracks live sessions and coordinates detach and resume.
type SessionManager = runtime.SessionManager

// Server serves sessions over HTTP and WebSocket.
type Server = runtime.Server

// NewSession creates a session hosting the given component.
func NewSession(component Component, config *SessionConfig) *Session {
	return runtime.NewSession(component, config)
}

// NewSessionManager creates a session manager.
func NewSessionManager(config *SessionConfig, opts ...runtime.ManagerOption) *SessionManager {
	return runtime.NewSessionManager(config, opts...)
}

// NewServer creates a server hosting the given app.
func NewServer(addr string, app App, manager *SessionManager, opts ...runtime.ServerOption) *Server {
	return runtime.NewServer(addr, app, manager, opts...)
}
