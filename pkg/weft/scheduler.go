package weft

// Scheduler is the host framework's re-render request capability.
// RequestRender is fire-and-forget: the host guarantees a subsequent render
// pass for the owning instance, and may coalesce multiple requests made
// within one synchronous turn into a single pass. The core never waits for
// or observes the resulting render.
type Scheduler interface {
	RequestRender()
}

// SchedulerFunc adapts a plain function to the Scheduler interface.
type SchedulerFunc func()

// RequestRender implements Scheduler.
func (f SchedulerFunc) RequestRender() { f() }
