// Package runtime is the host framework for Weft components.
//
// It supplies the collaborators the hook core depends on: per-instance
// owners that persist hook cells across render passes, a single-goroutine
// session loop that serves re-render requests (coalescing concurrent
// requests into one pass), and a WebSocket transport that pushes rendered
// frames to the client and feeds client events back into the loop.
//
// A Session hosts one component function. All renders and event handlers
// run on the session's loop goroutine, so writes made by one handler are
// always visible to the next render pass.
//
//	sess := runtime.NewSession(counter, runtime.DefaultSessionConfig())
//	sess.Mount()
//	sess.Start()
//	defer sess.Close()
//
// Server wires sessions to HTTP: a chi router serving the page shell, a
// /live WebSocket endpoint, and /metrics for Prometheus scraping.
package runtime
