package runtime

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/weft-ui/weft/pkg/weft"
)

// defaultTracerName is the otel tracer name for Weft sessions.
const defaultTracerName = "weft"

// Session errors.
var (
	ErrSessionClosed = errors.New("runtime: session closed")
	ErrQueueFull     = errors.New("runtime: dispatch queue full")
	ErrNoHandler     = errors.New("runtime: no handler registered for event")
)

// Session hosts one component instance: its owner (the persistent hook
// cells), its render loop, and its transport. It implements weft.Scheduler;
// setter writes land in renderCh, a size-1 channel, so any number of
// requests made before the loop runs collapse into a single render pass.
type Session struct {
	// Identity
	ID        string
	CreatedAt time.Time

	component Component
	owner     *weft.Owner

	// Transport (may be attached after mount)
	transport   Transport
	transportMu sync.Mutex

	// Handlers registered via Handle.
	handlers   map[string]Handler
	handlersMu sync.RWMutex

	// Channels
	renderCh   chan struct{} // Size 1: coalesces re-render requests
	dispatchCh chan func()   // Functions to run on the loop goroutine
	done       chan struct{} // Shutdown signal

	closed  atomic.Bool
	started atomic.Bool

	// Sequence number for frames sent to the client.
	sendSeq atomic.Uint64

	// Render output, kept for late-attaching transports and inspection.
	lastHTML string
	htmlMu   sync.RWMutex

	// General-purpose session data storage, snapshotted on detach.
	data   map[string]any
	dataMu sync.RWMutex

	config *SessionConfig
	logger *slog.Logger
	tracer trace.Tracer
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Weak IDs are dangerous; refuse to run without entropy.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// NewSession creates a session hosting the given component.
func NewSession(component Component, config *SessionConfig) *Session {
	config = config.normalize()
	id := generateSessionID()

	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		component:  component,
		owner:      weft.NewOwner(nil),
		handlers:   make(map[string]Handler),
		renderCh:   make(chan struct{}, 1),
		dispatchCh: make(chan func(), config.MaxEventQueue),
		done:       make(chan struct{}),
		data:       make(map[string]any),
		config:     config,
		logger:     config.Logger.With("session_id", id),
		tracer:     otel.Tracer(config.TracerName),
	}
	s.owner.SetScheduler(s)

	return s
}

// Owner returns the session's root owner.
func (s *Session) Owner() *weft.Owner {
	return s.owner
}

// RequestRender implements weft.Scheduler. It is fire-and-forget: if a
// render is already queued the request is coalesced into it.
func (s *Session) RequestRender() {
	if s.closed.Load() {
		return
	}
	select {
	case s.renderCh <- struct{}{}:
	default:
		if s.config.Metrics != nil {
			s.config.Metrics.RecordCoalescedRequest()
		}
	}
}

// Mount performs the initial render pass synchronously. Call once, before
// Start.
func (s *Session) Mount() {
	s.renderOnce(context.Background())
	s.logger.Info("mounted component", "html_bytes", len(s.CurrentHTML()))
}

// Start launches the session loop goroutine.
func (s *Session) Start() {
	if s.started.Swap(true) {
		return
	}
	go s.loop()
}

// loop serves dispatches and render requests until the session closes.
// It is the only goroutine that renders, which gives the per-session total
// order of mutations: handler writes are applied before the next pass.
func (s *Session) loop() {
	defer weft.CleanupGoroutineContext()

	for {
		select {
		case <-s.done:
			return

		case fn := <-s.dispatchCh:
			s.executeDispatch(fn)

		case <-s.renderCh:
			s.renderOnce(context.Background())
		}
	}
}

// executeDispatch runs a dispatched function with panic recovery, then
// serves any render request the function produced so the client sees the
// result of a handler without waiting for another loop turn.
func (s *Session) executeDispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
			if s.config.Metrics != nil {
				s.config.Metrics.RecordHandlerPanic()
			}
		}
	}()

	fn()

	select {
	case <-s.renderCh:
		s.renderOnce(context.Background())
	default:
	}
}

// Dispatch queues fn to run on the session loop goroutine.
func (s *Session) Dispatch(fn func()) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.dispatchCh <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Handle registers a handler for a named client event.
func (s *Session) Handle(name string, h Handler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.handlers[name] = h
}

// DispatchEvent routes a client event to its registered handler on the loop
// goroutine. Unknown events are rejected so the transport can report them.
func (s *Session) DispatchEvent(ev Event) error {
	s.handlersMu.RLock()
	h, ok := s.handlers[ev.Name]
	s.handlersMu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNoHandler, ev.Name)
	}

	if s.config.Metrics != nil {
		s.config.Metrics.RecordEvent(ev.Name)
	}

	return s.Dispatch(func() {
		_, span := s.tracer.Start(context.Background(), "weft.event",
			trace.WithAttributes(
				attribute.String("weft.session_id", s.ID),
				attribute.String("weft.event_name", ev.Name),
			))
		defer span.End()

		h(ev.Payload)
		span.SetStatus(codes.Ok, "")
	})
}

// renderOnce runs one render pass: hook slots reset, component invoked
// under the session owner, output framed out to the transport.
func (s *Session) renderOnce(ctx context.Context) {
	_, span := s.tracer.Start(ctx, "weft.render",
		trace.WithAttributes(attribute.String("weft.session_id", s.ID)))
	defer span.End()

	start := time.Now()

	var html string
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("render panic",
					"panic", r,
					"stack", string(debug.Stack()))
				span.SetStatus(codes.Error, fmt.Sprint(r))
				html = ""
			}
		}()

		s.owner.StartRender()
		weft.WithOwner(s.owner, func() {
			html = s.component()
		})
		s.owner.EndRender()
	}()

	duration := time.Since(start)
	if s.config.Metrics != nil {
		s.config.Metrics.RecordRender(duration)
	}

	s.htmlMu.Lock()
	s.lastHTML = html
	s.htmlMu.Unlock()

	seq := s.sendSeq.Add(1)
	span.SetAttributes(attribute.Int64("weft.render_seq", int64(seq)))

	s.sendFrame(Frame{Type: FrameRender, Seq: seq, HTML: html})

	s.logger.Debug("render pass complete",
		"seq", seq,
		"duration", duration,
		"html_bytes", len(html))
}

// CurrentHTML returns the output of the most recent render pass.
func (s *Session) CurrentHTML() string {
	s.htmlMu.RLock()
	defer s.htmlMu.RUnlock()
	return s.lastHTML
}

// RenderSeq returns the sequence number of the most recent frame.
func (s *Session) RenderSeq() uint64 {
	return s.sendSeq.Load()
}

// AttachTransport installs the client transport and replays the current
// frame so a late-connecting client starts from the mounted state.
func (s *Session) AttachTransport(t Transport) {
	s.transportMu.Lock()
	s.transport = t
	s.transportMu.Unlock()

	s.sendFrame(Frame{Type: FrameRender, Seq: s.sendSeq.Load(), HTML: s.CurrentHTML()})
}

// sendFrame delivers a frame to the transport, if one is attached.
func (s *Session) sendFrame(f Frame) {
	s.transportMu.Lock()
	t := s.transport
	s.transportMu.Unlock()

	if t == nil || s.closed.Load() {
		return
	}
	if err := t.SendFrame(f); err != nil {
		s.logger.Error("frame send error", "error", err)
	}
}

// =============================================================================
// Session data storage
// =============================================================================

// Set stores a value in the session's data map. This data survives detach
// and resume via a persist.SnapshotStore; hook cells never do.
func (s *Session) Set(key string, value any) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.data[key] = value
}

// Get retrieves a value from the session's data map.
func (s *Session) Get(key string) (any, bool) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Delete removes a value from the session's data map.
func (s *Session) Delete(key string) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	delete(s.data, key)
}

// snapshotData copies the data map for serialization.
func (s *Session) snapshotData() map[string]any {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// restoreData replaces the data map from a snapshot.
func (s *Session) restoreData(data map[string]any) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.data = data
}

// Close shuts the session down: the loop exits, the owner and all its hook
// cells are disposed, and the transport is closed. Idempotent.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}

	close(s.done)
	s.owner.Dispose()

	s.transportMu.Lock()
	t := s.transport
	s.transport = nil
	s.transportMu.Unlock()

	if t != nil {
		if err := t.Close(); err != nil {
			s.logger.Debug("transport close error", "error", err)
		}
	}

	s.logger.Info("session closed", "renders", s.sendSeq.Load())
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}
