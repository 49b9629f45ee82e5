package runtime

import "encoding/json"

// Component is a render function. It is invoked once per render pass with
// the session's owner established for the goroutine, so it may call weft
// hooks unconditionally at its top level.
type Component func() string

// Handler processes a named client event on the session loop goroutine.
// Writes made through hook setters inside a handler request a render, which
// the loop serves immediately after the handler returns.
type Handler func(payload json.RawMessage)

// Event is a named client event with an opaque JSON payload.
type Event struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// App constructs a component for a session. It runs once per session,
// before the first render, which is the place to register event handlers.
type App func(sess *Session) Component
