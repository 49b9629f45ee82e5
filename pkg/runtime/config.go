package runtime

import (
	"log/slog"
	"time"
)

// Default timeouts and queue sizes for sessions.
const (
	DefaultMaxEventQueue     = 64
	DefaultReadTimeout       = 60 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
)

// SessionConfig configures session behavior.
type SessionConfig struct {
	// MaxEventQueue is the dispatch queue capacity. Dispatches beyond it
	// are rejected with ErrQueueFull.
	MaxEventQueue int

	// ReadTimeout is the WebSocket read deadline.
	ReadTimeout time.Duration

	// WriteTimeout is the WebSocket write deadline.
	WriteTimeout time.Duration

	// HeartbeatInterval is how often pings are sent to the client.
	HeartbeatInterval time.Duration

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives render/event observations. Optional.
	Metrics *Metrics

	// TracerName names the otel tracer used for render and event spans.
	TracerName string
}

// DefaultSessionConfig returns a config with production defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		MaxEventQueue:     DefaultMaxEventQueue,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		HeartbeatInterval: DefaultHeartbeatInterval,
		Logger:            slog.Default(),
		TracerName:        defaultTracerName,
	}
}

// normalize fills zero fields with defaults.
func (c *SessionConfig) normalize() *SessionConfig {
	if c == nil {
		return DefaultSessionConfig()
	}
	out := *c
	if out.MaxEventQueue <= 0 {
		out.MaxEventQueue = DefaultMaxEventQueue
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = DefaultReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = DefaultWriteTimeout
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.TracerName == "" {
		out.TracerName = defaultTracerName
	}
	return &out
}
