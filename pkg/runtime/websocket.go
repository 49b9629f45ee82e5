package runtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsTransport pushes frames to a client over a WebSocket connection.
// Writes are serialized with a mutex since gorilla connections allow only
// one concurrent writer.
type wsTransport struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
	closed       bool
}

// NewWebSocketTransport wraps a WebSocket connection as a session transport.
func NewWebSocketTransport(conn *websocket.Conn, writeTimeout time.Duration) Transport {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &wsTransport{conn: conn, writeTimeout: writeTimeout}
}

func (t *wsTransport) SendFrame(f Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrSessionClosed
	}

	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.conn.Close()
}

// ping sends a WebSocket ping control message.
func (t *wsTransport) ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrSessionClosed
	}
	return t.conn.WriteControl(websocket.PingMessage, nil,
		time.Now().Add(t.writeTimeout))
}

// ServeWebSocket drives a session over a WebSocket connection. It attaches
// the transport, runs the read and heartbeat loops, and blocks until the
// connection drops. The session itself is left open so the manager can
// decide whether to detach or close it.
func ServeWebSocket(sess *Session, conn *websocket.Conn) {
	t := NewWebSocketTransport(conn, sess.config.WriteTimeout)
	sess.AttachTransport(t)

	done := make(chan struct{})
	defer close(done)

	go heartbeatLoop(t.(*wsTransport), sess.config.HeartbeatInterval, done)

	readLoop(sess, conn)
	t.Close()
}

// readLoop reads client events until the connection closes.
func readLoop(sess *Session, conn *websocket.Conn) {
	for {
		conn.SetReadDeadline(time.Now().Add(sess.config.ReadTimeout))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(sess.config.ReadTimeout))
			return nil
		})

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			sess.logger.Error("event decode error", "error", err)
			sess.sendFrame(Frame{
				Type:    FrameError,
				Code:    "invalid_event",
				Message: "invalid event format",
			})
			continue
		}

		if err := sess.DispatchEvent(ev); err != nil {
			switch {
			case errors.Is(err, ErrNoHandler):
				sess.logger.Warn("unhandled event", "event", ev.Name)
				sess.sendFrame(Frame{
					Type:    FrameError,
					Code:    "unknown_event",
					Message: "no handler for event " + ev.Name,
				})
			case errors.Is(err, ErrQueueFull):
				sess.sendFrame(Frame{
					Type:    FrameError,
					Code:    "rate_limited",
					Message: "event queue full",
				})
			case errors.Is(err, ErrSessionClosed):
				return
			}
		}
	}
}

// heartbeatLoop pings the client until the connection or session ends.
func heartbeatLoop(t *wsTransport, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := t.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
