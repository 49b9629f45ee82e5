package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves Weft sessions over HTTP: a page shell at /, a WebSocket
// endpoint at /live, and Prometheus metrics at /metrics.
type Server struct {
	addr     string
	app      App
	manager  *SessionManager
	logger   *slog.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCheckOrigin sets the WebSocket origin check. The default accepts all
// origins, which is only appropriate behind a trusted proxy.
func WithCheckOrigin(fn func(*http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// NewServer creates a server hosting the given app.
func NewServer(addr string, app App, manager *SessionManager, opts ...ServerOption) *Server {
	s := &Server{
		addr:    addr,
		app:     app,
		manager: manager,
		logger:  manager.config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/live", s.handleLive)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// ListenAndServe starts the HTTP server and blocks until it exits.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server listening", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains the HTTP server and closes all sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.manager.CloseAll()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleIndex serves the page shell. The session is created here so the
// initial HTML is server-rendered; the inline client connects back over
// WebSocket and swaps in each render frame.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.manager.Create(s.app)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexShell, sess.ID, sess.CurrentHTML(), sess.ID)
}

// handleLive upgrades to WebSocket and binds the connection to its session.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	sess, ok := s.manager.Get(id)
	if !ok {
		// The process may have restarted; try the snapshot store.
		resumed, err := s.manager.Resume(r.Context(), id, s.app)
		if err != nil {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		sess = resumed
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	ServeWebSocket(sess, conn)

	if err := s.manager.Detach(context.Background(), sess.ID); err != nil {
		s.logger.Debug("detach after disconnect", "session_id", sess.ID, "error", err)
	}
}

const indexShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Weft</title></head>
<body>
<div id="weft-root" data-session="%s">%s</div>
<script>
(function () {
  var root = document.getElementById("weft-root");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/live?session=%s");
  ws.onmessage = function (e) {
    var frame = JSON.parse(e.data);
    if (frame.type === "render") {
      root.innerHTML = frame.html;
    } else if (frame.type === "error") {
      console.error("weft:", frame.code, frame.message);
    }
  };
  root.addEventListener("click", function (e) {
    var el = e.target.closest("[data-weft-event]");
    if (!el) return;
    var payload = el.getAttribute("data-weft-payload");
    ws.send(JSON.stringify({
      name: el.getAttribute("data-weft-event"),
      payload: payload ? JSON.parse(payload) : undefined
    }));
  });
})();
</script>
</body>
</html>`
