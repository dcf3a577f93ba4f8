// Package server exposes the session over a localhost control API: JSON
// endpoints for commands, completion, reload, and activation, plus a
// WebSocket stream re-broadcasting session events to UI clients.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/net/netutil"

	"github.com/keyrun-app/keyrun/internal/app"
	"github.com/keyrun-app/keyrun/internal/config"
	"github.com/keyrun-app/keyrun/internal/logging"
)

// ControlServer serves the control API and the event stream.
type ControlServer struct {
	cfg     *config.Config
	session *app.Session
	log     logging.Logger

	httpServer  *http.Server
	listenAddr  string
	serverMutex sync.RWMutex

	clients      map[*websocket.Conn]*client
	clientsMutex sync.RWMutex
	register     chan *client
	unregister   chan *websocket.Conn
	broadcast    chan []byte

	shutdownOnce sync.Once
}

// New creates a control server around an existing session. The session is
// not owned: callers keep driving it directly, the server only exposes it.
func New(cfg *config.Config, session *app.Session, log logging.Logger) *ControlServer {
	if log == nil {
		log = logging.NewNop()
	}

	return &ControlServer{
		cfg:        cfg,
		session:    session,
		log:        log.WithComponent("server"),
		clients:    make(map[*websocket.Conn]*client),
		register:   make(chan *client),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
	}
}

// Start listens and serves until ctx is cancelled or Shutdown is called.
// The listener is capped at the configured connection limit.
func (s *ControlServer) Start(ctx context.Context) error {
	events, cancel := s.session.Subscribe()

	go s.runHub(ctx)
	go s.forwardEvents(ctx, events, cancel)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("control listener on %s: %w", addr, err)
	}
	if s.cfg.Server.MaxConns > 0 {
		listener = netutil.LimitListener(listener, s.cfg.Server.MaxConns)
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.listenAddr = listener.Addr().String()
	server := s.httpServer
	s.serverMutex.Unlock()

	s.log.Info(ctx, "control server listening", "addr", s.listenAddr)

	if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control server: %w", err)
	}
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *ControlServer) Addr() string {
	s.serverMutex.RLock()
	defer s.serverMutex.RUnlock()
	return s.listenAddr
}

// Shutdown stops the HTTP server and closes all WebSocket clients.
func (s *ControlServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.log.Info(ctx, "control server shutting down")

		s.clientsMutex.Lock()
		for conn, c := range s.clients {
			close(c.send)
			conn.Close(websocket.StatusGoingAway, "server shutdown")
		}
		s.clients = make(map[*websocket.Conn]*client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// routes builds the handler tree with the common middleware applied.
func (s *ControlServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/commands", s.handleCommands)
	mux.HandleFunc("/api/suggest", s.handleSuggest)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/activate", s.handleActivate)
	mux.HandleFunc("/api/reload", s.handleReload)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return s.withMiddleware(mux)
}

func (s *ControlServer) withMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.log.Debug(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// isAllowedOrigin accepts the configured origins plus same-host and
// localhost variants of the listen address.
func (s *ControlServer) isAllowedOrigin(origin string) bool {
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	for _, host := range s.localHosts() {
		if originURL.Host == host {
			return true
		}
	}
	return false
}

func (s *ControlServer) localHosts() []string {
	port := s.cfg.Server.Port
	return []string{
		fmt.Sprintf("%s:%d", s.cfg.Server.Host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}
}

// originPatterns is the host allowlist handed to the WebSocket accept:
// the localhost variants plus the hosts of any configured origins.
func (s *ControlServer) originPatterns() []string {
	patterns := s.localHosts()
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if originURL, err := url.Parse(allowed); err == nil && originURL.Host != "" {
			patterns = append(patterns, originURL.Host)
		}
	}
	return patterns
}
