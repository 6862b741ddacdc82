package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cuemby/starhunt/pkg/hub"
	"github.com/cuemby/starhunt/pkg/log"
	"github.com/cuemby/starhunt/pkg/metrics"
	"github.com/cuemby/starhunt/pkg/types"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Relay is the state the server exposes to observers
type Relay interface {
	Register(conn hub.Conn) error
	Unregister(conn hub.Conn) bool
	HandleMessage(conn hub.Conn, raw []byte) error
	Snapshot() []types.Star
	SpawnTimes() ([]types.SpawnTime, bool)
	Dashboard() (types.Dashboard, bool)
}

// Config holds server settings
type Config struct {
	Addr    string
	Conn    ConnConfig
	Version string
}

// Server serves observer WebSocket connections and the read-only HTTP
// endpoints on a single port. An upgrade request on any path becomes an
// observer connection.
type Server struct {
	relay    Relay
	cfg      Config
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	http     *http.Server
	logger   zerolog.Logger
}

// NewServer creates a new API server
func NewServer(relay Relay, cfg Config) *Server {
	s := &Server{
		relay: relay,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Observers connect from game clients and browser extensions
			// with arbitrary origins; there is no authentication to protect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux:    http.NewServeMux(),
		logger: log.WithComponent("api"),
	}

	s.registerHealth()
	s.registerViews()

	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler for embedding in other servers
func (s *Server) Handler() http.Handler {
	rest := requestLogger(s.logger, readOnly(s.mux))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.serveWS(w, r)
			return
		}
		rest.ServeHTTP(w, r)
	})
}

// Start binds the configured address and serves until Shutdown. A bind
// failure is returned immediately.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until Shutdown
func (s *Server) Serve(lis net.Listener) error {
	metrics.RegisterComponent("api", true, "")
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("Relay listening")

	err := s.http.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight HTTP
// requests. Hijacked observer connections are closed by the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	metrics.UpdateComponent("api", false, "shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	conn := newConn(ws, s.cfg.Conn)
	go conn.writePump()

	if err := s.relay.Register(conn); err != nil {
		conn.logger.Warn().Err(err).Msg("Rejecting observer")
		_ = conn.Close()
		return
	}
	conn.logger.Info().Str("remote", r.RemoteAddr).Msg("Observer connected")

	go conn.readPump(s.relay)
}
