package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
	"github.com/zeusync/motiontrack/internal/core/observability/metrics"
)

// Config holds server configuration
type Config struct {
	Address        string
	StreamInterval time.Duration
}

// Server exposes tracker snapshots over HTTP and a WebSocket stream.
// It only reads from the registry.
type Server struct {
	config    Config
	registry  *motion.Registry
	collector *metrics.Collector
	logger    log.Log

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	clients  map[*websocket.Conn]struct{}
	stopCh   chan struct{}
	workers  sync.WaitGroup
}

func New(config Config, registry *motion.Registry, collector *metrics.Collector, logger log.Log) *Server {
	if config.StreamInterval <= 0 {
		config.StreamInterval = 100 * time.Millisecond
	}
	return &Server{
		config:    config,
		registry:  registry,
		collector: collector,
		logger:    logger.With(log.String("component", "server")),
		clients:   make(map[*websocket.Conn]struct{}),
		stopCh:    make(chan struct{}),
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return err
	}

	s.listener = listener
	s.http = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http serve failed", log.Error(err))
		}
	}()

	s.logger.Info("server listening", log.String("address", listener.Addr().String()))
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes stream clients and shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.http == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	srv := s.http
	s.mu.Unlock()

	err := srv.Shutdown(ctx)
	s.workers.Wait()
	s.logger.Info("server stopped")
	return err
}

func (s *Server) addClient(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stopCh:
		return false
	default:
	}
	s.clients[conn] = struct{}{}
	s.workers.Add(1)
	return true
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	s.workers.Done()
}

// StreamClients reports how many WebSocket clients are connected.
func (s *Server) StreamClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
