package main

import (
	"encoding/json"
	"net"
	"time"

	"github.com/mdlayher/vsock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cloudx-io/escrowhouse/core"
	"github.com/cloudx-io/escrowhouse/engineapi"
)

// Server accepts connections, reads one JSON request per connection, runs it
// through the engine and writes one JSON response back. A worker-pool
// semaphore bounds concurrent handlers; connections beyond the pool are
// rejected immediately rather than queued.
type Server struct {
	cfg    Config
	engine *core.Engine
	log    *zap.Logger
}

func NewServer(cfg Config, engine *core.Engine, log *zap.Logger) *Server {
	return &Server{cfg: cfg, engine: engine, log: log}
}

func (s *Server) listen() (net.Listener, error) {
	switch s.cfg.ListenNet {
	case "vsock":
		l, err := vsock.Listen(s.cfg.VsockPort, nil)
		return l, errors.Wrapf(err, "failed to listen on vsock port %d", s.cfg.VsockPort)
	default:
		l, err := net.Listen("tcp", s.cfg.ListenAddr)
		return l, errors.Wrapf(err, "failed to listen on %s", s.cfg.ListenAddr)
	}
}

// Serve runs the accept loop until the listener fails.
func (s *Server) Serve() error {
	listener, err := s.listen()
	if err != nil {
		return err
	}
	return s.serve(listener)
}

func (s *Server) serve(listener net.Listener) error {
	defer func() {
		if err := listener.Close(); err != nil {
			s.log.Error("failed to close listener", zap.Error(err))
		}
	}()

	s.log.Info("auctiond listening",
		zap.String("net", s.cfg.ListenNet),
		zap.String("addr", listener.Addr().String()),
		zap.Int("max_workers", s.cfg.MaxWorkers),
		zap.String("mode", s.engine.Mode().String()))

	semaphore := make(chan struct{}, s.cfg.MaxWorkers)
	for {
		conn, err := listener.Accept()
		if err != nil {
			return errors.Wrap(err, "accept failed")
		}

		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }()
				s.handleConnection(c)
			}(conn)
		default:
			s.log.Warn("worker pool full, rejecting connection",
				zap.String("remote", conn.RemoteAddr().String()))
			if err := conn.Close(); err != nil {
				s.log.Error("failed to close rejected connection", zap.Error(err))
			}
		}
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic recovered in connection handler", zap.Any("panic", r))
		}
		if err := conn.Close(); err != nil {
			s.log.Error("failed to close connection", zap.Error(err))
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

	var req engineapi.Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.log.Error("failed to decode request", zap.Error(err))
		return
	}

	resp := s.handleRequest(req)
	if resp.OK {
		s.log.Info("request handled", zap.String("type", req.Type))
	} else {
		s.log.Info("request failed",
			zap.String("type", req.Type),
			zap.String("kind", resp.Error),
			zap.String("message", resp.Message))
	}

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}
