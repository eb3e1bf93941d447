package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/m3rciful/supportbot/core/logger"
)

// ShutdownTimeout bounds how long in-flight requests may drain.
const ShutdownTimeout = 5 * time.Second

// Server runs the HTTP surface in the background.
type Server struct {
	srv *http.Server

	mu   sync.Mutex
	ln   net.Listener
	done chan struct{}
}

// NewServer returns a Server for handler bound to addr. Nothing listens until Start.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in a goroutine. Bind errors are
// returned; serve errors after that are logged.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("httpapi: listen %s: %w", s.srv.Addr, err)
	}
	s.ln = ln
	s.done = make(chan struct{})

	logger.Info(context.Background(), logger.ComponentHTTP, "http.start",
		slog.String("listen", ln.Addr().String()),
	)
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), logger.ComponentHTTP, "http.serve",
				slog.String("status", "fail"),
				logger.Err(err),
			)
		}
	}()
	return nil
}

// Addr reports the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Shutdown stops accepting requests and waits up to ShutdownTimeout for
// in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	started := s.ln != nil
	s.mu.Unlock()
	if !started {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	<-done
	logger.Info(ctx, logger.ComponentHTTP, "http.stop")
	if err != nil {
		return fmt.Errorf("httpapi: shutdown: %w", err)
	}
	return nil
}
