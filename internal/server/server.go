// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP front end
type Server struct {
	addr       string
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
}

// New creates a Server that will listen on addr
func New(addr string, router *gin.Engine) *Server {
	return &Server{
		addr:   addr,
		router: router,
	}
}

// Start binds the listener and serves in the background. It returns the
// bound address, which differs from the configured one when port 0 is used.
func (s *Server) Start() (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return listener.Addr().String(), nil
}

// Stop waits for in-flight requests to finish or ctx to expire
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
