package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Commvault/commvault-mcp-server/internal/auth"
	"github.com/Commvault/commvault-mcp-server/internal/config"
	"github.com/Commvault/commvault-mcp-server/internal/tools"
	"github.com/Commvault/commvault-mcp-server/pkg/logging"
)

const serverName = "commvault-mcp-server"

// shutdownTimeout bounds graceful HTTP shutdown on stop.
const shutdownTimeout = 5 * time.Second

// Server serves the Commvault toolsets over a single configured transport.
type Server struct {
	cfg  config.ServerConfig
	mcp  *mcpserver.MCPServer
	gate *auth.Gate
}

// New builds the MCP server and registers all toolsets on it.
func New(cfg config.ServerConfig, client tools.APIClient, gate *auth.Gate, version string) *Server {
	mcp := mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	tools.RegisterAll(mcp, client)

	return &Server{
		cfg:  cfg,
		mcp:  mcp,
		gate: gate,
	}
}

// Run serves the configured transport until ctx is cancelled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Transport == config.TransportStdio {
		logging.Info("Server", "Serving MCP over stdio")
		err := mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}
	return s.runHTTP(ctx)
}

func (s *Server) runHTTP(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	logging.Info("Server", "Serving MCP over %s on %s%s", s.cfg.Transport, addr, s.Endpoint())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info("Server", "Shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server", err, "Error shutting down HTTP server")
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", s.cfg.Transport, err)
		}
		return nil
	}
}

// Handler returns the HTTP handler for the configured transport, wrapped by
// the authentication gate. Only meaningful for the HTTP transports.
func (s *Server) Handler() http.Handler {
	var transport http.Handler
	switch s.cfg.Transport {
	case config.TransportSSE:
		transport = mcpserver.NewSSEServer(
			s.mcp,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
			mcpserver.WithKeepAlive(true),
			mcpserver.WithKeepAliveInterval(30*time.Second),
		)
	default:
		transport = mcpserver.NewStreamableHTTPServer(
			s.mcp,
			mcpserver.WithEndpointPath(s.cfg.Path),
		)
	}
	return auth.Middleware(s.gate, transport)
}

// Endpoint returns the path clients connect to for the configured transport.
func (s *Server) Endpoint() string {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return "/sse"
	case config.TransportStdio:
		return ""
	default:
		return s.cfg.Path
	}
}
