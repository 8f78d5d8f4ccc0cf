// Package mcp exposes the document library over the Model Context
// Protocol so AI assistants can search it and read documents. The
// server speaks stdio by default and streamable HTTP on request.
package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this server to MCP clients.
	serverName = "trove"

	// defaultVersion is reported when the caller does not supply a
	// build version.
	defaultVersion = "0.1.0"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Option adjusts server construction.
type Option func(*Server)

// WithVersion sets the version reported to MCP clients during the
// initialise handshake.
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// Server serves the MCP tools and resources backed by the core
// services in Ports.
type Server struct {
	ports   *Ports
	version string
	server  *mcp.Server
}

// NewServer wires the given services into a ready-to-run MCP server.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{ports: ports, version: defaultVersion}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: s.version,
	}, nil)
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves MCP over stdin and stdout until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr. It blocks until
// ctx is cancelled, then shuts the listener down gracefully.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
