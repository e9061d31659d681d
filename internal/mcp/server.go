// Package mcp serves pith documents to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/moradology/pith/internal/config"
	"github.com/moradology/pith/internal/tokens"
)

// ServerName is the name reported to MCP clients.
const ServerName = "pith"

// Server exposes the tree, codemap, context and tokens tools for one
// project root.
type Server struct {
	root string
	cfg  *config.Config
	mcp  *server.MCPServer

	mu       sync.Mutex
	counters map[tokens.Encoding]*tokens.Counter
}

// NewServer registers every pith tool. Relative tool paths resolve against
// root; cfg supplies defaults that tool arguments override.
func NewServer(root string, cfg *config.Config, version string) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	s := &Server{
		root:     abs,
		cfg:      cfg,
		counters: make(map[tokens.Encoding]*tokens.Counter),
	}
	s.mcp = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddTreeTool(s.mcp, s)
	AddCodemapTool(s.mcp, s)
	AddContextTool(s.mcp, s)
	AddTokensTool(s.mcp, s)

	return s, nil
}

// Serve runs the stdio transport until the client disconnects, a signal
// arrives or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio for %s...", s.root)
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the token caches.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for enc, c := range s.counters {
		c.Close()
		delete(s.counters, enc)
	}
	return nil
}

// counter returns the shared memoizing counter for enc. Counters live for
// the server's lifetime so repeated requests hit the cache.
func (s *Server) counter(enc tokens.Encoding) (*tokens.Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.counters[enc]; ok {
		return c, nil
	}
	c, err := tokens.NewCachedCounter(enc, s.cfg.Tokens.CacheSize)
	if err != nil {
		return nil, err
	}
	s.counters[enc] = c
	return c, nil
}

// resolve maps a tool path argument onto the filesystem.
func (s *Server) resolve(path string) string {
	switch {
	case path == "":
		return s.root
	case filepath.IsAbs(path):
		return filepath.Clean(path)
	default:
		return filepath.Join(s.root, path)
	}
}
