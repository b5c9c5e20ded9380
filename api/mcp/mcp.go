// Package mcp provides an MCP (Model Context Protocol) server exposing the
// tunegate snapshot store and compatibility checks as tools.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/tunegate/pkg/gate"
	"github.com/papercomputeco/tunegate/pkg/utils"
)

type Config struct {
	// Gate holds the snapshot store and checker settings.
	Gate *gate.Gate

	// Noop for an MCP server without tools
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the snapshot tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tunegate",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Gate == nil {
			return nil, errors.New("gate is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        snapshotStatusToolName,
			Description: snapshotStatusDescription,
		}, s.handleSnapshotStatus)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        checkCompatibilityToolName,
			Description: checkCompatibilityDescription,
		}, s.handleCheckCompatibility)
	}

	s.mcpServer = mcpServer

	// Stateless streamable HTTP handler
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
