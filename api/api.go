package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/tunegate/api/mcp"
	"github.com/papercomputeco/tunegate/pkg/gate"
)

// Server is the API server for the tunegate snapshot store.
type Server struct {
	config Config
	gate   *gate.Gate
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The gate is shared with the caller,
// which stays responsible for closing it.
func NewServer(config Config, g *gate.Gate, logger *slog.Logger) (*Server, error) {
	if g == nil {
		return nil, errors.New("gate is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		gate:   g,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Get("/snapshots", s.handleListSnapshots)
	v1.Get("/snapshots/:resource", s.handleGetSnapshot)
	v1.Delete("/snapshots/:resource", s.handleDeleteSnapshot)
	v1.Post("/train/:resource", s.handleTrain)
	v1.Post("/validate/:resource", s.handleValidate)
	v1.Post("/diff/:resource", s.handleDiff)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Gate:   g,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
