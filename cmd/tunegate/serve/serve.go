// Package servecmder provides the serve command, which runs the tunegate HTTP
// API and MCP server.
package servecmder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/api"
	"github.com/papercomputeco/tunegate/cmd/tunegate/cmdutil"
	"github.com/papercomputeco/tunegate/pkg/config"
	"github.com/papercomputeco/tunegate/pkg/gate"
	"github.com/papercomputeco/tunegate/pkg/logger"
)

type serveCommander struct {
	store cmdutil.StoreOptions

	listen       string
	minVersion   string
	eventStream  string
	eventTopic   string
	eventAsync   bool
	eventWorkers uint
	logJSON      bool
	logFile      string
	disableMCP   bool
}

const serveLongDesc string = `Run the tunegate API server.

Serves the snapshot store over HTTP so training and CI jobs can record and
validate snapshots remotely:
  GET    /v1/snapshots               List stored snapshots
  GET    /v1/snapshots/:resource     Show one snapshot
  DELETE /v1/snapshots/:resource     Delete a snapshot
  POST   /v1/train/:resource         Record a snapshot
  POST   /v1/validate/:resource      Validate and replace a snapshot
  POST   /v1/diff/:resource          Report every mismatch
  /mcp                               MCP tools for agents (unless --no-mcp)

Validation outcomes can be published to Kafka with --eventstream kafka.
With --log-file every request is also written as JSON to that file.

Examples:
  tunegate serve
  tunegate serve --listen :9000 --storage postgres --postgres-dsn postgres://localhost/tunegate
  tunegate serve --eventstream kafka --eventstream-async --log-file audit.jsonl`

const serveShortDesc string = "Run the tunegate API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmder.store.AddFlags(cmd)
	cmder.store.Keys = []string{
		config.FlagAPIListen,
		config.FlagMinVersion,
		config.FlagEventStream,
		config.FlagEventStreamTopic,
		config.FlagEventStreamAsync,
		config.FlagEventWorkers,
		config.FlagLogJSON,
		config.FlagLogFile,
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagMinVersion, &cmder.minVersion)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStream, &cmder.eventStream)
	config.AddStringFlag(cmd, config.Registry, config.FlagEventStreamTopic, &cmder.eventTopic)
	config.AddBoolFlag(cmd, config.Registry, config.FlagEventStreamAsync, &cmder.eventAsync)
	config.AddUintFlag(cmd, config.Registry, config.FlagEventWorkers, &cmder.eventWorkers)
	config.AddBoolFlag(cmd, config.Registry, config.FlagLogJSON, &cmder.logJSON)
	config.AddStringFlag(cmd, config.Registry, config.FlagLogFile, &cmder.logFile)
	cmd.Flags().BoolVar(&cmder.disableMCP, "no-mcp", false, "Do not mount the MCP server on /mcp")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := c.store.Load(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := newServeLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	g, err := gate.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer g.Close()

	server, err := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		DisableMCP: c.disableMCP,
	}, g, log)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	log.Info("snapshot store ready",
		"storage", cfg.Storage.Driver,
		"resource", cfg.Finetune.Resource,
		"eventstream", cfg.EventStream.Provider,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutting down API server: %w", err)
		}
		return nil
	}
}

// newServeLogger logs to stderr at info level, or debug with --debug. With a
// log file configured every record is also appended to it as JSON.
func newServeLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func(), error) {
	debug, _ := cmd.Flags().GetBool("debug")

	console := logger.New(
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithDebug(debug),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithPretty(!cfg.Log.JSON),
	)

	if cfg.Log.File == "" {
		return console, func() {}, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	audit := logger.New(
		logger.WithWriter(f),
		logger.WithDebug(debug),
		logger.WithJSON(true),
	)

	closeFn := func() {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			console.Warn("closing log file", "error", err)
		}
	}
	return logger.Multi(console, audit), closeFn, nil
}
