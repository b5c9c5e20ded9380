// Package cmdutil holds the plumbing shared by the tunegate commands that
// open the snapshot store: flag registration, config resolution, logging and
// validation scope.
package cmdutil

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/tunegate/cmd/tunegate/sqlitepath"
	"github.com/papercomputeco/tunegate/pkg/cliui"
	"github.com/papercomputeco/tunegate/pkg/config"
	"github.com/papercomputeco/tunegate/pkg/dotdir"
	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/gate"
	"github.com/papercomputeco/tunegate/pkg/git"
	"github.com/papercomputeco/tunegate/pkg/logger"
)

// StoreOptions are the storage and resource flags of a command.
type StoreOptions struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Resource    string

	// Keys are extra flag registry keys the command registered itself.
	Keys []string
}

// AddFlags registers the storage flags on cmd.
func (o *StoreOptions) AddFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Registry, config.FlagStorageDriver, &o.Driver)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &o.SQLitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgresDSN, &o.PostgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagResource, &o.Resource)
}

// Load merges flags, environment, config.toml and defaults into the
// effective configuration and resolves the SQLite database path.
func (o *StoreOptions) Load(cmd *cobra.Command) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	keys := append([]string{}, config.StorageFlags...)
	keys = append(keys, o.Keys...)
	config.BindRegisteredFlags(v, cmd, config.Registry, keys)

	cfg := config.FromViper(v)
	if cfg.Storage.Driver == config.DriverSQLite || cfg.Storage.Driver == "" {
		path, err := sqlitepath.ResolveSQLitePath(cfg.Storage.SQLitePath, config.Dir(v))
		if err != nil {
			return nil, fmt.Errorf("resolving sqlite path: %w", err)
		}
		cfg.Storage.SQLitePath = path
	}

	return cfg, nil
}

// Open loads the configuration and opens the gate it describes.
func (o *StoreOptions) Open(ctx context.Context, cmd *cobra.Command) (*gate.Gate, *config.Config, *slog.Logger, error) {
	cfg, err := o.Load(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	log := NewLogger(cmd, cfg)
	g, err := gate.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return g, cfg, log, nil
}

// NewLogger builds the command logger. It writes to stderr and only shows
// warnings unless --debug is set.
func NewLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	return logger.New(
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithLevel(level),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithPretty(!cfg.Log.JSON),
	)
}

// ProjectDir returns the project directory argument, falling back to the
// configured one.
func ProjectDir(args []string, cfg *config.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if cfg.Project.Dir != "" {
		return cfg.Project.Dir
	}
	return "."
}

// AddScopeFlags registers --core and --nlu.
func AddScopeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("core", true, "Check the domain (actions and responses)")
	cmd.Flags().Bool("nlu", true, "Check the NLU training data labels")
}

// Scope reads --core and --nlu. Passing only one of them narrows the scope:
// "--core" alone checks only the domain, "--core=false" alone only the NLU
// data.
func Scope(cmd *cobra.Command) finetune.Scope {
	core, _ := cmd.Flags().GetBool("core")
	nlu, _ := cmd.Flags().GetBool("nlu")

	coreSet := cmd.Flags().Changed("core")
	nluSet := cmd.Flags().Changed("nlu")
	switch {
	case coreSet && !nluSet:
		nlu = !core
	case nluSet && !coreSet:
		core = !nlu
	}

	return finetune.Scope{Core: core, NLU: nlu}
}

// RecordRun saves run as the last run for "tunegate status". Failing to save
// it only prints a warning.
func RecordRun(cmd *cobra.Command, run *dotdir.LastRun) {
	if run.At.IsZero() {
		run.At = time.Now().UTC()
	}
	if run.Revision == "" && run.ProjectDir != "" {
		run.Revision = git.Revision(cmd.Context(), run.ProjectDir)
	}

	configDir, _ := cmd.Flags().GetString("config-dir")
	if err := dotdir.NewManager().SaveLastRun(run, configDir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n",
			cliui.WarnStyle.Render("!"),
			cliui.DimStyle.Render("could not record last run: "+err.Error()),
		)
	}
}
