package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --sqlite
// on "tunegate train", "tunegate validate" and "tunegate serve").
type Flag struct {
	// Name is the long flag name (e.g. "sqlite").
	Name string

	// Shorthand is the one-letter short flag (e.g. "s"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "storage.sqlite_path").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagStorageDriver    = "storage"
	FlagSQLite           = "sqlite"
	FlagPostgresDSN      = "postgres-dsn"
	FlagResource         = "resource"
	FlagMinVersion       = "min-version"
	FlagEventStream      = "eventstream"
	FlagEventStreamTopic = "eventstream-topic"
	FlagEventStreamAsync = "eventstream-async"
	FlagEventWorkers     = "eventstream-workers"
	FlagAPIListen        = "listen"
	FlagLogJSON          = "log-json"
	FlagLogFile          = "log-file"
)

// Registry holds the definitions of every shared flag.
var Registry = FlagSet{
	FlagStorageDriver:    {Name: "storage", ViperKey: "storage.driver", Description: "Snapshot storage driver (sqlite, postgres, inmemory)"},
	FlagSQLite:           {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: .tunegate/tunegate.sqlite)"},
	FlagPostgresDSN:      {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagResource:         {Name: "resource", Shorthand: "r", ViperKey: "finetune.resource", Description: "Storage key of the training snapshot"},
	FlagMinVersion:       {Name: "min-version", ViperKey: "finetune.minimum_compatible_version", Description: "Oldest framework version a snapshot may come from"},
	FlagEventStream:      {Name: "eventstream", ViperKey: "eventstream.provider", Description: "Validation event publisher (nop, kafka)"},
	FlagEventStreamTopic: {Name: "eventstream-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for validation events"},
	FlagEventStreamAsync: {Name: "eventstream-async", ViperKey: "eventstream.async", Description: "Publish validation events from background workers"},
	FlagEventWorkers:     {Name: "eventstream-workers", ViperKey: "eventstream.workers", Description: "Number of background event publishing workers"},
	FlagAPIListen:        {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for API server to listen on"},
	FlagLogJSON:          {Name: "log-json", ViperKey: "log.json", Description: "Write logs as JSON"},
	FlagLogFile:          {Name: "log-file", ViperKey: "log.file", Description: "Also write JSON audit logs to this file"},
}

// StorageFlags are the registry keys every command that opens the snapshot
// store registers.
var StorageFlags = []string{
	FlagStorageDriver,
	FlagSQLite,
	FlagPostgresDSN,
	FlagResource,
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
