package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/tunegate/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the TUNEGATE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (TUNEGATE_STORAGE_DRIVER, TUNEGATE_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
		v.Set(dirKey, target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: TUNEGATE_STORAGE_DRIVER, TUNEGATE_EVENTSTREAM_TOPIC, etc.
	v.SetEnvPrefix("TUNEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// dirKey holds the resolved .tunegate/ directory. It is not a config key.
const dirKey = "_dir"

// Dir returns the .tunegate/ directory InitViper resolved.
func Dir(v *viper.Viper) string {
	return v.GetString(dirKey)
}

// FromViper materializes the effective configuration after flags,
// environment, file and defaults have been merged.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		Finetune: FinetuneConfig{
			Resource:                 v.GetString("finetune.resource"),
			IgnoredFields:            getList(v, "finetune.ignored_fields"),
			MinimumCompatibleVersion: v.GetString("finetune.minimum_compatible_version"),
		},
		Project: ProjectConfig{
			Dir: v.GetString("project.dir"),
		},
		EventStream: EventStreamConfig{
			Provider:  v.GetString("eventstream.provider"),
			Brokers:   getList(v, "eventstream.brokers"),
			Topic:     v.GetString("eventstream.topic"),
			Async:     v.GetBool("eventstream.async"),
			Workers:   v.GetUint("eventstream.workers"),
			QueueSize: v.GetUint("eventstream.queue_size"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Log: LogConfig{
			JSON:   v.GetBool("log.json"),
			Pretty: v.GetBool("log.pretty"),
			File:   v.GetString("log.file"),
		},
	}
}

// getList reads a list key that may come from TOML as an array or from the
// environment as a comma separated string.
func getList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		out = append(out, SplitList(item)...)
	}
	return out
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Finetune
	v.SetDefault("finetune.resource", d.Finetune.Resource)
	v.SetDefault("finetune.ignored_fields", d.Finetune.IgnoredFields)
	v.SetDefault("finetune.minimum_compatible_version", d.Finetune.MinimumCompatibleVersion)

	// Project
	v.SetDefault("project.dir", d.Project.Dir)

	// Event stream
	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
	v.SetDefault("eventstream.async", d.EventStream.Async)
	v.SetDefault("eventstream.workers", d.EventStream.Workers)
	v.SetDefault("eventstream.queue_size", d.EventStream.QueueSize)

	// API
	v.SetDefault("api.listen", d.API.Listen)

	// Log
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.pretty", d.Log.Pretty)
	v.SetDefault("log.file", d.Log.File)
}
