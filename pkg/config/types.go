package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent tunegate configuration stored as
// config.toml in the .tunegate/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Finetune    FinetuneConfig    `toml:"finetune"`
	Project     ProjectConfig     `toml:"project"`
	EventStream EventStreamConfig `toml:"eventstream"`
	API         APIConfig         `toml:"api"`
	Log         LogConfig         `toml:"log"`
}

// StorageConfig selects where training snapshots are persisted.
type StorageConfig struct {
	// Driver is one of "sqlite", "postgres" or "inmemory".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// FinetuneConfig holds compatibility checker settings.
type FinetuneConfig struct {
	// Resource is the storage key snapshots are persisted under.
	Resource                 string   `toml:"resource,omitempty"`
	IgnoredFields            []string `toml:"ignored_fields,omitempty"`
	MinimumCompatibleVersion string   `toml:"minimum_compatible_version,omitempty"`
}

// ProjectConfig holds the default project location.
type ProjectConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// EventStreamConfig holds validation event publishing settings.
type EventStreamConfig struct {
	// Provider is "nop" (disabled) or "kafka".
	Provider  string   `toml:"provider,omitempty"`
	Brokers   []string `toml:"brokers,omitempty"`
	Topic     string   `toml:"topic,omitempty"`
	Async     bool     `toml:"async,omitempty"`
	Workers   uint     `toml:"workers,omitempty"`
	QueueSize uint     `toml:"queue_size,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	JSON   bool `toml:"json,omitempty"`
	Pretty bool `toml:"pretty,omitempty"`

	// File additionally receives JSON audit logs from "tunegate serve".
	File string `toml:"file,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			switch v {
			case DriverSQLite, DriverPostgres, DriverInMemory:
				c.Storage.Driver = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.driver: %q (expected %s, %s or %s)",
					v, DriverSQLite, DriverPostgres, DriverInMemory)
			}
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"finetune.resource": {
		get: func(c *Config) string { return c.Finetune.Resource },
		set: func(c *Config, v string) error { c.Finetune.Resource = v; return nil },
	},
	"finetune.ignored_fields": {
		get: func(c *Config) string { return strings.Join(c.Finetune.IgnoredFields, ",") },
		set: func(c *Config, v string) error { c.Finetune.IgnoredFields = SplitList(v); return nil },
	},
	"finetune.minimum_compatible_version": {
		get: func(c *Config) string { return c.Finetune.MinimumCompatibleVersion },
		set: func(c *Config, v string) error { c.Finetune.MinimumCompatibleVersion = v; return nil },
	},
	"project.dir": {
		get: func(c *Config) string { return c.Project.Dir },
		set: func(c *Config, v string) error { c.Project.Dir = v; return nil },
	},
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case EventStreamNop, EventStreamKafka:
				c.EventStream.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for eventstream.provider: %q (expected %s or %s)",
					v, EventStreamNop, EventStreamKafka)
			}
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error { c.EventStream.Brokers = SplitList(v); return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"eventstream.async": {
		get: func(c *Config) string { return strconv.FormatBool(c.EventStream.Async) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for eventstream.async: %w", err)
			}
			c.EventStream.Async = b
			return nil
		},
	},
	"eventstream.workers": {
		get: func(c *Config) string { return formatUint(c.EventStream.Workers) },
		set: func(c *Config, v string) error { return parseUint(v, "eventstream.workers", &c.EventStream.Workers) },
	},
	"eventstream.queue_size": {
		get: func(c *Config) string { return formatUint(c.EventStream.QueueSize) },
		set: func(c *Config, v string) error { return parseUint(v, "eventstream.queue_size", &c.EventStream.QueueSize) },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"log.json": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.JSON) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.json: %w", err)
			}
			c.Log.JSON = b
			return nil
		},
	},
	"log.pretty": {
		get: func(c *Config) string { return strconv.FormatBool(c.Log.Pretty) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for log.pretty: %w", err)
			}
			c.Log.Pretty = b
			return nil
		},
	},
	"log.file": {
		get: func(c *Config) string { return c.Log.File },
		set: func(c *Config, v string) error { c.Log.File = v; return nil },
	},
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatUint(n uint) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(n), 10)
}

func parseUint(v, key string, target *uint) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = uint(n)
	return nil
}
