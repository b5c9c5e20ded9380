package config

import "slices"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverInMemory = "inmemory"
)

// Event stream providers.
const (
	EventStreamNop   = "nop"
	EventStreamKafka = "kafka"
)

const (
	defaultDriver    = DriverSQLite
	defaultResource  = "finetuning_validator"
	defaultAPIListen = ":8081"

	defaultEventStreamProvider = EventStreamNop
	defaultEventStreamTopic    = "tunegate.validations"
	defaultEventStreamWorkers  = 2
	defaultEventStreamQueue    = 128

	// DefaultSQLiteFile is the database file created in the .tunegate/
	// directory when no sqlite path is configured.
	DefaultSQLiteFile = "tunegate.sqlite"
)

var defaultIgnoredFields = []string{"epochs"}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultDriver,
		},
		Finetune: FinetuneConfig{
			Resource:      defaultResource,
			IgnoredFields: slices.Clone(defaultIgnoredFields),
		},
		Project: ProjectConfig{
			Dir: ".",
		},
		EventStream: EventStreamConfig{
			Provider:  defaultEventStreamProvider,
			Topic:     defaultEventStreamTopic,
			Workers:   defaultEventStreamWorkers,
			QueueSize: defaultEventStreamQueue,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
