package finetune

import (
	"fmt"
	"slices"
	"strings"

	"github.com/papercomputeco/tunegate/pkg/project"
)

const (
	// DefaultResource is the storage key a checker persists under when no
	// resource is given.
	DefaultResource = "finetuning_validator"

	// MinimumCompatibleVersion is the oldest framework version whose
	// snapshots can be finetuned from.
	MinimumCompatibleVersion = "3.5.0"
)

// DefaultIgnoredFields are the node config fields that may change between
// training and finetuning.
var DefaultIgnoredFields = []string{"epochs"}

// Config is the checker's configuration.
type Config struct {
	// IgnoredFields are excluded from node config comparison.
	IgnoredFields []string `toml:"ignored_fields,omitempty" json:"ignored_fields,omitempty"`

	// MinimumCompatibleVersion overrides the built-in threshold when set.
	MinimumCompatibleVersion string `toml:"minimum_compatible_version,omitempty" json:"minimum_compatible_version,omitempty"`
}

// DefaultConfig returns the default checker configuration.
func DefaultConfig() Config {
	return Config{IgnoredFields: slices.Clone(DefaultIgnoredFields)}
}

// ExecutionContext describes the run the checker is part of.
type ExecutionContext struct {
	// IsFinetuning is set when the run continues training from a baseline.
	IsFinetuning bool

	// Schema is the pipeline the run executes.
	Schema project.Schema

	// FrameworkVersion is recorded into persisted snapshots. Empty uses
	// the running framework version.
	FrameworkVersion string
}

// Scope selects the optional checks of a validation. Schema and version are
// always checked.
type Scope struct {
	Core bool `json:"core"`
	NLU  bool `json:"nlu"`
}

// FullScope checks both domain and training data.
var FullScope = Scope{Core: true, NLU: true}

func (s Scope) String() string {
	switch {
	case s.Core && s.NLU:
		return "core+nlu"
	case s.Core:
		return "core"
	case s.NLU:
		return "nlu"
	default:
		return "schema"
	}
}

// ParseScope parses the String form of a scope. An empty string is the full
// scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "core+nlu", "all":
		return FullScope, nil
	case "core":
		return Scope{Core: true}, nil
	case "nlu":
		return Scope{NLU: true}, nil
	case "schema":
		return Scope{}, nil
	default:
		return Scope{}, fmt.Errorf("unknown scope %q (want core+nlu, core, nlu or schema)", s)
	}
}
