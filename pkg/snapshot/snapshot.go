// Package snapshot models the training-time record a finetuning validation
// compares against.
package snapshot

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/tunegate/pkg/diff"
	"github.com/papercomputeco/tunegate/pkg/fingerprint"
	"github.com/papercomputeco/tunegate/pkg/project"
)

// NodeSnapshot is the recorded configuration of one pipeline node.
type NodeSnapshot struct {
	// Uses is the component implementing the node.
	Uses string `json:"uses"`

	// Config is the JSON-normalized parameter set, ignored fields included.
	Config map[string]any `json:"config"`

	// Fingerprint hashes Uses and Config with the ignored fields removed.
	Fingerprint string `json:"fingerprint"`
}

// Snapshot is written at the end of a successful validation and replaced as a
// whole by the next one. It is never edited in place once persisted.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// FrameworkVersion is the framework version that produced the snapshot.
	FrameworkVersion string `json:"framework_version"`

	// Finetuned is set when the snapshot was written by a finetuning run.
	Finetuned bool `json:"finetuned"`

	// DomainActions is the sorted set of action and response identifiers.
	DomainActions []string `json:"domain_action_names"`

	// Nodes maps pipeline node ids to their recorded configuration.
	Nodes map[string]NodeSnapshot `json:"node_configs"`

	// Labels maps each label key to the sorted set of values seen in the
	// training data. Keys without values are absent.
	Labels map[project.LabelKey][]string `json:"label_values"`

	// IgnoredFields lists the config fields excluded from node fingerprints.
	IgnoredFields []string `json:"ignored_fields,omitempty"`

	// Fingerprint hashes everything above except ID, CreatedAt and Finetuned.
	Fingerprint string `json:"fingerprint"`
}

// CaptureInput holds the live inputs a snapshot is derived from.
type CaptureInput struct {
	Schema           project.Schema
	Domain           *project.Domain
	TrainingData     *project.TrainingData
	FrameworkVersion string
	IgnoredFields    []string
	Now              time.Time
}

// Capture derives a sealed snapshot from the live inputs.
func Capture(in CaptureInput) (*Snapshot, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	s := &Snapshot{
		ID:               uuid.NewString(),
		CreatedAt:        now.UTC(),
		FrameworkVersion: in.FrameworkVersion,
		DomainActions:    in.Domain.ActionNames(),
		Nodes:            make(map[string]NodeSnapshot, len(in.Schema.Nodes)),
		Labels:           make(map[project.LabelKey][]string),
		IgnoredFields:    slices.Clone(in.IgnoredFields),
	}

	for id, node := range in.Schema.Nodes {
		ns, err := NewNodeSnapshot(node, in.IgnoredFields)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", id, err)
		}
		s.Nodes[id] = ns
	}

	for key, values := range in.TrainingData.LabelValues() {
		s.Labels[key] = diff.SortedKeys(values)
	}

	if err := s.Seal(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewNodeSnapshot normalizes a schema node and fingerprints it without the
// ignored fields.
func NewNodeSnapshot(node project.SchemaNode, ignored []string) (NodeSnapshot, error) {
	config, err := fingerprint.Normalize(node.Config)
	if err != nil {
		return NodeSnapshot{}, err
	}

	fp, err := fingerprint.Of(struct {
		Uses   string         `json:"uses"`
		Config map[string]any `json:"config"`
	}{
		Uses:   node.Uses,
		Config: diff.Strip(config, diff.WithIgnoredFields(ignored...)),
	})
	if err != nil {
		return NodeSnapshot{}, err
	}

	return NodeSnapshot{Uses: node.Uses, Config: config, Fingerprint: fp}, nil
}

// Seal recomputes the snapshot fingerprint. Call it after replacing any part
// of an unpersisted snapshot.
func (s *Snapshot) Seal() error {
	nodes := make(map[string]string, len(s.Nodes))
	for id, n := range s.Nodes {
		nodes[id] = n.Fingerprint
	}

	fp, err := fingerprint.Of(struct {
		FrameworkVersion string                        `json:"framework_version"`
		DomainActions    []string                      `json:"domain_action_names"`
		Nodes            map[string]string             `json:"node_configs"`
		Labels           map[project.LabelKey][]string `json:"label_values"`
	}{
		FrameworkVersion: s.FrameworkVersion,
		DomainActions:    s.DomainActions,
		Nodes:            nodes,
		Labels:           s.Labels,
	})
	if err != nil {
		return fmt.Errorf("fingerprinting snapshot: %w", err)
	}

	s.Fingerprint = fp
	return nil
}

// Unmarshal decodes a persisted snapshot. Node configs come back in the same
// canonical form NewNodeSnapshot produces, so integers keep full precision.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := fingerprint.Decode(data, &s); err != nil {
		return nil, err
	}
	for _, n := range s.Nodes {
		fingerprint.Canonicalize(n.Config)
	}
	return &s, nil
}

// NodeIDs returns the sorted node ids.
func (s *Snapshot) NodeIDs() []string {
	return slices.Sorted(maps.Keys(s.Nodes))
}

// LabelKeys returns the sorted label keys that have values.
func (s *Snapshot) LabelKeys() []project.LabelKey {
	return slices.Sorted(maps.Keys(s.Labels))
}

// Validate checks that a snapshot read back from storage is usable.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New("nil snapshot")
	}

	var errs []error
	if strings.TrimSpace(s.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if s.CreatedAt.IsZero() {
		errs = append(errs, errors.New("created_at is required"))
	}
	if strings.TrimSpace(s.FrameworkVersion) == "" {
		errs = append(errs, errors.New("framework_version is required"))
	}
	if s.Nodes == nil {
		errs = append(errs, errors.New("node_configs must be an object (not null)"))
	}
	for id, n := range s.Nodes {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, errors.New("node id must not be empty"))
		}
		if n.Fingerprint == "" {
			errs = append(errs, fmt.Errorf("node %q has no fingerprint", id))
		}
	}
	if strings.TrimSpace(s.Fingerprint) == "" {
		errs = append(errs, errors.New("fingerprint is required"))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
