// Package finetune decides whether a trained pipeline may be finetuned
// against changed inputs instead of being retrained from scratch.
//
// A Checker compares a snapshot persisted by an earlier training run (the
// baseline) with the live pipeline schema, domain and training data. Node ids
// must match exactly, node configs may only differ in ignored fields, and the
// baseline must come from a compatible framework version. Domain actions and
// label values may be added but never removed. Every successful validation
// replaces the persisted snapshot.
package finetune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/snapshot"
	"github.com/papercomputeco/tunegate/pkg/storage"
	"github.com/papercomputeco/tunegate/pkg/utils"
)

// Checker validates finetuning compatibility for one resource. It is not
// safe for concurrent use.
type Checker struct {
	config   Config
	exec     ExecutionContext
	store    storage.Driver
	resource string

	// baseline is nil for checkers built with New until the first
	// successful validation.
	baseline *snapshot.Snapshot

	minVersionRaw string
	minVersion    *semver.Version

	logger    *slog.Logger
	publisher eventstream.Publisher
	now       func() time.Time
}

// New creates a checker without a baseline. It is what a full training run
// uses; finetuning with it always fails.
func New(cfg Config, exec ExecutionContext, store storage.Driver, resource string, opts ...Option) (*Checker, error) {
	if store == nil {
		return nil, errors.New("finetune: storage driver is required")
	}
	if resource == "" {
		resource = DefaultResource
	}
	if cfg.IgnoredFields == nil {
		cfg.IgnoredFields = DefaultConfig().IgnoredFields
	}
	if exec.FrameworkVersion == "" {
		exec.FrameworkVersion = utils.FrameworkVersion
	}

	c := &Checker{
		config:        cfg,
		exec:          exec,
		store:         store,
		resource:      resource,
		minVersionRaw: cfg.MinimumCompatibleVersion,
		logger:        slog.New(slog.DiscardHandler),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.minVersionRaw == "" {
		c.minVersionRaw = MinimumCompatibleVersion
	}
	v, err := semver.NewVersion(c.minVersionRaw)
	if err != nil {
		return nil, fmt.Errorf("finetune: invalid minimum compatible version %q: %w", c.minVersionRaw, err)
	}
	c.minVersion = v

	c.logger = c.logger.With("resource", resource)
	return c, nil
}

// Load creates a checker whose baseline is the snapshot persisted for the
// resource. It returns ErrMissingSnapshot when there is none.
func Load(ctx context.Context, cfg Config, exec ExecutionContext, store storage.Driver, resource string, opts ...Option) (*Checker, error) {
	c, err := New(cfg, exec, store, resource, opts...)
	if err != nil {
		return nil, err
	}

	s, err := store.Get(ctx, c.resource)
	if storage.IsNotFound(err) {
		return nil, fmt.Errorf("%w for resource %q", ErrMissingSnapshot, c.resource)
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %q: %w", c.resource, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %q is corrupt: %w", c.resource, err)
	}

	c.baseline = s
	c.logger.Debug("baseline loaded",
		"snapshot_id", s.ID,
		"framework_version", s.FrameworkVersion,
		"nodes", len(s.Nodes),
	)
	return c, nil
}

// Resource returns the storage key the checker persists under.
func (c *Checker) Resource() string {
	return c.resource
}

// Baseline returns the snapshot the next finetuning validation compares
// against, or nil.
func (c *Checker) Baseline() *snapshot.Snapshot {
	return c.baseline
}

// Validate checks both the domain and the training data.
func (c *Checker) Validate(ctx context.Context, imp project.Importer) error {
	return c.ValidateScope(ctx, imp, FullScope)
}

// ValidateCoreOnly checks the domain but not the training data.
func (c *Checker) ValidateCoreOnly(ctx context.Context, imp project.Importer) error {
	return c.ValidateScope(ctx, imp, Scope{Core: true})
}

// ValidateNLUOnly checks the training data but not the domain.
func (c *Checker) ValidateNLUOnly(ctx context.Context, imp project.Importer) error {
	return c.ValidateScope(ctx, imp, Scope{NLU: true})
}

// ValidateScope runs a validation. Outside finetuning mode it only records a
// fresh snapshot. In finetuning mode it returns an *IncompatibilityError for
// the first failing check, in the order schema, version, core, nlu, and
// persists nothing on failure.
func (c *Checker) ValidateScope(ctx context.Context, imp project.Importer, scope Scope) error {
	current, report, err := c.evaluate(ctx, imp, scope, c.exec.IsFinetuning)
	if err != nil {
		return err
	}

	if !report.Compatible() {
		c.logger.Warn("finetuning validation failed",
			"scope", scope.String(),
			"mismatches", len(report.Mismatches),
		)
		c.publish(ctx, report, report.BaselineFingerprint)
		return report.Err()
	}

	if c.exec.IsFinetuning {
		c.carryOver(current, scope)
		if err := current.Seal(); err != nil {
			return err
		}
	}

	if err := c.store.Put(ctx, c.resource, current); err != nil {
		return fmt.Errorf("persisting snapshot %q: %w", c.resource, err)
	}
	c.baseline = current

	c.logger.Info("snapshot persisted",
		"finetuning", c.exec.IsFinetuning,
		"scope", scope.String(),
		"snapshot_id", current.ID,
		"fingerprint", current.Fingerprint,
	)
	c.publish(ctx, report, current.Fingerprint)
	return nil
}

// Report compares the current inputs with the baseline and returns every
// mismatch without persisting anything. It compares in either mode.
func (c *Checker) Report(ctx context.Context, imp project.Importer, scope Scope) (*Report, error) {
	_, report, err := c.evaluate(ctx, imp, scope, true)
	return report, err
}

func (c *Checker) evaluate(ctx context.Context, imp project.Importer, scope Scope, compare bool) (*snapshot.Snapshot, *Report, error) {
	if imp == nil {
		return nil, nil, errors.New("finetune: importer is required")
	}

	domain, err := imp.Domain(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading domain: %w", err)
	}
	data, err := imp.TrainingData(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("reading training data: %w", err)
	}

	current, err := snapshot.Capture(snapshot.CaptureInput{
		Schema:           c.exec.Schema,
		Domain:           domain,
		TrainingData:     data,
		FrameworkVersion: c.exec.FrameworkVersion,
		IgnoredFields:    c.config.IgnoredFields,
		Now:              c.now(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("capturing current state: %w", err)
	}
	current.Finetuned = c.exec.IsFinetuning

	report := &Report{
		Resource:           c.resource,
		Finetuning:         c.exec.IsFinetuning,
		Scope:              scope,
		CurrentFingerprint: current.Fingerprint,
		Mismatches:         []Mismatch{},
	}
	if !compare {
		return current, report, nil
	}

	if c.baseline == nil {
		report.Mismatches = append(report.Mismatches, Mismatch{
			Category: CategoryBaselineMissing,
			Subject:  c.resource,
			Detail:   "no model was trained before finetuning",
		})
		return current, report, nil
	}

	report.BaselineID = c.baseline.ID
	report.BaselineFingerprint = c.baseline.Fingerprint
	report.BaselineVersion = c.baseline.FrameworkVersion

	report.Mismatches = append(report.Mismatches, compareSchema(c.baseline, current, c.config.IgnoredFields)...)
	report.Mismatches = append(report.Mismatches, compareVersion(c.baseline.FrameworkVersion, c.minVersion)...)
	if scope.Core {
		report.Mismatches = append(report.Mismatches, compareDomain(c.baseline, current)...)
	}
	if scope.NLU {
		report.Mismatches = append(report.Mismatches, compareLabels(c.baseline, current)...)
	}

	c.logger.Debug("compared against baseline",
		"baseline_id", c.baseline.ID,
		"scope", scope.String(),
		"mismatches", len(report.Mismatches),
	)
	return current, report, nil
}

// carryOver keeps the baseline's domain actions or label values when the
// call did not check them, so a narrowed validation cannot erase them.
func (c *Checker) carryOver(current *snapshot.Snapshot, scope Scope) {
	if c.baseline == nil {
		return
	}
	if !scope.Core {
		current.DomainActions = c.baseline.DomainActions
	}
	if !scope.NLU {
		current.Labels = c.baseline.Labels
	}
}

func (c *Checker) publish(ctx context.Context, report *Report, fingerprint string) {
	if c.publisher == nil {
		return
	}

	event := eventstream.NewValidationEvent(c.resource, c.now())
	event.Finetuning = report.Finetuning
	event.Scope = eventstream.EventScope{Core: report.Scope.Core, NLU: report.Scope.NLU}
	event.Compatible = report.Compatible()
	event.SnapshotFingerprint = fingerprint
	if !event.Compatible {
		event.Category = string(report.Mismatches[0].Category)
	}
	for _, m := range report.Mismatches {
		event.Mismatches = append(event.Mismatches, eventstream.EventMismatch{
			Category: string(m.Category),
			Subject:  m.Subject,
			Detail:   m.Detail,
		})
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish validation event",
			"event_id", event.EventID,
			"error", err,
		)
	}
}
