package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lastRunFile = "last_run.json"
)

// LastRun records the outcome of the most recent train or validate command
// so "tunegate status" can show it without touching the snapshot store.
type LastRun struct {
	// Command is "train" or "validate".
	Command    string    `json:"command"`
	Resource   string    `json:"resource"`
	ProjectDir string    `json:"project_dir"`
	// Revision is the git commit of ProjectDir, if it is in a repository.
	Revision   string    `json:"revision,omitempty"`
	Scope      string    `json:"scope,omitempty"`
	Compatible bool      `json:"compatible"`
	Categories []string  `json:"categories,omitempty"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	At         time.Time `json:"at"`
}

// LoadLastRun loads the last run record from a target .tunegate/last_run.json.
// Returns nil, nil if nothing has run yet.
func (m *Manager) LoadLastRun(overrideDir string) (*LastRun, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, lastRunFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading last run: %w", err)
	}

	run := &LastRun{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("parsing last run: %w", err)
	}

	return run, nil
}

// SaveLastRun persists the run record to a target .tunegate/last_run.json.
func (m *Manager) SaveLastRun(run *LastRun, overrideDir string) error {
	if run == nil {
		return errors.New("cannot save nil run")
	}

	dir, err := m.Ensure(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling last run: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, lastRunFile), data, 0o600); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}

	return nil
}

// ClearLastRun removes the run record. Returns nil if there is none.
func (m *Manager) ClearLastRun(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil || dir == "" {
		return err
	}

	if err := os.Remove(filepath.Join(dir, lastRunFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing last run: %w", err)
	}

	return nil
}
