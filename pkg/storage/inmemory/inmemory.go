// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/papercomputeco/tunegate/pkg/snapshot"
	"github.com/papercomputeco/tunegate/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of snapshots
	mu sync.RWMutex

	// snapshots holds encoded snapshots keyed by resource. Storing the
	// encoding keeps callers from mutating a persisted snapshot and gives the
	// same value normalization as the SQL drivers.
	snapshots map[string][]byte

	entries map[string]storage.Entry
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		snapshots: make(map[string][]byte),
		entries:   make(map[string]storage.Entry),
	}
}

// Put stores the snapshot for the resource, replacing any previous one.
func (d *Driver) Put(_ context.Context, resource string, s *snapshot.Snapshot) error {
	if strings.TrimSpace(resource) == "" {
		return storage.ErrEmptyResource
	}
	if s == nil {
		return storage.ErrNilSnapshot
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.snapshots[resource] = payload
	d.entries[resource] = storage.Entry{
		Resource:    resource,
		SnapshotID:  s.ID,
		Fingerprint: s.Fingerprint,
		CreatedAt:   s.CreatedAt,
	}
	return nil
}

// Get returns a fresh copy of the stored snapshot.
func (d *Driver) Get(_ context.Context, resource string) (*snapshot.Snapshot, error) {
	d.mu.RLock()
	payload, ok := d.snapshots[resource]
	d.mu.RUnlock()

	if !ok {
		return nil, storage.NotFoundError{Resource: resource}
	}

	s, err := snapshot.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return s, nil
}

// Has checks if a snapshot exists for the resource.
func (d *Driver) Has(_ context.Context, resource string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.snapshots[resource]
	return ok, nil
}

// Delete removes the resource's snapshot.
func (d *Driver) Delete(_ context.Context, resource string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.snapshots[resource]; !ok {
		return storage.NotFoundError{Resource: resource}
	}
	delete(d.snapshots, resource)
	delete(d.entries, resource)
	return nil
}

// List returns every stored entry ordered by resource.
func (d *Driver) List(_ context.Context) ([]storage.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]storage.Entry, 0, len(d.entries))
	for _, e := range d.entries {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b storage.Entry) int {
		return strings.Compare(a.Resource, b.Resource)
	})
	return entries, nil
}

// Count returns the number of stored snapshots.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.snapshots)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
