// Package storage defines the persistence collaborator for training snapshots.
package storage

import (
	"context"
	"time"

	"github.com/papercomputeco/tunegate/pkg/snapshot"
)

// Driver persists one snapshot per resource. A resource is the name a
// checker stores its baseline under, so several pipelines can share a store.
type Driver interface {
	// Put stores the snapshot for the resource, fully replacing any
	// previous one.
	Put(ctx context.Context, resource string, s *snapshot.Snapshot) error

	// Get returns the snapshot stored for the resource, or NotFoundError.
	Get(ctx context.Context, resource string) (*snapshot.Snapshot, error)

	// Has reports whether a snapshot is stored for the resource.
	Has(ctx context.Context, resource string) (bool, error)

	// Delete removes the resource's snapshot. Deleting a missing resource
	// returns NotFoundError.
	Delete(ctx context.Context, resource string) error

	// List returns a summary of every stored snapshot ordered by resource.
	List(ctx context.Context) ([]Entry, error)

	// Close closes the store and releases any resources.
	Close() error
}

// Entry summarizes a stored snapshot without decoding its payload.
type Entry struct {
	Resource    string    `json:"resource"`
	SnapshotID  string    `json:"snapshot_id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}
