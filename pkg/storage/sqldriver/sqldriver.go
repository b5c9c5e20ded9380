// Package sqldriver implements storage.Driver over database/sql. The sqlite
// and postgres packages embed it and differ only in how they open the
// connection and which placeholder style they use.
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/tunegate/pkg/snapshot"
	"github.com/papercomputeco/tunegate/pkg/storage"
)

// Placeholder selects the bind parameter syntax of a dialect.
type Placeholder int

const (
	// Question binds parameters as "?" (SQLite).
	Question Placeholder = iota

	// Dollar binds parameters as "$1", "$2", ... (PostgreSQL).
	Dollar
)

const schema = `CREATE TABLE IF NOT EXISTS snapshots (
	resource TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
)`

// Driver implements storage.Driver using a *sql.DB.
type Driver struct {
	DB          *sql.DB
	Placeholder Placeholder
}

// New wraps an open database and creates the snapshots table.
func New(ctx context.Context, db *sql.DB, ph Placeholder) (*Driver, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Driver{DB: db, Placeholder: ph}, nil
}

// Put upserts the snapshot for the resource.
func (d *Driver) Put(ctx context.Context, resource string, s *snapshot.Snapshot) error {
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

	query := d.rebind(`INSERT INTO snapshots (resource, id, fingerprint, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (resource) DO UPDATE SET
			id = excluded.id,
			fingerprint = excluded.fingerprint,
			payload = excluded.payload,
			created_at = excluded.created_at`)

	_, err = d.DB.ExecContext(ctx, query,
		resource,
		s.ID,
		s.Fingerprint,
		string(payload),
		s.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot %q: %w", resource, err)
	}
	return nil
}

// Get loads and decodes the snapshot for the resource.
func (d *Driver) Get(ctx context.Context, resource string) (*snapshot.Snapshot, error) {
	var payload string
	err := d.DB.QueryRowContext(ctx,
		d.rebind(`SELECT payload FROM snapshots WHERE resource = ?`),
		resource,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Resource: resource}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q: %w", resource, err)
	}

	s, err := snapshot.Unmarshal([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %q: %w", resource, err)
	}
	return s, nil
}

// Has checks if a snapshot is stored for the resource.
func (d *Driver) Has(ctx context.Context, resource string) (bool, error) {
	var n int
	err := d.DB.QueryRowContext(ctx,
		d.rebind(`SELECT COUNT(*) FROM snapshots WHERE resource = ?`),
		resource,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot %q: %w", resource, err)
	}
	return n > 0, nil
}

// Delete removes the resource's snapshot.
func (d *Driver) Delete(ctx context.Context, resource string) error {
	res, err := d.DB.ExecContext(ctx,
		d.rebind(`DELETE FROM snapshots WHERE resource = ?`),
		resource,
	)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", resource, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", resource, err)
	}
	if n == 0 {
		return storage.NotFoundError{Resource: resource}
	}
	return nil
}

// List returns a summary of every stored snapshot ordered by resource.
func (d *Driver) List(ctx context.Context) ([]storage.Entry, error) {
	rows, err := d.DB.QueryContext(ctx,
		`SELECT resource, id, fingerprint, created_at FROM snapshots ORDER BY resource`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	entries := []storage.Entry{}
	for rows.Next() {
		var (
			e         storage.Entry
			createdAt string
		)
		if err := rows.Scan(&e.Resource, &e.SnapshotID, &e.Fingerprint, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at for %q: %w", e.Resource, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.DB.Close()
}

// rebind rewrites "?" placeholders for the driver's dialect.
func (d *Driver) rebind(query string) string {
	if d.Placeholder != Dollar {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ storage.Driver = (*Driver)(nil)
