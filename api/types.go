package api

import (
	"time"

	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/project"
)

// ErrorResponse is the body of every 4xx and 5xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CheckRequest carries the live inputs of a train, validate or diff call.
type CheckRequest struct {
	Schema       project.Schema        `json:"schema"`
	Domain       *project.Domain       `json:"domain,omitempty"`
	TrainingData *project.TrainingData `json:"training_data,omitempty"`

	// Core and NLU narrow the scope of validate and diff. Unset means true.
	Core *bool `json:"core,omitempty"`
	NLU  *bool `json:"nlu,omitempty"`
}

// Scope returns the requested validation scope.
func (r *CheckRequest) Scope() finetune.Scope {
	scope := finetune.FullScope
	if r.Core != nil {
		scope.Core = *r.Core
	}
	if r.NLU != nil {
		scope.NLU = *r.NLU
	}
	return scope
}

// Importer serves the request's domain and training data.
func (r *CheckRequest) Importer() *project.StaticImporter {
	return &project.StaticImporter{
		DomainValue:       r.Domain,
		TrainingDataValue: r.TrainingData,
		SchemaValue:       r.Schema,
	}
}

// SnapshotSummary describes one stored snapshot.
type SnapshotSummary struct {
	Resource    string    `json:"resource"`
	SnapshotID  string    `json:"snapshot_id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

// SnapshotListResponse is the body of GET /v1/snapshots.
type SnapshotListResponse struct {
	Snapshots []SnapshotSummary `json:"snapshots"`
	Count     int               `json:"count"`
}

// ValidationResponse is the body of train and validate calls.
type ValidationResponse struct {
	Resource   string `json:"resource"`
	Finetuning bool   `json:"finetuning"`
	Scope      string `json:"scope"`
	Compatible bool   `json:"compatible"`

	SnapshotID  string `json:"snapshot_id,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`

	Category   finetune.Category   `json:"category,omitempty"`
	Mismatches []finetune.Mismatch `json:"mismatches,omitempty"`
	Error      string              `json:"error,omitempty"`
}
