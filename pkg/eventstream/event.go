package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeValidationCompleted is emitted after every validation call,
	// whether it passed or failed.
	EventTypeValidationCompleted = "tunegate.validation.completed"
)

// ValidationEvent is a transport-neutral event payload for one validation.
type ValidationEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	// Resource is the storage key of the validated snapshot.
	Resource string `json:"resource"`

	// Finetuning is set when the run compared against a baseline.
	Finetuning bool `json:"finetuning"`

	Scope      EventScope `json:"scope"`
	Compatible bool       `json:"compatible"`

	// Category is the failing category, empty on success.
	Category string `json:"category,omitempty"`

	Mismatches []EventMismatch `json:"mismatches,omitempty"`

	// SnapshotFingerprint is the fingerprint of the persisted snapshot on
	// success, or of the baseline on failure.
	SnapshotFingerprint string `json:"snapshot_fingerprint,omitempty"`
}

// EventScope records which optional checks the call ran.
type EventScope struct {
	Core bool `json:"core"`
	NLU  bool `json:"nlu"`
}

// EventMismatch is one incompatibility carried by a failed validation.
type EventMismatch struct {
	Category string `json:"category"`
	Subject  string `json:"subject"`
	Detail   string `json:"detail,omitempty"`
}

// NewValidationEvent stamps a fresh event with id, type and time.
func NewValidationEvent(resource string, now time.Time) *ValidationEvent {
	return &ValidationEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeValidationCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		Resource:      resource,
	}
}
