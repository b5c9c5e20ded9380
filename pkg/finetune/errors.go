package finetune

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig is matched by every incompatibility. The current
	// inputs cannot be finetuned from the baseline and need a full retrain.
	ErrInvalidConfig = errors.New("invalid finetuning configuration")

	// ErrIncompatibleSchema matches pipeline node additions, removals and
	// config changes.
	ErrIncompatibleSchema = errors.New("incompatible pipeline schema")

	// ErrIncompatibleVersion matches a baseline recorded by a framework
	// version older than the minimum compatible one.
	ErrIncompatibleVersion = errors.New("incompatible framework version")

	// ErrIncompatibleDomain matches removed domain actions.
	ErrIncompatibleDomain = errors.New("incompatible domain")

	// ErrIncompatibleLabelSet matches removed training label values.
	ErrIncompatibleLabelSet = errors.New("incompatible label set")

	// ErrMissingSnapshot is returned by Load when nothing was persisted for
	// the resource, and matched by finetuning runs without a baseline.
	ErrMissingSnapshot = errors.New("no training snapshot persisted")
)

// Category tags a single mismatch.
type Category string

const (
	CategoryNodeAdded           Category = "schema_node_added"
	CategoryNodeRemoved         Category = "schema_node_removed"
	CategoryConfigChanged       Category = "schema_config_changed"
	CategoryVersionIncompatible Category = "version_incompatible"
	CategoryActionRemoved       Category = "action_removed"
	CategoryLabelRemoved        Category = "label_removed"
	CategoryBaselineMissing     Category = "baseline_missing"
)

// Kind returns the sentinel error the category belongs to.
func (c Category) Kind() error {
	switch c {
	case CategoryNodeAdded, CategoryNodeRemoved, CategoryConfigChanged:
		return ErrIncompatibleSchema
	case CategoryVersionIncompatible:
		return ErrIncompatibleVersion
	case CategoryActionRemoved:
		return ErrIncompatibleDomain
	case CategoryLabelRemoved:
		return ErrIncompatibleLabelSet
	case CategoryBaselineMissing:
		return ErrMissingSnapshot
	default:
		return ErrInvalidConfig
	}
}

// Mismatch is one detected incompatibility.
type Mismatch struct {
	Category Category `json:"category"`

	// Subject is the node id, action, label value or version concerned.
	Subject string `json:"subject"`

	Detail string `json:"detail,omitempty"`
}

func (m Mismatch) String() string {
	if m.Detail == "" {
		return fmt.Sprintf("%s: %s", m.Category, m.Subject)
	}
	return fmt.Sprintf("%s: %s (%s)", m.Category, m.Subject, m.Detail)
}

// IncompatibilityError reports the first failing check of a validation and
// every mismatch that check found.
type IncompatibilityError struct {
	Category   Category
	Mismatches []Mismatch
}

func (e *IncompatibilityError) Error() string {
	var b strings.Builder
	b.WriteString("cannot finetune: ")
	b.WriteString(e.Category.Kind().Error())

	subjects := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		subjects = append(subjects, m.String())
	}
	if len(subjects) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(subjects, "; "))
	}

	b.WriteString(". Train a new model from scratch instead")
	return b.String()
}

// Is matches ErrInvalidConfig and the sentinel of the error's category.
func (e *IncompatibilityError) Is(target error) bool {
	return target == ErrInvalidConfig || target == e.Category.Kind()
}
