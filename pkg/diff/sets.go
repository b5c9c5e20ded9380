package diff

import (
	"maps"
	"slices"
)

// SetPolicy decides which set differences are violations.
type SetPolicy int

const (
	// ExactMatch requires both sets to hold the same identifiers.
	ExactMatch SetPolicy = iota

	// SubsetRequired requires every old identifier to still be present.
	// New identifiers are allowed.
	SubsetRequired
)

func (p SetPolicy) String() string {
	switch p {
	case ExactMatch:
		return "exact-set-match"
	case SubsetRequired:
		return "subset-required"
	default:
		return "unknown"
	}
}

// SetDelta holds the sorted identifiers present only in the new set (Added)
// and only in the old set (Removed).
type SetDelta struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Violates reports whether the delta breaks the policy.
func (d SetDelta) Violates(policy SetPolicy) bool {
	if len(d.Removed) > 0 {
		return true
	}
	return policy == ExactMatch && len(d.Added) > 0
}

// CompareSets computes the delta between two identifier sets. Duplicates are
// ignored.
func CompareSets(before, after []string) SetDelta {
	oldSet := toSet(before)
	newSet := toSet(after)

	var d SetDelta
	for id := range newSet {
		if _, ok := oldSet[id]; !ok {
			d.Added = append(d.Added, id)
		}
	}
	for id := range oldSet {
		if _, ok := newSet[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	return d
}

// SortedKeys returns the keys of a string set in order.
func SortedKeys(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
