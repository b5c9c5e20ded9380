package finetune

import (
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/papercomputeco/tunegate/pkg/diff"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/snapshot"
)

// compareSchema requires the same node ids and, per node, the same component
// and config apart from the ignored fields.
func compareSchema(baseline, current *snapshot.Snapshot, ignored []string) []Mismatch {
	var out []Mismatch

	delta := diff.CompareSets(baseline.NodeIDs(), current.NodeIDs())
	for _, id := range delta.Added {
		out = append(out, Mismatch{
			Category: CategoryNodeAdded,
			Subject:  id,
			Detail:   "uses " + current.Nodes[id].Uses,
		})
	}
	for _, id := range delta.Removed {
		out = append(out, Mismatch{
			Category: CategoryNodeRemoved,
			Subject:  id,
			Detail:   "uses " + baseline.Nodes[id].Uses,
		})
	}

	for _, id := range baseline.NodeIDs() {
		after, ok := current.Nodes[id]
		if !ok {
			continue
		}
		before := baseline.Nodes[id]

		if before.Uses != after.Uses {
			out = append(out, Mismatch{
				Category: CategoryConfigChanged,
				Subject:  id,
				Detail:   fmt.Sprintf("component changed from %s to %s", before.Uses, after.Uses),
			})
			continue
		}

		for _, change := range diff.Fields(before.Config, after.Config, diff.WithIgnoredFields(ignored...)) {
			out = append(out, Mismatch{
				Category: CategoryConfigChanged,
				Subject:  id,
				Detail:   change.String(),
			})
		}
	}

	return out
}

// compareVersion fails baselines recorded by a version older than minimum.
// Versions are ordered semantically, so 3.10.0 is newer than 3.9.0.
func compareVersion(recorded string, minimum *semver.Version) []Mismatch {
	v, err := semver.NewVersion(recorded)
	if err != nil {
		return []Mismatch{{
			Category: CategoryVersionIncompatible,
			Subject:  recorded,
			Detail:   "recorded version is not a semantic version",
		}}
	}

	if v.LessThan(minimum) {
		return []Mismatch{{
			Category: CategoryVersionIncompatible,
			Subject:  recorded,
			Detail:   "older than minimum compatible version " + minimum.String(),
		}}
	}
	return nil
}

// compareDomain requires every baseline action to still exist.
func compareDomain(baseline, current *snapshot.Snapshot) []Mismatch {
	var out []Mismatch

	delta := diff.CompareSets(baseline.DomainActions, current.DomainActions)
	if !delta.Violates(diff.SubsetRequired) {
		return nil
	}
	for _, name := range delta.Removed {
		out = append(out, Mismatch{
			Category: CategoryActionRemoved,
			Subject:  name,
		})
	}
	return out
}

// compareLabels requires every baseline label value to still exist under the
// same label key.
func compareLabels(baseline, current *snapshot.Snapshot) []Mismatch {
	var out []Mismatch

	keys := slices.Clone(project.LabelKeys)
	for _, k := range baseline.LabelKeys() {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}

	for _, key := range keys {
		delta := diff.CompareSets(baseline.Labels[key], current.Labels[key])
		if !delta.Violates(diff.SubsetRequired) {
			continue
		}
		for _, value := range delta.Removed {
			out = append(out, Mismatch{
				Category: CategoryLabelRemoved,
				Subject:  value,
				Detail:   fmt.Sprintf("no longer a %s label", key),
			})
		}
	}
	return out
}
