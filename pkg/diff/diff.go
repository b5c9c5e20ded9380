// Package diff compares configuration maps and identifier sets.
//
// Field comparison is a recursive structural diff with an explicit allow-list
// of ignored field names. Set comparison supports two policies: ExactMatch,
// where additions and removals are both violations, and SubsetRequired, where
// only removals are.
package diff

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ChangeKind classifies a single field difference.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Change is one differing field. Path is dotted for nested maps.
type Change struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
	Old  any        `json:"old,omitempty"`
	New  any        `json:"new,omitempty"`
}

func (c Change) String() string {
	switch c.Kind {
	case Added:
		return fmt.Sprintf("%s added (%v)", c.Path, c.New)
	case Removed:
		return fmt.Sprintf("%s removed (was %v)", c.Path, c.Old)
	default:
		return fmt.Sprintf("%s changed from %v to %v", c.Path, c.Old, c.New)
	}
}

// Option configures Fields.
type Option func(*options)

type options struct {
	ignored map[string]struct{}
}

// WithIgnoredFields excludes fields with the given names from comparison at
// any nesting depth, including maps held in lists.
func WithIgnoredFields(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.ignored[n] = struct{}{}
		}
	}
}

// Fields returns the differences between two config maps, sorted by path.
func Fields(before, after map[string]any, opts ...Option) []Change {
	o := &options{ignored: make(map[string]struct{})}
	for _, opt := range opts {
		opt(o)
	}

	var changes []Change
	o.walk("", before, after, &changes)
	slices.SortFunc(changes, func(a, b Change) int {
		return strings.Compare(a.Path, b.Path)
	})
	return changes
}

// Strip returns a copy of m without the ignored fields, recursively.
func Strip(m map[string]any, opts ...Option) map[string]any {
	o := &options{ignored: make(map[string]struct{})}
	for _, opt := range opts {
		opt(o)
	}
	return o.strip(m)
}

func (o *options) walk(prefix string, before, after map[string]any, changes *[]Change) {
	for k, ov := range before {
		if o.isIgnored(k) {
			continue
		}
		path := join(prefix, k)
		nv, ok := after[k]
		if !ok {
			*changes = append(*changes, Change{Path: path, Kind: Removed, Old: ov})
			continue
		}

		om, oIsMap := ov.(map[string]any)
		nm, nIsMap := nv.(map[string]any)
		if oIsMap && nIsMap {
			o.walk(path, om, nm, changes)
			continue
		}

		if !reflect.DeepEqual(o.stripValue(ov), o.stripValue(nv)) {
			*changes = append(*changes, Change{Path: path, Kind: Changed, Old: ov, New: nv})
		}
	}

	for k, nv := range after {
		if o.isIgnored(k) {
			continue
		}
		if _, ok := before[k]; !ok {
			*changes = append(*changes, Change{Path: join(prefix, k), Kind: Added, New: nv})
		}
	}
}

func (o *options) strip(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if o.isIgnored(k) {
			continue
		}
		out[k] = o.stripValue(v)
	}
	return out
}

func (o *options) stripValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return o.strip(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = o.stripValue(e)
		}
		return out
	default:
		return v
	}
}

func (o *options) isIgnored(name string) bool {
	_, ok := o.ignored[name]
	return ok
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
