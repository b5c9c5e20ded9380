package finetune

import (
	"fmt"
	"strings"
)

// Report is the outcome of comparing the current inputs with a baseline.
type Report struct {
	Resource   string `json:"resource"`
	Finetuning bool   `json:"finetuning"`
	Scope      Scope  `json:"scope"`

	BaselineID          string `json:"baseline_id,omitempty"`
	BaselineFingerprint string `json:"baseline_fingerprint,omitempty"`
	BaselineVersion     string `json:"baseline_version,omitempty"`
	CurrentFingerprint  string `json:"current_fingerprint"`

	// Mismatches are ordered schema, version, core, nlu.
	Mismatches []Mismatch `json:"mismatches"`
}

// Compatible reports whether no mismatch was found.
func (r *Report) Compatible() bool {
	return len(r.Mismatches) == 0
}

// Err returns nil for a compatible report, otherwise an
// *IncompatibilityError for the first failing check.
func (r *Report) Err() error {
	if r.Compatible() {
		return nil
	}

	first := r.Mismatches[0].Category
	kind := first.Kind()

	var group []Mismatch
	for _, m := range r.Mismatches {
		if m.Category.Kind() == kind {
			group = append(group, m)
		}
	}
	return &IncompatibilityError{Category: first, Mismatches: group}
}

// Categories returns the distinct mismatch categories in report order.
func (r *Report) Categories() []Category {
	var out []Category
	seen := make(map[Category]struct{})
	for _, m := range r.Mismatches {
		if _, ok := seen[m.Category]; ok {
			continue
		}
		seen[m.Category] = struct{}{}
		out = append(out, m.Category)
	}
	return out
}

// Markdown renders the report as a markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Finetuning compatibility: `%s`\n\n", r.Resource)
	fmt.Fprintf(&b, "- Scope: %s\n", r.Scope)
	if r.BaselineID != "" {
		fmt.Fprintf(&b, "- Baseline: `%s` (framework %s)\n", r.BaselineID, r.BaselineVersion)
	}
	b.WriteString("\n")

	if r.Compatible() {
		b.WriteString("**Compatible.** The model can be finetuned with the current project.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**Incompatible.** %d mismatch(es); train a new model from scratch.\n\n", len(r.Mismatches))
	b.WriteString("| Category | Subject | Detail |\n")
	b.WriteString("|---|---|---|\n")
	for _, m := range r.Mismatches {
		fmt.Fprintf(&b, "| %s | `%s` | %s |\n", m.Category, escapeCell(m.Subject), escapeCell(m.Detail))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
