// Package testutils holds fixtures shared by tunegate tests.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Project describes a project directory to write for a test.
type Project struct {
	// Pipeline and Policies are component configs; each needs a "name".
	Pipeline []map[string]any
	Policies []map[string]any

	Intents   []string
	Actions   []string
	Responses []string

	// Examples maps intents to example texts.
	Examples map[string][]string
}

// NewProject returns a small greet/goodbye assistant.
func NewProject() *Project {
	return &Project{
		Pipeline: []map[string]any{
			{"name": "WhitespaceTokenizer"},
			{"name": "DIETClassifier", "epochs": 100},
		},
		Policies: []map[string]any{
			{"name": "TEDPolicy", "epochs": 40, "max_history": 5},
		},
		Intents:   []string{"greet", "goodbye"},
		Responses: []string{"utter_greet", "utter_bye"},
		Examples: map[string][]string{
			"greet":   {"hey", "hello there"},
			"goodbye": {"bye"},
		},
	}
}

// Write renders the project as config.yml, domain.yml and data/nlu.yml
// below dir, replacing any previous files.
func (p *Project) Write(dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		return err
	}

	config := map[string]any{
		"language": "en",
		"pipeline": p.Pipeline,
		"policies": p.Policies,
	}
	if err := writeYAML(filepath.Join(dir, "config.yml"), config); err != nil {
		return err
	}

	responses := make(map[string][]map[string]string, len(p.Responses))
	for _, r := range p.Responses {
		responses[r] = []map[string]string{{"text": "text for " + r}}
	}
	domain := map[string]any{
		"intents":   p.Intents,
		"actions":   p.Actions,
		"responses": responses,
	}
	if err := writeYAML(filepath.Join(dir, "domain.yml"), domain); err != nil {
		return err
	}

	intents := make([]string, 0, len(p.Examples))
	for intent := range p.Examples {
		intents = append(intents, intent)
	}
	slices.Sort(intents)

	blocks := make([]map[string]string, 0, len(intents))
	for _, intent := range intents {
		var b strings.Builder
		for _, ex := range p.Examples[intent] {
			fmt.Fprintf(&b, "- %s\n", ex)
		}
		blocks = append(blocks, map[string]string{"intent": intent, "examples": b.String()})
	}
	return writeYAML(filepath.Join(dir, "data", "nlu.yml"), map[string]any{"nlu": blocks})
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}
