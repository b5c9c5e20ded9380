package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config.yml"
	DefaultDomainFile = "domain.yml"
	DefaultDataDir    = "data"
)

// FileImporter loads a project laid out as
//
//	<dir>/config.yml   pipeline and policies
//	<dir>/domain.yml   intents, actions, responses
//	<dir>/data/*.yml   nlu examples, stories and rules
type FileImporter struct {
	ConfigPath string
	DomainPath string
	DataPaths  []string
}

// NewFileImporter returns an importer reading the default file layout below dir.
func NewFileImporter(dir string) *FileImporter {
	return &FileImporter{
		ConfigPath: filepath.Join(dir, DefaultConfigFile),
		DomainPath: filepath.Join(dir, DefaultDomainFile),
		DataPaths:  []string{filepath.Join(dir, DefaultDataDir)},
	}
}

type configFile struct {
	Pipeline []map[string]any `yaml:"pipeline"`
	Policies []map[string]any `yaml:"policies"`
}

type dataFile struct {
	NLU []struct {
		Intent   string `yaml:"intent"`
		Examples string `yaml:"examples"`
	} `yaml:"nlu"`
	Stories []storyBlock `yaml:"stories"`
	Rules   []storyBlock `yaml:"rules"`
}

type storyBlock struct {
	Steps []struct {
		Intent string `yaml:"intent"`
		Action string `yaml:"action"`
	} `yaml:"steps"`
}

// Schema reads the pipeline schema from the config file. Pipeline entries
// become nodes "nlu_<name>_<index>", policies "core_<name>_<index>".
func (f *FileImporter) Schema(_ context.Context) (Schema, error) {
	var cfg configFile
	if err := readYAML(f.ConfigPath, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Schema{Nodes: map[string]SchemaNode{}}, nil
		}
		return Schema{}, err
	}

	schema := Schema{Nodes: make(map[string]SchemaNode, len(cfg.Pipeline)+len(cfg.Policies))}
	add := func(prefix string, entries []map[string]any) error {
		for i, entry := range entries {
			name, _ := entry["name"].(string)
			if name == "" {
				return fmt.Errorf("%s: %s entry %d has no name", f.ConfigPath, prefix, i)
			}

			config := make(map[string]any, len(entry)-1)
			for k, v := range entry {
				if k != "name" {
					config[k] = v
				}
			}

			schema.Nodes[fmt.Sprintf("%s_%s_%d", prefix, name, i)] = SchemaNode{
				Uses:   name,
				Config: config,
			}
		}
		return nil
	}

	if err := add("nlu", cfg.Pipeline); err != nil {
		return Schema{}, err
	}
	if err := add("core", cfg.Policies); err != nil {
		return Schema{}, err
	}
	return schema, nil
}

// Domain reads the domain file. A missing file yields an empty domain.
func (f *FileImporter) Domain(_ context.Context) (*Domain, error) {
	d := &Domain{}
	if err := readYAML(f.DomainPath, d); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Domain{}, nil
		}
		return nil, err
	}
	return d, nil
}

// TrainingData reads every YAML file below the data paths.
func (f *FileImporter) TrainingData(_ context.Context) (*TrainingData, error) {
	files, err := f.dataFiles()
	if err != nil {
		return nil, err
	}

	td := &TrainingData{}
	for _, path := range files {
		var df dataFile
		if err := readYAML(path, &df); err != nil {
			return nil, err
		}

		for _, block := range df.NLU {
			if block.Intent == "" {
				continue
			}
			for _, text := range parseExamples(block.Examples) {
				td.Examples = append(td.Examples, Message{Text: text, Intent: block.Intent})
			}
		}

		for _, story := range slices.Concat(df.Stories, df.Rules) {
			for _, step := range story.Steps {
				switch {
				case step.Intent != "":
					td.Examples = append(td.Examples, Message{Intent: step.Intent})
				case step.Action != "":
					td.Examples = append(td.Examples, Message{ActionName: step.Action})
				}
			}
		}
	}

	return td, nil
}

// Files returns every file the importer reads that currently exists.
func (f *FileImporter) Files() ([]string, error) {
	files, err := f.dataFiles()
	if err != nil {
		return nil, err
	}
	for _, p := range []string{f.ConfigPath, f.DomainPath} {
		if _, err := os.Stat(p); err == nil {
			files = append(files, p)
		}
	}
	return files, nil
}

func (f *FileImporter) dataFiles() ([]string, error) {
	var files []string
	for _, root := range f.DataPaths {
		info, err := os.Stat(root)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading data path %s: %w", root, err)
		}

		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch filepath.Ext(path) {
			case ".yml", ".yaml":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking data path %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// parseExamples splits a block scalar of "- example" lines.
func parseExamples(block string) []string {
	var out []string
	for line := range strings.SplitSeq(block, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

var (
	_ Importer       = (*FileImporter)(nil)
	_ SchemaProvider = (*FileImporter)(nil)
)
