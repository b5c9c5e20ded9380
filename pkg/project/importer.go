package project

import "context"

// Importer provides the domain and corpus of a training or finetuning run.
type Importer interface {
	// Domain returns the dialogue domain.
	Domain(ctx context.Context) (*Domain, error)

	// TrainingData returns the NLU training corpus.
	TrainingData(ctx context.Context) (*TrainingData, error)
}

// SchemaProvider provides the pipeline schema a run executes.
type SchemaProvider interface {
	Schema(ctx context.Context) (Schema, error)
}

// StaticImporter serves inputs held in memory.
type StaticImporter struct {
	DomainValue       *Domain
	TrainingDataValue *TrainingData
	SchemaValue       Schema
}

// Domain returns the held domain, or an empty one.
func (s *StaticImporter) Domain(_ context.Context) (*Domain, error) {
	if s.DomainValue == nil {
		return &Domain{}, nil
	}
	return s.DomainValue, nil
}

// TrainingData returns the held corpus, or an empty one.
func (s *StaticImporter) TrainingData(_ context.Context) (*TrainingData, error) {
	if s.TrainingDataValue == nil {
		return &TrainingData{}, nil
	}
	return s.TrainingDataValue, nil
}

// Schema returns the held schema.
func (s *StaticImporter) Schema(_ context.Context) (Schema, error) {
	if s.SchemaValue.Nodes == nil {
		return Schema{Nodes: map[string]SchemaNode{}}, nil
	}
	return s.SchemaValue, nil
}

var (
	_ Importer       = (*StaticImporter)(nil)
	_ SchemaProvider = (*StaticImporter)(nil)
)
