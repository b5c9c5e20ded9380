package finetune_test

import (
	"context"
	"sync"

	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/eventstream"
	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/storage"
)

func exampleSchema(epochs int) project.Schema {
	return project.Schema{Nodes: map[string]project.SchemaNode{
		"node-0": {
			Uses:   "DIETClassifier",
			Config: map[string]any{"epochs": epochs, "other-parameter": 234, "some-parameter": "bla"},
		},
		"node-1": {
			Uses:   "TEDPolicy",
			Config: map[string]any{"epochs": epochs, "yet-other-parameter": 344},
		},
	}}
}

func withoutNode(s project.Schema, id string) project.Schema {
	c := s.Clone()
	delete(c.Nodes, id)
	return c
}

func greetDomain() *project.Domain {
	return &project.Domain{
		Intents: []string{"greet", "goodbye"},
		Actions: []string{"action_listen"},
		Responses: map[string][]project.Response{
			"utter_greet": {{Text: "Hey!"}},
			"utter_bye":   {{Text: "Bye"}},
		},
	}
}

func labelData(key project.LabelKey, values ...string) *project.TrainingData {
	td := &project.TrainingData{}
	for _, v := range values {
		m := project.Message{Text: "text for " + v}
		switch key {
		case project.LabelIntent:
			m.Intent = v
		case project.LabelActionName:
			m.ActionName = v
		}
		td.Examples = append(td.Examples, m)
	}
	return td
}

func importer(d *project.Domain, td *project.TrainingData) *project.StaticImporter {
	return &project.StaticImporter{DomainValue: d, TrainingDataValue: td}
}

func validateScope(ctx context.Context, c *finetune.Checker, imp project.Importer, scope finetune.Scope) error {
	switch scope {
	case finetune.FullScope:
		return c.Validate(ctx, imp)
	case finetune.Scope{Core: true}:
		return c.ValidateCoreOnly(ctx, imp)
	case finetune.Scope{NLU: true}:
		return c.ValidateNLUOnly(ctx, imp)
	default:
		return c.ValidateScope(ctx, imp, scope)
	}
}

// train runs a non-finetuning validation, which persists the baseline.
func train(ctx context.Context, store storage.Driver, schema project.Schema, imp project.Importer, opts ...finetune.Option) {
	c, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{Schema: schema}, store, "", opts...)
	Expect(err).NotTo(HaveOccurred())
	Expect(c.Validate(ctx, imp)).To(Succeed())
}

func loadFinetuning(ctx context.Context, store storage.Driver, schema project.Schema, opts ...finetune.Option) *finetune.Checker {
	c, err := finetune.Load(ctx, finetune.DefaultConfig(), finetune.ExecutionContext{
		IsFinetuning: true,
		Schema:       schema,
	}, store, "", opts...)
	Expect(err).NotTo(HaveOccurred())
	return c
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ValidationEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e *eventstream.ValidationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }
