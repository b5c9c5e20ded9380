package finetune_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/storage/inmemory"
)

func categoryOf(err error) finetune.Category {
	var ie *finetune.IncompatibilityError
	Expect(errors.As(err, &ie)).To(BeTrue(), "expected an IncompatibilityError, got %v", err)
	return ie.Category
}

var _ = Describe("Checker", func() {
	var (
		ctx   context.Context
		store *inmemory.Driver
		empty *project.StaticImporter
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = inmemory.NewDriver()
		empty = importer(nil, nil)
	})

	Describe("New", func() {
		It("requires a storage driver", func() {
			_, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{}, nil, "")
			Expect(err).To(HaveOccurred())
		})

		It("defaults the resource name", func() {
			c, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{}, store, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Resource()).To(Equal(finetune.DefaultResource))
			Expect(c.Baseline()).To(BeNil())
		})

		It("rejects an invalid minimum version", func() {
			_, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{}, store, "",
				finetune.WithMinimumCompatibleVersion("not-a-version"))
			Expect(err).To(MatchError(ContainSubstring("not-a-version")))
		})

		It("ignores epochs by default", func() {
			Expect(finetune.DefaultConfig().IgnoredFields).To(Equal([]string{"epochs"}))
		})
	})

	Describe("Load", func() {
		It("fails when nothing was persisted", func() {
			_, err := finetune.Load(ctx, finetune.DefaultConfig(), finetune.ExecutionContext{}, store, "")
			Expect(err).To(MatchError(finetune.ErrMissingSnapshot))
			Expect(errors.Is(err, finetune.ErrInvalidConfig)).To(BeFalse())
		})

		It("loads the snapshot persisted by training", func() {
			train(ctx, store, exampleSchema(5), empty)

			c := loadFinetuning(ctx, store, exampleSchema(5))
			Expect(c.Baseline()).NotTo(BeNil())
			Expect(c.Baseline().NodeIDs()).To(Equal([]string{"node-0", "node-1"}))
		})

		It("keeps resources apart", func() {
			c, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{}, store, "other")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Validate(ctx, empty)).To(Succeed())

			_, err = finetune.Load(ctx, finetune.DefaultConfig(), finetune.ExecutionContext{}, store, "")
			Expect(err).To(MatchError(finetune.ErrMissingSnapshot))
		})
	})

	Describe("training mode", func() {
		It("persists a snapshot on every call", func() {
			c, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{Schema: exampleSchema(5)}, store, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(c.ValidateCoreOnly(ctx, importer(greetDomain(), nil))).To(Succeed())
			first, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Finetuned).To(BeFalse())
			Expect(first.DomainActions).To(ContainElements("utter_greet", "utter_bye"))

			Expect(c.Validate(ctx, empty)).To(Succeed())
			second, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).NotTo(Equal(first.ID))
			Expect(second.DomainActions).To(BeEmpty())
			Expect(c.Baseline().ID).To(Equal(second.ID))
		})

		It("records the running framework version", func() {
			train(ctx, store, exampleSchema(5), empty)
			s, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.FrameworkVersion).NotTo(BeEmpty())
		})

		It("never compares in training mode", func() {
			train(ctx, store, exampleSchema(5), importer(greetDomain(), nil))

			c, err := finetune.Load(ctx, finetune.DefaultConfig(), finetune.ExecutionContext{
				Schema: withoutNode(exampleSchema(5), "node-0"),
			}, store, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Validate(ctx, empty)).To(Succeed())
		})
	})

	DescribeTable("finetuning without a trained baseline fails",
		func(scope finetune.Scope) {
			c, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{IsFinetuning: true}, store, "")
			Expect(err).NotTo(HaveOccurred())

			err = validateScope(ctx, c, empty, scope)
			Expect(err).To(MatchError(finetune.ErrInvalidConfig))
			Expect(err).To(MatchError(finetune.ErrMissingSnapshot))
			Expect(categoryOf(err)).To(Equal(finetune.CategoryBaselineMissing))
			Expect(store.Count()).To(Equal(0))
		},
		Entry("nlu only", finetune.Scope{NLU: true}),
		Entry("core only", finetune.Scope{Core: true}),
		Entry("core and nlu", finetune.FullScope),
	)

	DescribeTable("changing only epochs passes",
		func(scope finetune.Scope) {
			train(ctx, store, exampleSchema(5), empty)

			c := loadFinetuning(ctx, store, exampleSchema(10))
			Expect(validateScope(ctx, c, empty, scope)).To(Succeed())
		},
		Entry("nlu only", finetune.Scope{NLU: true}),
		Entry("core only", finetune.Scope{Core: true}),
		Entry("core and nlu", finetune.FullScope),
	)

	DescribeTable("removing a node fails regardless of scope",
		func(scope finetune.Scope) {
			train(ctx, store, exampleSchema(5), empty)

			c := loadFinetuning(ctx, store, withoutNode(exampleSchema(5), "node-0"))
			err := validateScope(ctx, c, empty, scope)
			Expect(err).To(MatchError(finetune.ErrIncompatibleSchema))
			Expect(categoryOf(err)).To(Equal(finetune.CategoryNodeRemoved))
		},
		Entry("nlu only", finetune.Scope{NLU: true}),
		Entry("core only", finetune.Scope{Core: true}),
		Entry("core and nlu", finetune.FullScope),
		Entry("neither", finetune.Scope{}),
	)

	DescribeTable("adding a node fails regardless of scope",
		func(scope finetune.Scope) {
			train(ctx, store, withoutNode(exampleSchema(5), "node-0"), empty)

			c := loadFinetuning(ctx, store, exampleSchema(5))
			err := validateScope(ctx, c, empty, scope)
			Expect(err).To(MatchError(finetune.ErrIncompatibleSchema))
			Expect(categoryOf(err)).To(Equal(finetune.CategoryNodeAdded))
		},
		Entry("nlu only", finetune.Scope{NLU: true}),
		Entry("core only", finetune.Scope{Core: true}),
		Entry("core and nlu", finetune.FullScope),
		Entry("neither", finetune.Scope{}),
	)

	Describe("node config changes", func() {
		BeforeEach(func() {
			train(ctx, store, exampleSchema(5), empty)
		})

		It("fails when a non-ignored parameter changes", func() {
			schema := exampleSchema(5)
			schema.Nodes["node-1"].Config["yet-other-parameter"] = 1

			err := loadFinetuning(ctx, store, schema).Validate(ctx, empty)
			Expect(categoryOf(err)).To(Equal(finetune.CategoryConfigChanged))

			var ie *finetune.IncompatibilityError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(ie.Mismatches).To(HaveLen(1))
			Expect(ie.Mismatches[0].Subject).To(Equal("node-1"))
			Expect(ie.Mismatches[0].Detail).To(ContainSubstring("yet-other-parameter"))
		})

		It("fails when a large integer parameter changes", func() {
			seeded := exampleSchema(5)
			seeded.Nodes["node-1"].Config["random_seed"] = int64(9007199254740993)
			train(ctx, store, seeded, empty)

			schema := exampleSchema(5)
			schema.Nodes["node-1"].Config["random_seed"] = int64(9007199254740992)

			err := loadFinetuning(ctx, store, schema).Validate(ctx, empty)
			Expect(err).To(MatchError(finetune.ErrIncompatibleSchema))
			Expect(categoryOf(err)).To(Equal(finetune.CategoryConfigChanged))
		})

		It("ignores epochs nested in list parameters", func() {
			scheduled := func(epochs int) project.Schema {
				s := exampleSchema(5)
				s.Nodes["node-0"].Config["schedule"] = []any{map[string]any{"epochs": epochs, "rate": 0.1}}
				return s
			}
			train(ctx, store, scheduled(1), empty)

			Expect(loadFinetuning(ctx, store, scheduled(2)).Validate(ctx, empty)).To(Succeed())
		})

		It("fails when the component changes", func() {
			schema := exampleSchema(5)
			node := schema.Nodes["node-0"]
			node.Uses = "FallbackClassifier"
			schema.Nodes["node-0"] = node

			err := loadFinetuning(ctx, store, schema).Validate(ctx, empty)
			Expect(categoryOf(err)).To(Equal(finetune.CategoryConfigChanged))
		})

		It("honors extra ignored fields", func() {
			schema := exampleSchema(7)
			schema.Nodes["node-0"].Config["some-parameter"] = "changed"

			cfg := finetune.Config{IgnoredFields: []string{"epochs", "some-parameter"}}
			c, err := finetune.Load(ctx, cfg, finetune.ExecutionContext{IsFinetuning: true, Schema: schema}, store, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Validate(ctx, empty)).To(Succeed())
		})
	})

	Describe("domain", func() {
		DescribeTable("editing response text passes",
			func(scope finetune.Scope) {
				train(ctx, store, exampleSchema(5), importer(greetDomain(), nil))

				changed := greetDomain()
				changed.Responses["utter_greet"] = append(changed.Responses["utter_greet"], project.Response{Text: "hi"})

				c := loadFinetuning(ctx, store, exampleSchema(5))
				Expect(validateScope(ctx, c, importer(changed, nil), scope)).To(Succeed())
			},
			Entry("nlu only", finetune.Scope{NLU: true}),
			Entry("core only", finetune.Scope{Core: true}),
			Entry("core and nlu", finetune.FullScope),
		)

		DescribeTable("adding an action passes",
			func(scope finetune.Scope) {
				train(ctx, store, exampleSchema(5), importer(greetDomain(), nil))

				changed := greetDomain()
				changed.Responses["utter_new"] = []project.Response{{Text: "hi"}}

				c := loadFinetuning(ctx, store, exampleSchema(5))
				Expect(validateScope(ctx, c, importer(changed, nil), scope)).To(Succeed())
			},
			Entry("nlu only", finetune.Scope{NLU: true}),
			Entry("core only", finetune.Scope{Core: true}),
			Entry("core and nlu", finetune.FullScope),
		)

		DescribeTable("removing an action fails only when core is checked",
			func(scope finetune.Scope) {
				train(ctx, store, exampleSchema(5), importer(greetDomain(), nil))

				changed := greetDomain()
				delete(changed.Responses, "utter_bye")

				c := loadFinetuning(ctx, store, exampleSchema(5))
				err := validateScope(ctx, c, importer(changed, nil), scope)
				if !scope.Core {
					Expect(err).NotTo(HaveOccurred())
					return
				}
				Expect(err).To(MatchError(finetune.ErrIncompatibleDomain))
				Expect(categoryOf(err)).To(Equal(finetune.CategoryActionRemoved))
			},
			Entry("nlu only", finetune.Scope{NLU: true}),
			Entry("core only", finetune.Scope{Core: true}),
			Entry("core and nlu", finetune.FullScope),
		)

		It("allows a later addition and rejects a later removal", func() {
			domain := &project.Domain{Responses: map[string][]project.Response{
				"utter_greet": {{Text: "hi"}},
				"utter_bye":   {{Text: "bye"}},
			}}
			train(ctx, store, exampleSchema(5), importer(domain, nil))

			c := loadFinetuning(ctx, store, exampleSchema(5))

			withNew := domain.Clone()
			withNew.Responses["utter_new"] = []project.Response{{Text: "new"}}
			Expect(c.ValidateCoreOnly(ctx, importer(withNew, nil))).To(Succeed())

			withoutBye := withNew.Clone()
			delete(withoutBye.Responses, "utter_bye")
			err := c.ValidateCoreOnly(ctx, importer(withoutBye, nil))
			Expect(categoryOf(err)).To(Equal(finetune.CategoryActionRemoved))

			var ie *finetune.IncompatibilityError
			Expect(errors.As(err, &ie)).To(BeTrue())
			Expect(ie.Mismatches).To(ConsistOf(finetune.Mismatch{
				Category: finetune.CategoryActionRemoved,
				Subject:  "utter_bye",
			}))
		})
	})

	Describe("training data", func() {
		for _, key := range project.LabelKeys {
			DescribeTable("removing a "+string(key)+" value fails only when nlu is checked",
				func(scope finetune.Scope) {
					train(ctx, store, exampleSchema(5), importer(nil, labelData(key, "item-1", "item-2")))

					c := loadFinetuning(ctx, store, exampleSchema(5))
					err := validateScope(ctx, c, importer(nil, labelData(key, "item-2")), scope)
					if !scope.NLU {
						Expect(err).NotTo(HaveOccurred())
						return
					}
					Expect(err).To(MatchError(finetune.ErrIncompatibleLabelSet))
					Expect(categoryOf(err)).To(Equal(finetune.CategoryLabelRemoved))
				},
				Entry("nlu only", finetune.Scope{NLU: true}),
				Entry("core only", finetune.Scope{Core: true}),
				Entry("core and nlu", finetune.FullScope),
			)

			DescribeTable("adding a "+string(key)+" value passes",
				func(scope finetune.Scope) {
					train(ctx, store, exampleSchema(5), importer(nil, labelData(key, "item-1", "item-2")))

					c := loadFinetuning(ctx, store, exampleSchema(5))
					Expect(validateScope(ctx, c, importer(nil, labelData(key, "item-1", "item-2", "item-3")), scope)).To(Succeed())
				},
				Entry("nlu only", finetune.Scope{NLU: true}),
				Entry("core only", finetune.Scope{Core: true}),
				Entry("core and nlu", finetune.FullScope),
			)
		}

		It("never compares example text", func() {
			train(ctx, store, exampleSchema(5), importer(nil, project.NewTrainingData(
				project.Message{Text: "a", Intent: "item-1"},
				project.Message{Text: "b", Intent: "item-2"},
			)))

			c := loadFinetuning(ctx, store, exampleSchema(5))
			Expect(c.ValidateNLUOnly(ctx, importer(nil, project.NewTrainingData(
				project.Message{Text: "c", Intent: "item-1"},
				project.Message{Text: "d", Intent: "item-1"},
				project.Message{Text: "e", Intent: "item-2"},
				project.Message{Text: "f", Intent: "item-2"},
			)))).To(Succeed())
		})

		It("compares label keys independently", func() {
			train(ctx, store, exampleSchema(5), importer(nil, project.NewTrainingData(
				project.Message{Intent: "greet"},
			)))

			c := loadFinetuning(ctx, store, exampleSchema(5))
			err := c.ValidateNLUOnly(ctx, importer(nil, project.NewTrainingData(
				project.Message{ActionName: "greet"},
			)))
			Expect(categoryOf(err)).To(Equal(finetune.CategoryLabelRemoved))
		})

		It("ignores examples without labels", func() {
			train(ctx, store, exampleSchema(5), importer(nil, labelData(project.LabelIntent, "greet")))

			c := loadFinetuning(ctx, store, exampleSchema(5))
			data := labelData(project.LabelIntent, "greet")
			data.Examples = append(data.Examples, project.Message{Text: "unlabelled"})
			Expect(c.ValidateNLUOnly(ctx, importer(nil, data))).To(Succeed())
		})
	})

	Describe("framework version", func() {
		DescribeTable("compares the recorded version with the threshold",
			func(recorded, minimum string, canTune bool) {
				for _, entry := range []finetune.Scope{{NLU: true}, {Core: true}, finetune.FullScope} {
					s := inmemory.NewDriver()
					imp := importer(nil, labelData(project.LabelIntent, "dummy"))

					trainer, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{
						Schema:           exampleSchema(5),
						FrameworkVersion: recorded,
					}, s, "")
					Expect(err).NotTo(HaveOccurred())
					Expect(validateScope(ctx, trainer, imp, entry)).To(Succeed())

					c := loadFinetuning(ctx, s, exampleSchema(5), finetune.WithMinimumCompatibleVersion(minimum))
					err = validateScope(ctx, c, imp, entry)
					if canTune {
						Expect(err).NotTo(HaveOccurred())
					} else {
						Expect(err).To(MatchError(finetune.ErrIncompatibleVersion))
						Expect(categoryOf(err)).To(Equal(finetune.CategoryVersionIncompatible))
					}
				}
			},
			Entry("equal", "2.1.0", "2.1.0", true),
			Entry("newer", "2.1.0", "2.0.0", true),
			Entry("older", "2.0.0", "2.1.0", false),
			Entry("semantic not lexical", "3.10.0", "3.9.0", true),
			Entry("unparseable recorded version", "nightly", "2.0.0", false),
		)

		It("reads the threshold from config", func() {
			trainer, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{FrameworkVersion: "1.0.0"}, store, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(trainer.Validate(ctx, empty)).To(Succeed())

			cfg := finetune.DefaultConfig()
			cfg.MinimumCompatibleVersion = "0.9.0"
			c, err := finetune.Load(ctx, cfg, finetune.ExecutionContext{IsFinetuning: true}, store, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Validate(ctx, empty)).To(Succeed())
		})

		It("reports schema problems before version problems", func() {
			trainer, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{
				Schema:           exampleSchema(5),
				FrameworkVersion: "1.0.0",
			}, store, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(trainer.Validate(ctx, empty)).To(Succeed())

			c := loadFinetuning(ctx, store, withoutNode(exampleSchema(5), "node-1"))
			err = c.Validate(ctx, empty)
			Expect(categoryOf(err)).To(Equal(finetune.CategoryNodeRemoved))
			Expect(errors.Is(err, finetune.ErrIncompatibleVersion)).To(BeFalse())
		})
	})

	Describe("persistence after finetuning", func() {
		It("persists nothing when validation fails", func() {
			train(ctx, store, exampleSchema(5), importer(greetDomain(), nil))
			before, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())

			c := loadFinetuning(ctx, store, withoutNode(exampleSchema(5), "node-0"))
			Expect(c.Validate(ctx, importer(greetDomain(), nil))).NotTo(Succeed())

			after, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.ID).To(Equal(before.ID))
			Expect(c.Baseline().ID).To(Equal(before.ID))
		})

		It("replaces the snapshot after a successful finetuning", func() {
			train(ctx, store, exampleSchema(5), importer(greetDomain(), nil))

			changed := greetDomain()
			changed.Actions = append(changed.Actions, "action_new")

			c := loadFinetuning(ctx, store, exampleSchema(5))
			Expect(c.Validate(ctx, importer(changed, nil))).To(Succeed())

			s, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Finetuned).To(BeTrue())
			Expect(s.DomainActions).To(ContainElement("action_new"))
			Expect(c.Baseline().ID).To(Equal(s.ID))
		})

		It("keeps unchecked categories from the baseline", func() {
			train(ctx, store, exampleSchema(5), importer(greetDomain(), labelData(project.LabelIntent, "greet")))

			c := loadFinetuning(ctx, store, exampleSchema(5))
			Expect(c.ValidateCoreOnly(ctx, importer(greetDomain(), nil))).To(Succeed())

			s, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Labels).To(HaveKeyWithValue(project.LabelIntent, []string{"greet"}))

			Expect(c.ValidateNLUOnly(ctx, importer(nil, labelData(project.LabelIntent, "greet")))).To(Succeed())
			s, err = store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.DomainActions).To(ContainElements("utter_greet", "utter_bye"))

			// The carried-over label set still guards later nlu runs.
			Expect(c.ValidateNLUOnly(ctx, empty)).To(MatchError(finetune.ErrIncompatibleLabelSet))
		})

		It("evaluates independent calls independently", func() {
			train(ctx, store, exampleSchema(5), importer(greetDomain(), labelData(project.LabelIntent, "greet")))

			c := loadFinetuning(ctx, store, exampleSchema(5))
			imp := importer(greetDomain(), nil)
			Expect(c.ValidateCoreOnly(ctx, imp)).To(Succeed())
			Expect(c.ValidateNLUOnly(ctx, imp)).To(MatchError(finetune.ErrIncompatibleLabelSet))
		})
	})

	Describe("Report", func() {
		It("lists every mismatch without persisting", func() {
			train(ctx, store, exampleSchema(5), importer(greetDomain(), labelData(project.LabelIntent, "greet", "bye")))
			before, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())

			changed := greetDomain()
			delete(changed.Responses, "utter_bye")

			c := loadFinetuning(ctx, store, withoutNode(exampleSchema(5), "node-1"))
			report, err := c.Report(ctx, importer(changed, labelData(project.LabelIntent, "greet")), finetune.FullScope)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Compatible()).To(BeFalse())
			Expect(report.Categories()).To(Equal([]finetune.Category{
				finetune.CategoryNodeRemoved,
				finetune.CategoryActionRemoved,
				finetune.CategoryLabelRemoved,
			}))
			Expect(report.BaselineID).To(Equal(before.ID))
			Expect(report.Err()).To(MatchError(finetune.ErrIncompatibleSchema))
			Expect(report.Markdown()).To(ContainSubstring("utter_bye"))

			after, err := store.Get(ctx, finetune.DefaultResource)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.ID).To(Equal(before.ID))
		})

		It("compares even outside finetuning mode", func() {
			train(ctx, store, exampleSchema(5), empty)

			c, err := finetune.Load(ctx, finetune.DefaultConfig(), finetune.ExecutionContext{Schema: exampleSchema(5)}, store, "")
			Expect(err).NotTo(HaveOccurred())
			report, err := c.Report(ctx, empty, finetune.FullScope)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Compatible()).To(BeTrue())
			Expect(report.Err()).NotTo(HaveOccurred())
			Expect(report.Markdown()).To(ContainSubstring("Compatible"))
		})
	})

	Describe("events", func() {
		It("publishes passing and failing validations", func() {
			pub := &recordingPublisher{}
			fixed := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
			clock := finetune.WithClock(func() time.Time { return fixed })

			train(ctx, store, exampleSchema(5), importer(greetDomain(), nil), finetune.WithPublisher(pub), clock)

			c := loadFinetuning(ctx, store, exampleSchema(5), finetune.WithPublisher(pub), clock)
			Expect(c.ValidateCoreOnly(ctx, empty)).NotTo(Succeed())

			Expect(pub.events).To(HaveLen(2))
			passed, failed := pub.events[0], pub.events[1]

			Expect(passed.Compatible).To(BeTrue())
			Expect(passed.Finetuning).To(BeFalse())
			Expect(passed.EmittedAt).To(Equal(fixed))

			Expect(failed.Compatible).To(BeFalse())
			Expect(failed.Finetuning).To(BeTrue())
			Expect(failed.Category).To(Equal(string(finetune.CategoryActionRemoved)))
			Expect(failed.Scope.Core).To(BeTrue())
			Expect(failed.Scope.NLU).To(BeFalse())
			Expect(failed.Mismatches).To(HaveLen(3))
		})

		It("does not fail validation when publishing fails", func() {
			pub := &recordingPublisher{err: errors.New("stream down")}
			c, err := finetune.New(finetune.DefaultConfig(), finetune.ExecutionContext{}, store, "", finetune.WithPublisher(pub))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Validate(ctx, empty)).To(Succeed())
			Expect(pub.events).To(HaveLen(1))
		})
	})
})
