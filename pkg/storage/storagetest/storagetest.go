// Package storagetest holds the behaviour every storage.Driver must share,
// written as ginkgo specs that backend suites run against their own driver.
package storagetest

import (
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/snapshot"
	"github.com/papercomputeco/tunegate/pkg/storage"
)

// NewSnapshot captures a small sealed snapshot. The actions become the
// domain's action set.
func NewSnapshot(actions ...string) *snapshot.Snapshot {
	s, err := snapshot.Capture(snapshot.CaptureInput{
		Schema: project.Schema{Nodes: map[string]project.SchemaNode{
			"nlu_WhitespaceTokenizer_0": {Uses: "WhitespaceTokenizer"},
			"nlu_DIETClassifier_1": {
				Uses:   "DIETClassifier",
				Config: map[string]any{"epochs": 100, "entity_recognition": true},
			},
		}},
		Domain: &project.Domain{Actions: actions},
		TrainingData: project.NewTrainingData(
			project.Message{Text: "hello", Intent: "greet"},
			project.Message{ActionName: "utter_greet"},
		),
		FrameworkVersion: "3.6.0",
		IgnoredFields:    []string{"epochs"},
		Now:              time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	Expect(err).NotTo(HaveOccurred())
	return s
}

// DescribeDriver registers the shared driver specs. newDriver is called
// before each test; the returned driver is closed after it.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		DeferCleanup(func() {
			Expect(driver.Close()).To(Succeed())
		})
	})

	Describe("Put and Get", func() {
		It("round-trips a snapshot", func() {
			s := NewSnapshot("utter_greet", "utter_bye")
			Expect(driver.Put(ctx, "finetuning_validator", s)).To(Succeed())

			got, err := driver.Get(ctx, "finetuning_validator")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(s.ID))
			Expect(got.Fingerprint).To(Equal(s.Fingerprint))
			Expect(got.FrameworkVersion).To(Equal("3.6.0"))
			Expect(got.DomainActions).To(Equal([]string{"utter_bye", "utter_greet"}))
			Expect(got.Labels).To(HaveKeyWithValue(project.LabelIntent, []string{"greet"}))
			Expect(got.Nodes).To(HaveKey("nlu_DIETClassifier_1"))
			Expect(got.CreatedAt.Equal(s.CreatedAt)).To(BeTrue())
			Expect(got.Validate()).To(Succeed())
		})

		It("keeps the node fingerprint stable across storage", func() {
			s := NewSnapshot("utter_greet")
			Expect(driver.Put(ctx, "r", s)).To(Succeed())

			got, err := driver.Get(ctx, "r")
			Expect(err).NotTo(HaveOccurred())

			reloaded := got.Nodes["nlu_DIETClassifier_1"]
			recomputed, err := snapshot.NewNodeSnapshot(project.SchemaNode{
				Uses:   reloaded.Uses,
				Config: reloaded.Config,
			}, got.IgnoredFields)
			Expect(err).NotTo(HaveOccurred())
			Expect(recomputed.Fingerprint).To(Equal(reloaded.Fingerprint))
		})

		It("keeps large integer parameters exact", func() {
			s := NewSnapshot("utter_greet")
			node, err := snapshot.NewNodeSnapshot(project.SchemaNode{
				Uses:   "TEDPolicy",
				Config: map[string]any{"random_seed": int64(9007199254740993)},
			}, s.IgnoredFields)
			Expect(err).NotTo(HaveOccurred())
			s.Nodes["core_TEDPolicy_0"] = node
			Expect(s.Seal()).To(Succeed())
			Expect(driver.Put(ctx, "r", s)).To(Succeed())

			got, err := driver.Get(ctx, "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Nodes["core_TEDPolicy_0"].Config).To(Equal(node.Config))
			Expect(got.Nodes["core_TEDPolicy_0"].Config["random_seed"]).To(Equal(json.Number("9007199254740993")))
		})

		It("replaces the previous snapshot of a resource", func() {
			first := NewSnapshot("utter_greet")
			second := NewSnapshot("utter_greet", "utter_new")
			Expect(driver.Put(ctx, "r", first)).To(Succeed())
			Expect(driver.Put(ctx, "r", second)).To(Succeed())

			got, err := driver.Get(ctx, "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(second.ID))
			Expect(got.DomainActions).To(ContainElement("utter_new"))

			entries, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("returns NotFoundError for an unknown resource", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(HaveOccurred())
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("rejects a nil snapshot", func() {
			Expect(driver.Put(ctx, "r", nil)).To(MatchError(storage.ErrNilSnapshot))
		})

		It("rejects a blank resource", func() {
			Expect(driver.Put(ctx, " ", NewSnapshot())).To(MatchError(storage.ErrEmptyResource))
		})
	})

	Describe("Has", func() {
		It("reports stored resources", func() {
			ok, err := driver.Has(ctx, "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			Expect(driver.Put(ctx, "r", NewSnapshot())).To(Succeed())

			ok, err = driver.Has(ctx, "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes a stored snapshot", func() {
			Expect(driver.Put(ctx, "r", NewSnapshot())).To(Succeed())
			Expect(driver.Delete(ctx, "r")).To(Succeed())

			ok, err := driver.Has(ctx, "r")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("returns NotFoundError for an unknown resource", func() {
			err := driver.Delete(ctx, "missing")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("returns an empty list for an empty store", func() {
			entries, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("orders entries by resource", func() {
			b := NewSnapshot("b")
			a := NewSnapshot("a")
			Expect(driver.Put(ctx, "beta", b)).To(Succeed())
			Expect(driver.Put(ctx, "alpha", a)).To(Succeed())

			entries, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Resource).To(Equal("alpha"))
			Expect(entries[0].SnapshotID).To(Equal(a.ID))
			Expect(entries[0].Fingerprint).To(Equal(a.Fingerprint))
			Expect(entries[1].Resource).To(Equal("beta"))
			Expect(entries[1].CreatedAt.Equal(b.CreatedAt)).To(BeTrue())
		})
	})
}
