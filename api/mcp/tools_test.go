package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/config"
	"github.com/papercomputeco/tunegate/pkg/finetune"
	"github.com/papercomputeco/tunegate/pkg/gate"
	"github.com/papercomputeco/tunegate/pkg/logger"
	"github.com/papercomputeco/tunegate/pkg/project"
	"github.com/papercomputeco/tunegate/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/tunegate/pkg/utils/test"
)

func resultText(res *mcp.CallToolResult) string {
	Expect(res.Content).To(HaveLen(1))
	text, ok := res.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())
	return text.Text
}

var _ = Describe("Tools", func() {
	var (
		ctx     context.Context
		server  *Server
		g       *gate.Gate
		dir     string
		fixture *testutils.Project
	)

	train := func() {
		imp := project.NewFileImporter(dir)
		schema, err := imp.Schema(ctx)
		Expect(err).NotTo(HaveOccurred())

		c, err := g.Checker(ctx, "bot", false, schema)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Validate(ctx, imp)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		g = gate.New(config.NewDefaultConfig(), inmemory.NewDriver(), nil, nil)

		var err error
		server, err = NewServer(Config{Gate: g, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		dir = GinkgoT().TempDir()
		fixture = testutils.NewProject()
		Expect(fixture.Write(dir)).To(Succeed())
	})

	Describe("snapshot_status", func() {
		It("reports a missing snapshot without failing", func() {
			res, out, err := server.handleSnapshotStatus(ctx, nil, SnapshotStatusInput{Resource: "bot"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Exists).To(BeFalse())
			Expect(out.Resource).To(Equal("bot"))
		})

		It("uses the configured resource by default", func() {
			_, out, err := server.handleSnapshotStatus(ctx, nil, SnapshotStatusInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Resource).To(Equal(finetune.DefaultResource))
		})

		It("describes a stored snapshot", func() {
			train()

			res, out, err := server.handleSnapshotStatus(ctx, nil, SnapshotStatusInput{Resource: "bot"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Exists).To(BeTrue())
			Expect(out.NodeIDs).To(ConsistOf(
				"nlu_WhitespaceTokenizer_0",
				"nlu_DIETClassifier_1",
				"core_TEDPolicy_0",
			))
			Expect(out.ActionCount).To(Equal(2))
			Expect(out.LabelCounts).To(HaveKeyWithValue("intent", 2))

			var decoded SnapshotStatusOutput
			Expect(json.Unmarshal([]byte(resultText(res)), &decoded)).To(Succeed())
			Expect(decoded.Fingerprint).To(Equal(out.Fingerprint))
		})
	})

	Describe("check_compatibility", func() {
		It("requires a project directory", func() {
			res, _, err := server.handleCheckCompatibility(ctx, nil, CheckCompatibilityInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(resultText(res)).To(ContainSubstring("project_dir is required"))
		})

		It("rejects unknown scopes", func() {
			res, _, err := server.handleCheckCompatibility(ctx, nil, CheckCompatibilityInput{ProjectDir: dir, Scope: "dialogue"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
		})

		It("fails when no snapshot is stored", func() {
			res, _, err := server.handleCheckCompatibility(ctx, nil, CheckCompatibilityInput{ProjectDir: dir, Resource: "bot"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(resultText(res)).To(ContainSubstring("Train a model first"))
		})

		It("reports a compatible project", func() {
			train()

			fixture.Pipeline[1]["epochs"] = 300
			fixture.Responses = append(fixture.Responses, "utter_new")
			Expect(fixture.Write(dir)).To(Succeed())

			res, out, err := server.handleCheckCompatibility(ctx, nil, CheckCompatibilityInput{ProjectDir: dir, Resource: "bot"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Compatible).To(BeTrue())
			Expect(out.Scope).To(Equal("core+nlu"))
			Expect(out.Mismatches).To(BeEmpty())
		})

		It("reports every mismatch of an incompatible project", func() {
			train()

			fixture.Responses = []string{"utter_greet"}
			delete(fixture.Examples, "goodbye")
			Expect(fixture.Write(dir)).To(Succeed())

			_, out, err := server.handleCheckCompatibility(ctx, nil, CheckCompatibilityInput{ProjectDir: dir, Resource: "bot"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Compatible).To(BeFalse())
			Expect(out.Mismatches).To(ContainElements(
				finetune.Mismatch{Category: finetune.CategoryActionRemoved, Subject: "utter_bye"},
				And(
					HaveField("Category", finetune.CategoryLabelRemoved),
					HaveField("Subject", "goodbye"),
				),
			))
		})

		It("limits the comparison to the requested scope", func() {
			train()

			delete(fixture.Examples, "goodbye")
			Expect(fixture.Write(dir)).To(Succeed())

			_, out, err := server.handleCheckCompatibility(ctx, nil, CheckCompatibilityInput{ProjectDir: dir, Resource: "bot", Scope: "core"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Compatible).To(BeTrue())
		})
	})
})
