package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text records by default", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("snapshot persisted", "resource", "finetuning_validator")

			output := buf.String()
			Expect(output).To(ContainSubstring("snapshot persisted"))
			Expect(output).To(ContainSubstring("resource=finetuning_validator"))
		})

		It("emits debug records when debug is enabled", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
			l.Debug("comparing node configs")

			Expect(buf.String()).To(ContainSubstring("comparing node configs"))
		})

		It("drops debug records otherwise", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithDebug(false))
			l.Debug("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("drops records below the configured level", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelWarn))
			l.Info("snapshot persisted")
			l.Warn("publish failed")

			Expect(buf.String()).NotTo(ContainSubstring("snapshot persisted"))
			Expect(buf.String()).To(ContainSubstring("publish failed"))
		})

		It("applies the level to pretty output", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithLevel(slog.LevelWarn))
			l.Info("hidden")

			Expect(buf.String()).To(BeEmpty())
		})

		It("writes JSON when requested", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.Info("validation failed", "mismatches", 2)

			var parsed map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &parsed)).To(Succeed())
			Expect(parsed["msg"]).To(Equal("validation failed"))
			Expect(parsed["mismatches"]).To(BeNumerically("==", 2))
		})

		It("prefers JSON over pretty output", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithPretty(true))
			l.Info("both")

			var parsed map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &parsed)).To(Succeed())
		})

		It("writes pretty output through charmbracelet/log", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
			l.Info("baseline loaded")

			Expect(buf.String()).To(ContainSubstring("baseline loaded"))
		})

		It("fans out to every writer", func() {
			var buf1, buf2 bytes.Buffer
			l := logger.New(logger.WithWriters(&buf1, &buf2))
			l.Info("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})
	})

	Describe("Nop", func() {
		It("does not panic", func() {
			l := logger.Nop()
			Expect(func() {
				l.Debug("msg")
				l.Info("msg")
				l.Warn("msg")
				l.Error("msg")
				l.With("key", "value").Info("msg")
				l.WithGroup("group").Info("msg")
			}).NotTo(Panic())
		})

		It("is disabled at every level", func() {
			l := logger.Nop()
			Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var buf1, buf2 bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&buf1)),
				logger.New(logger.WithWriter(&buf2), logger.WithJSON(true)),
			)

			multi.Info("broadcast", "key", "val")

			Expect(buf1.String()).To(ContainSubstring("broadcast"))
			Expect(buf2.String()).To(ContainSubstring("broadcast"))
		})

		It("keeps attributes added with With", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true)))

			multi.With("component", "finetune").Info("hello")

			var parsed map[string]any
			Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
			Expect(parsed["component"]).To(Equal("finetune"))
		})

		It("nests attributes under WithGroup", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true)))

			multi.WithGroup("request").Info("processed", "method", "POST")

			var parsed map[string]any
			Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
			group, ok := parsed["request"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["method"]).To(Equal("POST"))
		})

		It("skips handlers that are disabled", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.Nop(), logger.New(logger.WithWriter(&buf)))
			multi.Info("only once")

			Expect(strings.Count(buf.String(), "only once")).To(Equal(1))
		})
	})
})
