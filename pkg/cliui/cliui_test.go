package cliui_test

import (
	"bytes"
	"errors"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tunegate/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("prints a success mark and returns nil", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "Loading baseline", func() error { return nil })

			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("Loading baseline"))
			Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		})

		It("returns the step error and prints a fail mark", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")
			err := cliui.Step(&buf, "Validating", func() error { return boom })

			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
		})

		It("skips the spinner when not writing to a terminal", func() {
			var buf bytes.Buffer
			Expect(cliui.Step(&buf, "Recording snapshot", func() error { return nil })).To(Succeed())
			Expect(buf.String()).NotTo(ContainSubstring("\r"))
		})
	})

	Describe("IsTerminal", func() {
		It("is false for buffers", func() {
			Expect(cliui.IsTerminal(&bytes.Buffer{})).To(BeFalse())
		})

		It("is false for regular files", func() {
			f, err := os.CreateTemp(GinkgoT().TempDir(), "out")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(f.Close)
			Expect(cliui.IsTerminal(f)).To(BeFalse())
		})
	})

	DescribeTable("FormatDuration",
		func(d time.Duration, want string) {
			Expect(cliui.FormatDuration(d)).To(Equal(want))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)

	DescribeTable("ShortHash",
		func(in, want string) {
			Expect(cliui.ShortHash(in)).To(Equal(want))
		},
		Entry("short input is unchanged", "abc", "abc"),
		Entry("long input is truncated", "0123456789abcdef", "0123456789ab"),
	)

	Describe("RenderMarkdown", func() {
		It("keeps the text of the document", func() {
			out, err := cliui.RenderMarkdown("# Report\n\nCompatible.\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Compatible."))
		})
	})
})
