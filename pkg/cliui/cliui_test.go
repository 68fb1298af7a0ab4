package cliui_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gwstream/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("ends with a success mark and returns nil", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "connecting", func() error { return nil })
			Expect(err).NotTo(HaveOccurred())

			out := buf.String()
			Expect(out).To(HavePrefix("\r  " + cliui.SuccessMark + " connecting ("))
			Expect(out).To(HaveSuffix(")\n"))
		})

		It("returns the error and ends with a fail mark", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")
			err := cliui.Step(&buf, "connecting", func() error {
				time.Sleep(100 * time.Millisecond)
				return boom
			})
			Expect(err).To(MatchError(boom))

			out := buf.String()
			Expect(out).To(ContainSubstring(cliui.FailMark))
			Expect(strings.Count(out, "\r")).To(Equal(1), "no spinner frames off a terminal")
			Expect(strings.Count(out, "\n")).To(Equal(1))
		})
	})

	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses seconds with one decimal above a second", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("ToolCallLine", func() {
		It("includes origin, name and arguments", func() {
			line := cliui.ToolCallLine("local", "search", `{"q":"go"}`)
			Expect(line).To(ContainSubstring("local"))
			Expect(line).To(ContainSubstring("search"))
			Expect(line).To(ContainSubstring(`{"q":"go"}`))
		})

		It("labels calls without a name", func() {
			Expect(cliui.ToolCallLine("remote", "", "")).To(ContainSubstring("<unnamed>"))
		})
	})

	It("formats usage", func() {
		Expect(cliui.UsageLine(3, 4, 7)).To(ContainSubstring("3 prompt, 4 completion, 7 total"))
	})

	It("does not treat a regular file as a terminal", func() {
		f, err := os.CreateTemp("", "cliui-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { f.Close(); os.Remove(f.Name()) })

		Expect(cliui.IsTerminal(f)).To(BeFalse())
	})

	It("renders markdown", func() {
		out, err := cliui.RenderMarkdown("# Title\n\nbody")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Title"))
		Expect(out).To(ContainSubstring("body"))
	})

	It("renders plain text once color is disabled", func() {
		cliui.DisableColor()

		Expect(cliui.KeyStyle.Render("key")).To(Equal("key"))
		Expect(cliui.SuccessMark).To(Equal("✓"))
		Expect(cliui.FailMark).To(Equal("✗"))
	})
})
