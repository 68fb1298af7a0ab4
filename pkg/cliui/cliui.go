// Package cliui provides reusable terminal UI helpers (spinners, step indicators,
// markdown rendering, tool call and usage lines) for gwstream CLI commands.
package cliui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	SuccessMark  = successStyle.Render("✓")
	FailMark     = failStyle.Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	ReasonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// DisableColor switches all styles to plain text, for --no-color and for
// output that is piped somewhere colors do not belong.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	SuccessMark = successStyle.Render("✓")
	FailMark = failStyle.Render("✗")
}

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step runs fn and prints one line for it: a ✓ or ✗ mark, msg and the
// elapsed time. While fn runs a spinner animates on w when w is a terminal.
func Step(w io.Writer, msg string, fn func() error) error {
	start := time.Now()

	stop := func() {}
	if f, ok := w.(*os.File); ok && IsTerminal(f) {
		stop = spin(w, msg)
	}
	err := fn()
	stop()

	fmt.Fprintf(w, "\r  %s %s %s\n", Mark(err), msg, StepStyle.Render("("+FormatDuration(time.Since(start))+")"))
	return err
}

// spin draws spinner frames until the returned stop func is called. stop
// returns only after the last frame is written.
func spin(w io.Writer, msg string) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			fmt.Fprintf(w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), msg)
			select {
			case <-quit:
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(quit)
		<-done
	}
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// ToolCallLine formats a finalized tool call for display, e.g.
// "⚙ local search {"q":"go"}".
func ToolCallLine(origin, name, arguments string) string {
	if name == "" {
		name = "<unnamed>"
	}
	line := fmt.Sprintf("⚙ %s %s", DimStyle.Render(origin), NameStyle.Render(name))
	if arguments != "" {
		line += " " + ValueStyle.Render(arguments)
	}
	return line
}

// UsageLine formats token accounting for display.
func UsageLine(prompt, completion, total int) string {
	return DimStyle.Render(fmt.Sprintf("tokens: %d prompt, %d completion, %d total", prompt, completion, total))
}

// IsTerminal reports whether f is attached to a terminal. Commands use it to
// decide between rendered markdown and raw streamed text.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// RenderMarkdown renders markdown content for terminal display using glamour.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
