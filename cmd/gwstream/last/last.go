// Package lastcmder provides the last command for displaying the summary of
// the most recent streamed completion.
package lastcmder

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/dotdir"
	"github.com/papercomputeco/gwstream/pkg/utils"
)

const lastLongDesc string = `Show the summary of the last streamed completion.

Reads last_run.json from the local .gwstream/ directory (or ~/.gwstream/),
written by "gwstream chat" after every response.

Examples:
  gwstream last
  gwstream last --clear`

const lastShortDesc string = "Show the last streamed completion"

func NewLastCmd() *cobra.Command {
	var clearRun bool

	cmd := &cobra.Command{
		Use:   "last",
		Short: lastShortDesc,
		Long:  lastLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			if clearRun {
				return dotdir.NewManager().ClearLastRun(configDir)
			}
			return runLast(cmd.OutOrStdout(), configDir)
		},
	}

	cmd.Flags().BoolVar(&clearRun, "clear", false, "Remove the saved summary")

	return cmd
}

func runLast(w io.Writer, configDir string) error {
	run, err := dotdir.NewManager().LoadLastRun(configDir)
	if err != nil {
		return fmt.Errorf("loading last run: %w", err)
	}

	if run == nil {
		fmt.Fprintf(w, "  %s No completion has been streamed yet.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	row := func(key, value string) {
		fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-14s", key+":")), value)
	}

	fmt.Fprintln(w)
	row("Request", cliui.ValueStyle.Render(run.RequestID))
	if run.CompletionID != "" {
		row("Completion", cliui.ValueStyle.Render(run.CompletionID))
	}
	if run.Model != "" {
		row("Model", cliui.NameStyle.Render(run.Model))
	}
	if run.FinishReason != "" {
		row("Finish reason", cliui.ValueStyle.Render(run.FinishReason))
	}
	row("Chunks", cliui.ValueStyle.Render(strconv.Itoa(run.Chunks)))
	if run.TotalTokens > 0 {
		row("Usage", cliui.UsageLine(run.PromptTokens, run.OutputTokens, run.TotalTokens))
	}
	if len(run.ToolCalls) > 0 {
		row("Tool calls", cliui.NameStyle.Render(strings.Join(run.ToolCalls, ", ")))
	}
	row("Completed", cliui.DimStyle.Render(run.CompletedAt.Local().Format("2006-01-02 15:04:05")))

	for _, e := range run.Errors {
		fmt.Fprintf(w, "  %s %s\n", cliui.FailMark, utils.Truncate(e, 72))
	}

	fmt.Fprintln(w)
	return nil
}
