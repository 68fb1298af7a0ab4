// Package chatcmder provides the chat command, which streams completions from
// the AI gateway and prints text, reasoning and tool calls as they arrive.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/cmd/gwstream/cmdenv"
	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/config"
	"github.com/papercomputeco/gwstream/pkg/dotdir"
	"github.com/papercomputeco/gwstream/pkg/gateway"
	"github.com/papercomputeco/gwstream/pkg/llm"
	"github.com/papercomputeco/gwstream/pkg/stream"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

// toolNotExecuted is sent back as the result of local tool calls so the
// conversation can continue.
const toolNotExecuted = "tool execution is not available in gwstream chat"

type chatCommander struct {
	// Bound through the config flag registry.
	baseURL string
	apiKey  string
	model   string
	timeout string

	eventProvider string
	kafkaBrokers  string
	kafkaTopic    string
	project       string
	queueSize     uint

	system        string
	tools         []string
	mcpURL        string
	record        string
	render        bool
	showReasoning bool

	env      *cmdenv.Env
	client   *gateway.Client
	publish  *cmdenv.Publishing
	declared []llm.Tool
	ddm      *dotdir.Manager
	out      io.Writer
	errOut   io.Writer
}

const chatLongDesc string = `Stream a chat completion from the AI gateway.

With a prompt argument, sends one message and exits. Without one, starts an
interactive session; type /exit or press Ctrl+D to quit. Ctrl+C cancels the
response currently streaming.

Tools declared with --tool (or discovered from an MCP server with --mcp) are
reported as local tool calls. Calls to tools the gateway resolved itself are
reported as remote tool calls.

Every stream event is also published to the configured event stream
(eventstream.provider).

Examples:
  gwstream chat "What is the weather in Oslo?" --tool get_weather
  gwstream chat --model gpt-4o --render
  gwstream chat "hi" --record hi.sse`

const chatShortDesc string = "Stream a chat completion from the AI gateway"

var chatFlags = []string{
	config.FlagBaseURL,
	config.FlagAPIKey,
	config.FlagModel,
	config.FlagTimeout,
	config.FlagEventProvider,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagProject,
	config.FlagQueueSize,
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Load(cmd, chatFlags...)
			if err != nil {
				return err
			}
			defer env.Close()

			cmder.env = env
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			err = cmder.run(cmd.Context(), cmd.InOrStdin(), args)
			var rep *reportedError
			if errors.As(err, &rep) {
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
			}
			return err
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventProvider, &cmder.eventProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddStringFlag(cmd, config.Flags, config.FlagProject, &cmder.project)
	config.AddUintFlag(cmd, config.Flags, config.FlagQueueSize, &cmder.queueSize)

	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System prompt")
	cmd.Flags().StringArrayVarP(&cmder.tools, "tool", "t", nil, "Declare a local function tool by name (repeatable)")
	cmd.Flags().StringVar(&cmder.mcpURL, "mcp", "", "Declare the tools of this streamable HTTP MCP server")
	cmd.Flags().StringVar(&cmder.record, "record", "", "Write the raw SSE stream of each response to this file")
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Render the response as markdown once it completes")
	cmd.Flags().BoolVar(&cmder.showReasoning, "reasoning", false, "Print reasoning text")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, in io.Reader, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	c.client, err = c.env.Client()
	if err != nil {
		return err
	}
	c.ddm = dotdir.NewManager()

	if err := c.declareTools(ctx); err != nil {
		return err
	}

	c.publish, err = c.env.Publishing(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.publish.Close(); err != nil {
			c.env.Logger.Warn("closing event publisher", "error", err)
		}
		published, failed, dropped := c.publish.Stats()
		c.env.Logger.Debug("event publishing finished",
			"provider", c.env.Config.EventStream.Provider,
			"published", published,
			"failed", failed,
			"dropped", dropped,
		)
	}()

	var messages []llm.Message
	if c.system != "" {
		messages = append(messages, llm.NewTextMessage("system", c.system))
	}

	if len(args) > 0 {
		messages = append(messages, llm.NewTextMessage("user", strings.Join(args, " ")))
		_, err := c.turn(ctx, messages)
		return err
	}

	return c.interactive(ctx, in, messages)
}

// declareTools collects --tool names and the tools of the --mcp server.
func (c *chatCommander) declareTools(ctx context.Context) error {
	for _, name := range c.tools {
		c.declared = append(c.declared, llm.NewFunctionTool(name, "", map[string]any{"type": "object"}))
	}

	if c.mcpURL == "" {
		return nil
	}

	var discovered []llm.Tool
	err := cliui.Step(c.errOut, "Discovering MCP tools", func() error {
		var err error
		discovered, err = gateway.DiscoverMCPTools(ctx, c.mcpURL)
		return err
	})
	if err != nil {
		return err
	}
	c.env.Logger.Debug("declared MCP tools", "server", c.mcpURL, "count", len(discovered))
	c.declared = append(c.declared, discovered...)
	return nil
}

func (c *chatCommander) interactive(ctx context.Context, in io.Reader, messages []llm.Message) error {
	fmt.Fprintf(c.out, "\n  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.NameStyle.Render(c.env.Config.Gateway.Model))
	fmt.Fprintf(c.out, "  %s %s\n\n", cliui.KeyStyle.Render("Gateway:"), cliui.DimStyle.Render(c.client.BaseURL()))
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		messages = append(messages, llm.NewTextMessage("user", input))
		fmt.Fprint(c.out, assistantPrompt)

		reply, err := c.turn(ctx, messages)
		if err != nil {
			// Drop the failed user message so it can be retried.
			messages = messages[:len(messages)-1]
			continue
		}
		messages = append(messages, reply...)
		fmt.Fprintln(c.out)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// reportedError marks a failure already printed from its error event.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// turn streams one completion and returns the messages to append to the
// conversation. Ctrl+C cancels only this turn.
func (c *chatCommander) turn(ctx context.Context, messages []llm.Message) ([]llm.Message, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	req := &llm.ChatRequest{
		Model:    c.env.Config.Gateway.Model,
		Messages: messages,
		Tools:    c.declared,
	}

	var opts []stream.Option
	if c.record != "" {
		f, err := os.Create(c.record)
		if err != nil {
			return nil, fmt.Errorf("creating recording: %w", err)
		}
		defer f.Close()
		opts = append(opts, stream.WithTee(f))
	}

	var content strings.Builder
	var local []llm.ToolCall
	var requestID string
	var reported bool
	handlers := &stream.Handlers{
		OnOpen: func(ev stream.OpenEvent) {
			requestID = ev.RequestID
		},
		OnContent: func(text string) {
			content.WriteString(text)
			if !c.render {
				fmt.Fprint(c.out, text)
			}
		},
		OnReasoning: func(text string) {
			if c.showReasoning {
				fmt.Fprint(c.out, cliui.ReasonStyle.Render(text))
			}
		},
		OnLocalToolCall: func(call llm.ToolCall) {
			local = append(local, call)
			fmt.Fprintf(c.out, "\n  %s\n", cliui.ToolCallLine(stream.OriginLocal.String(), call.Function.Name, call.Function.Arguments))
		},
		OnRemoteToolCall: func(call llm.ToolCall) {
			fmt.Fprintf(c.out, "\n  %s\n", cliui.ToolCallLine(stream.OriginRemote.String(), call.Function.Name, call.Function.Arguments))
		},
		OnError: func(ev stream.ErrorEvent) {
			fmt.Fprintf(c.errOut, "\n  %s %s: %s\n", cliui.FailMark, ev.ErrorKind, ev.Message)
			if ev.Terminal() {
				reported = true
			}
		},
	}

	start := time.Now()
	summary, err := c.client.StreamChatCompletion(ctx, req, stream.MultiSink(handlers, c.publish.Sink), opts...)
	if summary != nil {
		c.saveLastRun(requestID, summary, err)
	}
	if err != nil {
		if reported {
			return nil, &reportedError{err: err}
		}
		return nil, err
	}

	if c.render && content.Len() > 0 {
		rendered, rerr := cliui.RenderMarkdown(content.String())
		if rerr != nil {
			c.env.Logger.Debug("rendering markdown", "error", rerr)
		}
		fmt.Fprint(c.out, rendered)
	}

	fmt.Fprintln(c.out)
	if summary.HasUsage {
		fmt.Fprintf(c.out, "  %s %s\n",
			cliui.UsageLine(summary.Usage.PromptTokens, summary.Usage.CompletionTokens, summary.Usage.TotalTokens),
			cliui.StepStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(time.Since(start)))),
		)
	}

	return replyMessages(content.String(), local), nil
}

// replyMessages is the assistant turn as it goes back into the history.
// Local tool calls are answered with a placeholder result.
func replyMessages(content string, local []llm.ToolCall) []llm.Message {
	if len(local) == 0 {
		return []llm.Message{llm.NewTextMessage("assistant", content)}
	}

	out := []llm.Message{llm.NewAssistantToolCallMessage(content, local)}
	for _, call := range local {
		out = append(out, llm.NewToolResultMessage(call.ID, toolNotExecuted))
	}
	return out
}

func (c *chatCommander) saveLastRun(requestID string, summary *stream.Summary, runErr error) {
	run := &dotdir.LastRun{
		RequestID:    requestID,
		CompletionID: summary.ID,
		Model:        summary.Model,
		FinishReason: string(summary.FinishReason),
		Chunks:       summary.Chunks,
		PromptTokens: summary.Usage.PromptTokens,
		OutputTokens: summary.Usage.CompletionTokens,
		TotalTokens:  summary.Usage.TotalTokens,
		CompletedAt:  time.Now().UTC(),
	}
	for _, call := range summary.ToolCalls {
		run.ToolCalls = append(run.ToolCalls, call.Function.Name)
	}
	if runErr != nil {
		run.Errors = append(run.Errors, runErr.Error())
	}

	if err := c.ddm.SaveLastRun(run, c.env.ConfigDir); err != nil {
		c.env.Logger.Warn("saving last run", "error", err)
	}
}
