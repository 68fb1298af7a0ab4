package chatcmder_test

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	chatcmder "github.com/papercomputeco/gwstream/cmd/gwstream/chat"
	"github.com/papercomputeco/gwstream/pkg/dotdir"
	"github.com/papercomputeco/gwstream/replay"
)

var recording = strings.Join([]string{
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{}"}}]}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_2","type":"function","function":{"name":"web_search","arguments":"{}"}}]}}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	`data: {"id":"c1","model":"replay-1","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12}}`,
	`data: [DONE]`,
}, "\n\n") + "\n\n"

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Use).To(Equal("chat [prompt]"))
	})

	It("registers the gateway flags from the registry", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Flags().Lookup("model").Shorthand).To(Equal("m"))
		Expect(cmd.Flags().Lookup("base-url").DefValue).To(Equal("http://localhost:8080"))
		Expect(cmd.Flags().Lookup("tool")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("record")).NotTo(BeNil())
	})
})

var _ = Describe("Chat command execution", func() {
	var (
		tmpDir  string
		origDir string
		gwURL   string
		out     *bytes.Buffer
		errOut  *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "gwstream-chat-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// A local .gwstream dir keeps config and last run out of $HOME.
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".gwstream"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())

		toolsFile := filepath.Join(tmpDir, "tools.json")
		Expect(os.WriteFile(toolsFile, []byte(`[{"name":"web_search","description":"Search the web"}]`), 0o600)).To(Succeed())

		s, err := replay.New(replay.Config{Stream: []byte(recording), ToolsFile: toolsFile})
		Expect(err).NotTo(HaveOccurred())
		ts := httptest.NewServer(s.Handler())
		DeferCleanup(ts.Close)
		gwURL = ts.URL

		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	execute := func(stdin string, args ...string) error {
		cmd := chatcmder.NewChatCmd()
		cmd.SetOut(out)
		cmd.SetErr(errOut)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--base-url", gwURL))
		return cmd.Execute()
	}

	It("streams a single prompt and classifies tool calls", func() {
		Expect(execute("", "weather?", "--tool", "get_weather")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Hello"))
		Expect(out.String()).To(ContainSubstring("get_weather"))
		Expect(out.String()).To(ContainSubstring("web_search"))
		Expect(out.String()).To(ContainSubstring("5 prompt, 7 completion, 12 total"))
	})

	It("reports undeclared tools as remote", func() {
		Expect(execute("", "weather?", "--tool", "get_weather")).To(Succeed())

		Expect(lineWith(out.String(), "get_weather")).To(ContainSubstring("local"))
		Expect(lineWith(out.String(), "web_search")).To(ContainSubstring("remote"))
	})

	It("declares the tools of an MCP server", func() {
		Expect(execute("", "weather?", "--mcp", gwURL+replay.MCPPath)).To(Succeed())

		Expect(errOut.String()).To(ContainSubstring("Discovering MCP tools"))
		Expect(lineWith(out.String(), "web_search")).To(ContainSubstring("local"))
		Expect(lineWith(out.String(), "get_weather")).To(ContainSubstring("remote"))
	})

	It("records the raw stream", func() {
		path := filepath.Join(tmpDir, "turn.sse")
		Expect(execute("", "hi", "--record", path)).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(recording))
	})

	It("saves a summary of the last run", func() {
		Expect(execute("", "hi", "--tool", "get_weather")).To(Succeed())

		run, err := dotdir.NewManager().LoadLastRun("")
		Expect(err).NotTo(HaveOccurred())
		Expect(run).NotTo(BeNil())
		Expect(run.RequestID).NotTo(BeEmpty())
		Expect(run.CompletionID).To(Equal("c1"))
		Expect(run.FinishReason).To(Equal("tool_calls"))
		Expect(run.ToolCalls).To(Equal([]string{"get_weather", "web_search"}))
		Expect(run.TotalTokens).To(Equal(12))
	})

	It("runs an interactive session until /exit", func() {
		Expect(execute("hi\n\nagain\n/exit\n")).To(Succeed())

		Expect(strings.Count(out.String(), "Hello")).To(Equal(2))
	})

	It("reports a transport failure", func() {
		cmd := chatcmder.NewChatCmd()
		cmd.SetOut(out)
		cmd.SetErr(errOut)
		cmd.SetArgs([]string{"hi", "--base-url", "http://127.0.0.1:1"})

		Expect(cmd.Execute()).To(HaveOccurred())
		Expect(errOut.String()).To(ContainSubstring("transport"))
	})

	It("prints a failed prompt once", func() {
		cmd := chatcmder.NewChatCmd()
		cmd.SetOut(out)
		cmd.SetErr(errOut)
		cmd.SetArgs([]string{"hi", "--base-url", "http://127.0.0.1:1"})

		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
		Expect(strings.Count(errOut.String(), "connection refused")).To(Equal(1))
		Expect(errOut.String()).NotTo(ContainSubstring("Error:"))
		Expect(errOut.String()).NotTo(ContainSubstring("Usage:"))
	})
})

func lineWith(s, substr string) string {
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}
