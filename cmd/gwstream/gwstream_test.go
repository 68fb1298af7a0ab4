package gwstreamcmder_test

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gwstreamcmder "github.com/papercomputeco/gwstream/cmd/gwstream"
	"github.com/papercomputeco/gwstream/pkg/dotdir"
	"github.com/papercomputeco/gwstream/replay"
)

var _ = Describe("NewGwstreamCmd", func() {
	It("registers every subcommand", func() {
		cmd := gwstreamcmder.NewGwstreamCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("chat", "gateway", "replay", "init", "config", "last", "version"))
	})

	It("has the global flags", func() {
		cmd := gwstreamcmder.NewGwstreamCmd()
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("debug").Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("log-json")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("log-file")).NotTo(BeNil())
	})
})

var _ = Describe("gwstream end to end", func() {
	var (
		tmpDir    string
		configDir string
		gwURL     string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "gwstream-root-test-*")
		Expect(err).NotTo(HaveOccurred())
		configDir = filepath.Join(tmpDir, "cfg")

		stream := "data: {\"id\":\"c9\",\"model\":\"replay\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"pong\"},\"finish_reason\":\"stop\"}]}\n\n" +
			"data: [DONE]\n\n"
		s, err := replay.New(replay.Config{Stream: []byte(stream)})
		Expect(err).NotTo(HaveOccurred())
		ts := httptest.NewServer(s.Handler())
		DeferCleanup(ts.Close)
		gwURL = ts.URL
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	execute := func(args ...string) (string, error) {
		out := &bytes.Buffer{}
		cmd := gwstreamcmder.NewGwstreamCmd()
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--config-dir", configDir))
		err := cmd.Execute()
		return out.String(), err
	}

	It("streams with the base url saved in config", func() {
		_, err := execute("config", "set", "gateway.base_url", gwURL)
		Expect(err).NotTo(HaveOccurred())

		out, err := execute("chat", "ping")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("pong"))

		run, err := dotdir.NewManager().LoadLastRun(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(run.CompletionID).To(Equal("c9"))
		Expect(run.FinishReason).To(Equal("stop"))

		out, err = execute("last")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("c9"))
	})

	It("writes debug logs to a log file", func() {
		logPath := filepath.Join(tmpDir, "gwstream.log")

		_, err := execute("gateway", "health", "--base-url", gwURL, "--debug", "--log-file", logPath)
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.TrimSpace(string(data))).NotTo(BeEmpty())
		Expect(string(data)).To(ContainSubstring("querying gateway"))
	})
})
