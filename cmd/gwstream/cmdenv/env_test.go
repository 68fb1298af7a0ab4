package cmdenv_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/cmd/gwstream/cmdenv"
	"github.com/papercomputeco/gwstream/pkg/config"
	"github.com/papercomputeco/gwstream/pkg/stream"
)

// newCmd builds a command wired like the gwstream tree: persistent logging
// and config-dir flags on a parent, the model flag on the child.
func newCmd(configDir string, args ...string) (*cobra.Command, *cmdenv.Env, *bytes.Buffer) {
	var env *cmdenv.Env
	stderr := &bytes.Buffer{}

	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().String("config-dir", "", "")
	var debug, jsonLogs bool
	var logFile string
	config.AddBoolFlag(root, config.Flags, config.FlagDebug, &debug, true)
	config.AddBoolFlag(root, config.Flags, config.FlagLogJSON, &jsonLogs, true)
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "")

	var model string
	child := &cobra.Command{
		Use: "child",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			env, err = cmdenv.Load(cmd, config.FlagModel)
			return err
		},
	}
	config.AddStringFlag(child, config.Flags, config.FlagModel, &model)
	root.AddCommand(child)

	root.SetErr(stderr)
	root.SetArgs(append([]string{"child", "--config-dir", configDir}, args...))
	Expect(root.Execute()).To(Succeed())
	return root, env, stderr
}

var _ = Describe("Load", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "cmdenv-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)
	})

	It("resolves defaults when nothing is configured", func() {
		_, env, _ := newCmd(tmpDir)
		DeferCleanup(env.Close)

		Expect(env.Config.Gateway.Model).To(Equal(config.NewDefaultConfig().Gateway.Model))
		Expect(env.ConfigDir).To(Equal(tmpDir))
	})

	It("lets flags override the config file", func() {
		data := "[gateway]\nmodel = \"from-file\"\nbase_url = \"http://gw:1234/v1\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		_, env, _ := newCmd(tmpDir, "--model", "from-flag")
		DeferCleanup(env.Close)

		Expect(env.Config.Gateway.Model).To(Equal("from-flag"))

		client, err := env.Client()
		Expect(err).NotTo(HaveOccurred())
		Expect(client.BaseURL()).To(Equal("http://gw:1234"))
	})

	It("writes JSON logs to stderr when asked", func() {
		_, env, stderr := newCmd(tmpDir, "--log-json", "-d")
		DeferCleanup(env.Close)

		env.Logger.Debug("hello", "k", "v")
		Expect(stderr.String()).To(ContainSubstring(`"msg":"hello"`))
	})

	It("also logs to a file", func() {
		logPath := filepath.Join(tmpDir, "gwstream.log")
		_, env, _ := newCmd(tmpDir, "--log-file", logPath)

		env.Logger.Info("to file")
		Expect(env.Close()).To(Succeed())

		data, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"to file"`))
	})

	It("rejects an unparsable timeout when building the client", func() {
		data := "[gateway]\ntimeout = \"whenever\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		_, env, _ := newCmd(tmpDir)
		DeferCleanup(env.Close)

		_, err := env.Client()
		Expect(err).To(HaveOccurred())
	})

	Describe("Publishing", func() {
		It("publishes through the nop provider by default", func() {
			_, env, _ := newCmd(tmpDir)
			DeferCleanup(env.Close)

			pub, err := env.Publishing(context.Background())
			Expect(err).NotTo(HaveOccurred())

			pub.Sink.Handle(stream.OpenEvent{RequestID: "req-1"})
			pub.Sink.Handle(stream.ContentEvent{Text: "hi"})
			pub.Sink.Handle(stream.FinishEvent{})
			Expect(pub.Close()).To(Succeed())

			published, failed, dropped := pub.Stats()
			Expect(published).To(Equal(3))
			Expect(failed).To(BeZero())
			Expect(dropped).To(BeZero())
		})

		It("requires brokers for kafka", func() {
			data := "[eventstream]\nprovider = \"kafka\"\n"
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			_, env, _ := newCmd(tmpDir)
			DeferCleanup(env.Close)

			_, err := env.Publishing(context.Background())
			Expect(err).To(MatchError(ContainSubstring("broker")))
		})

		It("builds a kafka pipeline without contacting the brokers", func() {
			data := "[eventstream]\nprovider = \"kafka\"\nbrokers = \"127.0.0.1:1\"\n"
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			_, env, _ := newCmd(tmpDir)
			DeferCleanup(env.Close)

			pub, err := env.Publishing(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(pub.Close()).To(Succeed())
		})
	})
})
