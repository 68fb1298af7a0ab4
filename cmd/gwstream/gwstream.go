// Package gwstreamcmder
package gwstreamcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/gwstream/cmd/gwstream/chat"
	configcmder "github.com/papercomputeco/gwstream/cmd/gwstream/config"
	gatewaycmder "github.com/papercomputeco/gwstream/cmd/gwstream/gateway"
	initcmder "github.com/papercomputeco/gwstream/cmd/gwstream/init"
	lastcmder "github.com/papercomputeco/gwstream/cmd/gwstream/last"
	replaycmder "github.com/papercomputeco/gwstream/cmd/gwstream/replay"
	versioncmder "github.com/papercomputeco/gwstream/cmd/version"
	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/config"
)

const gwstreamLongDesc string = `gwstream streams chat completions from an AI gateway.

Responses arrive as server-sent events and are decoded as they stream: text
and reasoning are printed live, tool-call fragments are reassembled, and
completed calls are classified as local (declared by you) or remote (run by
the gateway).

Configuration is read from .gwstream/config.toml in the current directory or
~/.gwstream/, overridden by GWSTREAM_* environment variables and flags.

Get started:
  gwstream init                 Create a local .gwstream/ directory
  gwstream chat "hello"         Stream one completion
  gwstream gateway models       List the gateway's models
  gwstream replay --file x.sse  Serve a recorded stream`

const gwstreamShortDesc string = "gwstream - AI gateway streaming client"

type gwstreamCommander struct {
	configDir string
	debug     bool
	logJSON   bool
	logFile   string
	noColor   bool
}

func NewGwstreamCmd() *cobra.Command {
	cmder := &gwstreamCommander{}

	cmd := &cobra.Command{
		Use:          "gwstream",
		Short:        gwstreamShortDesc,
		Long:         gwstreamLongDesc,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if cmder.noColor {
				cliui.DisableColor()
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&cmder.configDir, "config-dir", "", "Override path to the .gwstream/ config directory")
	config.AddBoolFlag(cmd, config.Flags, config.FlagDebug, &cmder.debug, true)
	config.AddBoolFlag(cmd, config.Flags, config.FlagLogJSON, &cmder.logJSON, true)
	cmd.PersistentFlags().BoolVar(&cmder.noColor, "no-color", false, "Disable colored output")
	if def, ok := config.Flags[config.FlagLogFile]; ok {
		cmd.PersistentFlags().StringVar(&cmder.logFile, def.Name, "", def.Description)
	}

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(gatewaycmder.NewGatewayCmd())
	cmd.AddCommand(replaycmder.NewReplayCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(lastcmder.NewLastCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
