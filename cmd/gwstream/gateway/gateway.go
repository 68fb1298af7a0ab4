// Package gatewaycmder provides the gateway command and its subcommands for
// inspecting the AI gateway: models, remote tools and health.
package gatewaycmder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/cmd/gwstream/cmdenv"
	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/config"
	"github.com/papercomputeco/gwstream/pkg/gateway"
	"github.com/papercomputeco/gwstream/pkg/utils"
)

const gatewayLongDesc string = `Inspect the AI gateway.

Subcommands:
  gwstream gateway models    List the models the gateway serves
  gwstream gateway tools     List the tools the gateway executes itself
  gwstream gateway health    Check that the gateway is reachable

Examples:
  gwstream gateway models --base-url https://gateway.example.com
  gwstream gateway tools`

const gatewayShortDesc string = "Inspect the AI gateway"

// descriptionWidth bounds tool descriptions in the tools listing.
const descriptionWidth = 60

var gatewayFlags = []string{
	config.FlagBaseURL,
	config.FlagAPIKey,
	config.FlagTimeout,
}

// gatewayCommander holds the registry-bound flag values of one subcommand.
type gatewayCommander struct {
	baseURL string
	apiKey  string
	timeout string
}

func NewGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: gatewayShortDesc,
		Long:  gatewayLongDesc,
	}

	cmd.AddCommand(newSubCmd("models", "List the models the gateway serves", runModels))
	cmd.AddCommand(newSubCmd("tools", "List the tools the gateway executes itself", runTools))
	cmd.AddCommand(newSubCmd("health", "Check that the gateway is reachable", runHealth))

	return cmd
}

type runFunc func(ctx context.Context, w io.Writer, client *gateway.Client) error

func newSubCmd(use, short string, run runFunc) *cobra.Command {
	cmder := &gatewayCommander{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, gatewayFlags...)
			if err != nil {
				return err
			}
			defer env.Close()

			client, err := env.Client()
			if err != nil {
				return err
			}

			env.Logger.Debug("querying gateway", "command", use, "base_url", client.BaseURL())
			return run(cmd.Context(), cmd.OutOrStdout(), client)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIKey, &cmder.apiKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)

	return cmd
}

func runModels(ctx context.Context, w io.Writer, client *gateway.Client) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}

	if len(models) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No models."))
		return nil
	}

	for _, m := range models {
		if m.OwnedBy != "" {
			fmt.Fprintf(w, "  %s %s\n", cliui.NameStyle.Render(m.ID), cliui.DimStyle.Render("("+m.OwnedBy+")"))
		} else {
			fmt.Fprintf(w, "  %s\n", cliui.NameStyle.Render(m.ID))
		}
	}
	return nil
}

func runTools(ctx context.Context, w io.Writer, client *gateway.Client) error {
	tools, err := client.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("listing tools: %w", err)
	}

	if len(tools) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No remote tools."))
		return nil
	}

	maxLen := 0
	for _, t := range tools {
		maxLen = max(maxLen, len(t.Name))
	}

	for _, t := range tools {
		desc := strings.Join(strings.Fields(t.Description), " ")
		fmt.Fprintf(w, "  %s  %s\n",
			cliui.NameStyle.Render(fmt.Sprintf("%-*s", maxLen, t.Name)),
			cliui.DimStyle.Render(utils.Truncate(desc, descriptionWidth)),
		)
	}
	return nil
}

func runHealth(ctx context.Context, w io.Writer, client *gateway.Client) error {
	if !client.Health(ctx) {
		fmt.Fprintf(w, "  %s %s unreachable\n", cliui.FailMark, client.BaseURL())
		return fmt.Errorf("gateway %s is not healthy", client.BaseURL())
	}

	fmt.Fprintf(w, "  %s %s healthy\n", cliui.SuccessMark, client.BaseURL())
	return nil
}
