// Package configcmder implements `gwstream config`, which reads and edits
// .gwstream/config.toml one dotted key at a time.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/config"
)

const masked = "********"

const configLongDesc string = `Read and edit .gwstream/config.toml.

Values in config.toml sit below CLI flags and GWSTREAM_* environment
variables and above the built-in defaults.

Keys:
%s

Examples:
  gwstream config set gateway.model gpt-4o
  gwstream config set gateway.timeout 90s
  gwstream config get gateway.base_url
  gwstream config list`

type configCommander struct {
	out   io.Writer
	store *config.Store
}

func NewConfigCmd() *cobra.Command {
	c := &configCommander{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and edit persistent gwstream configuration",
		Long:  fmt.Sprintf(configLongDesc, "  "+strings.Join(config.Keys(), "\n  ")),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:               "get <key>",
			Short:             "Print one configuration value",
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: completeKeys,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.open(cmd); err != nil {
					return err
				}
				return c.get(args[0])
			},
		},
		&cobra.Command{
			Use:               "set <key> <value>",
			Short:             "Validate and store one configuration value",
			Args:              cobra.ExactArgs(2),
			ValidArgsFunction: completeKeys,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.open(cmd); err != nil {
					return err
				}
				return c.set(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every configuration value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.open(cmd); err != nil {
					return err
				}
				return c.list()
			},
		},
	)

	return cmd
}

// open resolves the store from --config-dir, which the root command defines.
func (c *configCommander) open(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config-dir")
	store, err := config.NewStore(dir)
	if err != nil {
		return fmt.Errorf("resolving config: %w", err)
	}
	c.out = cmd.OutOrStdout()
	c.store = store
	return nil
}

func (c *configCommander) get(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	value, err := c.store.Get(key)
	if err != nil {
		return err
	}

	c.header()
	fmt.Fprintf(c.out, "  %s  %s\n\n", cliui.KeyStyle.Render(key), styled(key, value))
	return nil
}

func (c *configCommander) set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := c.store.Set(key, value); err != nil {
		return err
	}

	c.header()
	fmt.Fprintf(c.out, "  %s Set %s = %s\n\n", cliui.SuccessMark, cliui.KeyStyle.Render(key), styled(key, value))
	return nil
}

func (c *configCommander) list() error {
	c.header()

	keys := config.Keys()
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	for _, key := range keys {
		value, err := c.store.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-*s", width, key)), styled(key, value))
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *configCommander) header() {
	fmt.Fprintf(c.out, "\n  %s %s\n\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(c.store.Path()))
}

func checkKey(key string) error {
	if config.IsValidKey(key) {
		return nil
	}
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(config.Keys(), ", "))
}

// styled renders a value for display, masking secrets.
func styled(key, value string) string {
	switch {
	case value == "":
		return cliui.DimStyle.Render("<not set>")
	case config.IsSecretKey(key):
		return cliui.ValueStyle.Render(masked)
	default:
		return cliui.ValueStyle.Render(value)
	}
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
