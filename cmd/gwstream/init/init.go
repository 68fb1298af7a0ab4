// Package initcmder provides the init command for initializing a local
// .gwstream directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/config"
)

const (
	dirName    = ".gwstream"
	configName = "config.toml"

	fetchTimeout = 30 * time.Second
)

const initLongDesc string = `Initialize a new .gwstream/ directory in the current working directory.

Creates a local .gwstream/ directory that takes precedence over the default
~/.gwstream/ directory for configuration and the last run summary.

A config.toml is written with default values unless one already exists.
--preset selects a named preset (local, replay, openai) or an http(s) URL to
fetch a config.toml from, and always overwrites the existing config.

Examples:
  gwstream init
  gwstream init --preset replay
  gwstream init --preset https://example.com/gwstream/config.toml`

const initShortDesc string = "Initialize a local .gwstream/ directory"

type initCommander struct {
	preset string
	out    io.Writer
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Config preset (%s) or URL of a config.toml", strings.Join(config.PresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run(ctx context.Context) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	existed := err == nil && info.IsDir()
	if !existed {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating .gwstream directory: %w", err)
		}
	}

	wrote, err := c.writeConfig(ctx, dir)
	if err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(c.out, "  %s Already initialized: %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	} else {
		fmt.Fprintf(c.out, "  %s Initialized .gwstream directory: %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	}
	if wrote {
		fmt.Fprintf(c.out, "  %s Wrote %s\n", cliui.SuccessMark, cliui.DimStyle.Render(filepath.Join(dir, configName)))
	}
	return nil
}

// writeConfig reports whether config.toml was written. Without a preset an
// existing config is left alone.
func (c *initCommander) writeConfig(ctx context.Context, dir string) (bool, error) {
	store, err := config.NewStore(dir)
	if err != nil {
		return false, fmt.Errorf("resolving config: %w", err)
	}

	if c.preset == "" {
		_, err := os.Stat(store.Path())
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := c.resolveConfig(ctx)
	if err != nil {
		return false, err
	}
	if err := store.Save(cfg); err != nil {
		return false, err
	}
	return true, nil
}

func (c *initCommander) resolveConfig(ctx context.Context) (*config.Config, error) {
	switch {
	case c.preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(c.preset, "http://"), strings.HasPrefix(c.preset, "https://"):
		return fetchConfig(ctx, c.preset)
	default:
		return config.PresetConfig(c.preset)
	}
}

func fetchConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
