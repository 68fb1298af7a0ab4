// Package replaycmder provides the replay command, which serves a recorded
// SSE stream as a stand-in AI gateway.
package replaycmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/cmd/gwstream/cmdenv"
	"github.com/papercomputeco/gwstream/pkg/config"
	"github.com/papercomputeco/gwstream/replay"
)

type replayCommander struct {
	listen    string
	file      string
	toolsFile string

	models []string
	delay  time.Duration
	watch  bool
}

const replayLongDesc string = `Run a replay gateway.

Serves a recorded SSE stream (see "gwstream chat --record") on the chat
completions endpoint, so clients can be exercised without a live gateway.
Every streaming request receives the same recording.

The gateway also serves /v1/models, /v1/tools, /health, and the tool listing
as a streamable HTTP MCP server on /mcp.

Examples:
  gwstream replay --file hi.sse
  gwstream replay --file hi.sse --tools-file tools.json --delay 50ms
  gwstream replay --file hi.sse --watch`

const replayShortDesc string = "Serve a recorded stream as a stand-in gateway"

var replayFlags = []string{
	config.FlagReplayListen,
	config.FlagReplayFile,
	config.FlagReplayTools,
}

func NewReplayCmd() *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, replayFlags...)
			if err != nil {
				return err
			}
			defer env.Close()

			rc := env.Config.Replay
			if rc.File == "" {
				return errors.New("no recorded stream: set --file or replay.file")
			}

			s, err := replay.New(replay.Config{
				ListenAddr: rc.Listen,
				StreamFile: rc.File,
				ToolsFile:  rc.ToolsFile,
				Models:     cmder.models,
				FrameDelay: cmder.delay,
				Logger:     env.Logger,
			})
			if err != nil {
				return fmt.Errorf("creating replay gateway: %w", err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.serve(ctx, s, rc.Listen, env.Logger)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagReplayListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagReplayFile, &cmder.file)
	config.AddStringFlag(cmd, config.Flags, config.FlagReplayTools, &cmder.toolsFile)
	cmd.Flags().StringSliceVar(&cmder.models, "models", nil, "Model IDs to list on /v1/models (default: replay)")
	cmd.Flags().DurationVar(&cmder.delay, "delay", 0, "Pause after each replayed frame")
	cmd.Flags().BoolVar(&cmder.watch, "watch", false, "Reload the recording when the file changes")

	return cmd
}

// serve runs s until ctx is done or the process is interrupted.
func (c *replayCommander) serve(ctx context.Context, s *replay.Server, addr string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.watch {
		go func() {
			if err := s.Watch(ctx); err != nil {
				logger.Error("watching recording", "error", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.RunWithListener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		_ = s.Close()
		// Serve may not have taken the listener yet.
		_ = ln.Close()
		<-errCh
		return nil
	}
}
