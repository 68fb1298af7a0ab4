// Package cmdenv resolves the configuration, logger and gateway client shared
// by gwstream commands.
package cmdenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/config"
	"github.com/papercomputeco/gwstream/pkg/eventstream"
	"github.com/papercomputeco/gwstream/pkg/eventstream/kafka"
	"github.com/papercomputeco/gwstream/pkg/eventstream/nop"
	"github.com/papercomputeco/gwstream/pkg/eventstream/worker"
	"github.com/papercomputeco/gwstream/pkg/gateway"
	"github.com/papercomputeco/gwstream/pkg/git"
	"github.com/papercomputeco/gwstream/pkg/logger"
)

// Env is the resolved state a command runs with.
type Env struct {
	Config    *config.Config
	ConfigDir string
	Logger    *slog.Logger

	logFile *os.File
}

// Load resolves config through the viper chain (flag > env > file > default)
// after binding the logging flags plus flagKeys from config.Flags, then builds
// the logger. Call Close when the command is done.
func Load(cmd *cobra.Command, flagKeys ...string) (*Env, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	keys := append([]string{}, config.LogFlags...)
	keys = append(keys, flagKeys...)
	config.BindRegisteredFlags(v, cmd, config.Flags, keys)

	env := &Env{
		Config:    config.FromViper(v),
		ConfigDir: configDir,
	}

	if err := env.initLogger(cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *Env) initLogger(stderr io.Writer) error {
	lc := e.Config.Log

	pretty := false
	if f, ok := stderr.(*os.File); ok && !lc.JSON {
		pretty = cliui.IsTerminal(f)
	}

	console := logger.New(
		logger.WithDebug(lc.Debug),
		logger.WithJSON(lc.JSON),
		logger.WithPretty(pretty),
		logger.WithWriter(stderr),
	)

	if lc.File == "" {
		e.Logger = console
		return nil
	}

	f, err := os.OpenFile(lc.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	e.logFile = f

	e.Logger = logger.Multi(console, logger.New(
		logger.WithDebug(lc.Debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))
	return nil
}

// Close releases the log file, if any.
func (e *Env) Close() error {
	if e.logFile == nil {
		return nil
	}
	return e.logFile.Close()
}

// Client builds a gateway client from the [gateway] settings.
func (e *Env) Client() (*gateway.Client, error) {
	timeout, err := e.Config.Gateway.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	return gateway.NewClient(e.Config.Gateway.BaseURL,
		gateway.WithAPIKey(e.Config.Gateway.APIKey),
		gateway.WithTimeout(timeout),
		gateway.WithLogger(e.Logger),
	), nil
}

// Publishing is a stream sink that mirrors events to the configured event
// stream provider through an asynchronous worker pool.
type Publishing struct {
	Sink *eventstream.Sink
	pool *worker.Pool
	pub  eventstream.Publisher
	log  *slog.Logger
}

// Close drains the worker pool and closes the publisher.
func (p *Publishing) Close() error {
	p.pool.Close()
	if n, ok := p.pub.(*nop.Publisher); ok {
		p.log.Debug("event publishing disabled", "discarded", n.Discarded())
	}
	return p.pub.Close()
}

// Stats reports delivered and failed publishes plus events dropped because
// the queue was full.
func (p *Publishing) Stats() (published, failed, dropped int) {
	published, failed = p.pool.Stats()
	return published, failed, p.Sink.Dropped()
}

// Publishing builds the event publishing pipeline for the [eventstream]
// settings. An empty project defaults to the git repository name.
func (e *Env) Publishing(ctx context.Context) (*Publishing, error) {
	es := e.Config.EventStream

	var pub eventstream.Publisher
	switch es.Provider {
	case "", config.ProviderNop:
		pub = nop.NewPublisher()
	case config.ProviderKafka:
		kp, err := kafka.NewPublisher(kafka.Config{
			Brokers: es.BrokerList(),
			Topic:   es.Topic,
			Logger:  e.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		pub = kp
	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q", es.Provider)
	}

	pool, err := worker.NewPool(&worker.Config{
		Publisher: pub,
		QueueSize: es.QueueSize,
		Logger:    e.Logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating publish pool: %w", err), pub.Close())
	}

	project := es.Project
	if project == "" && es.Provider == config.ProviderKafka {
		project = git.RepoName(ctx, "")
	}

	return &Publishing{
		Sink: eventstream.NewSink(pool,
			eventstream.WithProject(project),
			eventstream.WithLogger(e.Logger),
		),
		pool: pool,
		pub:  pub,
		log:  e.Logger,
	}, nil
}
