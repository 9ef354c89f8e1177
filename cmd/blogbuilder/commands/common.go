package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/notify"
)

// LogLevelEnv overrides the log level when -v is not given.
const LogLevelEnv = "BLOGBUILDER_LOG_LEVEL"

// Global carries process-wide state into subcommands.
type Global struct {
	Context context.Context
	Logger  *slog.Logger
	Out     io.Writer // user-facing output
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blog.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the site once"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
	List  ListCmd  `cmd:"" help:"List documents in publication order without rendering"`
	Watch WatchCmd `cmd:"" help:"Build, then rebuild on changes and on an optional schedule"`

	logWriter io.Writer `kong:"-"`
}

// SetLogOutput redirects logs configured by AfterApply. Defaults to stderr.
func (c *CLI) SetLogOutput(w io.Writer) { c.logWriter = w }

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	w := c.logWriter
	if w == nil {
		w = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadConfig loads the configuration named by --config.
func (c *CLI) LoadConfig() (*config.Config, error) {
	return config.Load(c.Config)
}

// newBuilder wires metrics and notifications for cfg. The returned func
// releases the publisher.
func newBuilder(cfg *config.Config, logger *slog.Logger) (*build.Builder, func()) {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Monitoring.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
	}

	publisher, err := notify.New(cfg.Notify, logger)
	if err != nil {
		logger.Warn("Build notifications disabled", logfields.Error(err))
		publisher = notify.NopPublisher{}
	}

	b := build.New(cfg,
		build.WithLogger(logger),
		build.WithRecorder(recorder),
		build.WithPublisher(publisher),
	)
	return b, publisher.Close
}
