package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/livecheck"
	"github.com/jpalmerr/livecheck/config"
)

// newLogger creates a JSON logger on stderr for CLI use.
func newLogger(cmd *cobra.Command, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: lvl,
	})), nil
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [names-file]",
		Short: "Check every channel in a names file",
		Long: `Check the live status of every channel in a names file.

The names file has one channel name per line; blank lines and lines starting
with # are ignored. It defaults to streamer_list.txt, or to names_file from
the config file.

Progress is printed as a table that updates in place on a terminal. The run
ends when every channel is Live, Offline or Not found, or on Ctrl+C, which
lets checks already in flight finish first.

Exit codes:
  0   - every channel was checked
  1   - invalid configuration or names
  2   - names or config file not found
  68  - channel host could not be resolved (check your network connection)
  69  - channel site unavailable
  130 - interrupted

Example:
  livecheck check
  livecheck check my_list.txt --workers 4 --rps 10
  livecheck check -c livecheck.yaml --listen :8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "path to config file")
	flags.Int("workers", config.DefaultMaxWorkers, "maximum checks in flight")
	flags.Int("rps", config.DefaultMaxRequestsPerSecond, "maximum checks started per second")
	flags.Int("retries", config.DefaultRetryLimit, "maximum attempts per channel")
	flags.Duration("retry-interval", config.DefaultRetryInterval, "delay before retrying an inconclusive channel")
	flags.String("fetcher", config.FetcherHTTP, "page fetcher: http or browser")
	flags.String("listen", "", "serve a status page and metrics on this address")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")

	return cmd
}

// loadConfig reads the config file if one is given, then applies flags the
// user set explicitly and the optional names-file argument.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.MaxWorkers, _ = flags.GetInt("workers")
	}
	if flags.Changed("rps") {
		cfg.MaxRequestsPerSecond, _ = flags.GetInt("rps")
	}
	if flags.Changed("retries") {
		cfg.RetryLimit, _ = flags.GetInt("retries")
	}
	if flags.Changed("retry-interval") {
		d, _ := flags.GetDuration("retry-interval")
		cfg.RetryInterval = config.Duration(d)
	}
	if flags.Changed("fetcher") {
		cfg.Fetcher, _ = flags.GetString("fetcher")
	}
	if flags.Changed("listen") {
		cfg.Listen, _ = flags.GetString("listen")
	}

	if len(args) == 1 {
		cfg.NamesFile = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(cmd, level)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	names, err := config.ResolveNames(cfg)
	if err != nil {
		return err
	}

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	opts = append(opts,
		livecheck.WithLogger(logger),
		livecheck.WithOutput(cmd.OutOrStdout()),
	)

	checker, err := livecheck.New(names, opts...)
	if err != nil {
		return fmt.Errorf("failed to create checker: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return checker.Run(ctx)
}
