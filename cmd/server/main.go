package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomrelay/internal/app"
	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/log"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:           "roomrelay",
		Short:         "Room-based chat relay over WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, overrides)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config file (default $ROOMRELAY_CONFIG_DEFAULT_PATH or ./config.yaml)")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&overrides.LogFormat, "log-format", "", "log format (console, json)")
	flags.IntVar(&overrides.RateLimitPerMinute, "rate-limit", 0, "inbound events per connection per minute, 0 disables")

	return cmd
}

func run(ctx context.Context, configPath string, overrides config.Config) error {
	bootstrap := log.New("info", "console")

	cfg, path, err := config.Load(bootstrap, configPath)
	if err != nil {
		bootstrap.Error().Err(err).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", cfg.Addr).Str("config", path).Msg("starting roomrelay")
	if err := app.New(&cfg, logger).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
