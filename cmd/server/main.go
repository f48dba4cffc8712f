package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/diagramhub/internal/app"
	"github.com/vovakirdan/diagramhub/internal/config"
	applog "github.com/vovakirdan/diagramhub/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type serveFlags struct {
	configPath string
	addr       string
	logLevel   string
	maxRooms   int
}

func newRootCmd() *cobra.Command {
	var flags serveFlags

	root := &cobra.Command{
		Use:          "diagramhub",
		Short:        "Real-time collaborative diagram editing server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config.yaml (created with defaults when missing)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
	for _, c := range []*cobra.Command{root, serve} {
		c.Flags().StringVar(&flags.addr, "addr", "", "HTTP listen address")
		c.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
		c.Flags().IntVar(&flags.maxRooms, "max-rooms", 0, "maximum number of rooms held in memory (0 = unlimited)")
	}
	root.AddCommand(serve)

	return root
}

func runServe(cmd *cobra.Command, flags serveFlags) error {
	bootLogger := applog.New("info", "")

	cfg, path, err := config.Load(bootLogger, flags.configPath)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", path).Msg("load config")
		return err
	}
	cfg.UpdateFrom(config.Config{
		Addr:     flags.addr,
		LogLevel: flags.logLevel,
		MaxRooms: flags.maxRooms,
	})

	logger := applog.New(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(&cfg, logger)

	logger.Info().Str("addr", cfg.Addr).Str("config", path).Msg("starting diagramhub server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
