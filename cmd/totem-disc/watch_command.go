package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GNOME/totem-sub005/internal/daemon"
	"github.com/GNOME/totem-sub005/internal/history"
	"github.com/GNOME/totem-sub005/internal/logging"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Classify every disc inserted into the configured drive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), ctx)
		},
	}
}

func runWatch(cmdCtx context.Context, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewDaemonLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var store *history.Store
	if cfg.Watch.RecordHistory {
		store, err = history.Open(signalCtx, cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
	}

	d, err := daemon.New(cfg, logger, store)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	return d.Run(signalCtx)
}
