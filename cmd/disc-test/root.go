package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GNOME/totem-sub005/internal/config"
	"github.com/GNOME/totem-sub005/internal/disc"
	"github.com/GNOME/totem-sub005/internal/logging"
	"github.com/GNOME/totem-sub005/internal/volumes"
)

// errReported marks failures whose message was already written.
var errReported = errors.New("failure already reported")

// openMonitor builds the volume monitor used for error listings. Tests replace it.
var openMonitor = volumes.Open

const usage = "Usage: disc-test <device or directory>"

type options struct {
	configPath string
	jsonOutput bool
	verbose    bool
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "disc-test <device or directory>",
		Short:         "Detect the type of disc in a drive or directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				fmt.Fprintln(cmd.ErrOrStderr(), usage)
				return errReported
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log probe decisions to stderr")
	return cmd
}

func run(cmd *cobra.Command, opts options, path string) error {
	cfg, cfgErr := loadConfig(opts.configPath)
	logger, err := newLogger(cmd, cfg, opts.verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if cfgErr != nil {
		logging.WarnWithContext(logger, "configuration unusable; using defaults", "config_load_failed",
			logging.Error(cfgErr),
			logging.String(logging.FieldErrorHint, "run `totem-disc config validate`"),
			logging.String(logging.FieldImpact, "volume listings use the default backend"),
		)
	}

	res, classifyErr := classify(path)
	if classifyErr == nil {
		return printResult(cmd, opts, path, res)
	}

	found := collectListing(cmd.Context(), cfg, logger)
	if found.monitorErr != nil {
		logging.WarnWithContext(logger, "volume monitor failed", "volume_monitor_failed",
			logging.Error(found.monitorErr),
			logging.String(logging.FieldImpact, "drive and volume lists may be incomplete"),
		)
	}
	if err := printFailure(cmd, opts, path, classifyErr, found); err != nil {
		return err
	}
	return errReported
}

// classify picks directory or device detection based on what path is.
func classify(path string) (disc.Result, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return disc.DetectFromDir(path)
	}
	t, err := disc.DetectFromDevice(path)
	return disc.Result{Type: t}, err
}

func loadConfig(path string) (*config.Config, error) {
	cfg, _, _, err := config.Load(strings.TrimSpace(path))
	if err != nil {
		defaults := config.Default()
		return &defaults, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config, verbose bool) (*slog.Logger, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
}

type listing struct {
	Drives     []volumes.Drive  `json:"drives"`
	Volumes    []volumes.Volume `json:"volumes"`
	monitorErr error
}

func collectListing(ctx context.Context, cfg *config.Config, logger *slog.Logger) listing {
	if ctx == nil {
		ctx = context.Background()
	}
	mon, err := openMonitor(ctx, cfg, logger)
	if err != nil {
		return listing{monitorErr: err}
	}
	defer mon.Close()

	var out listing
	if out.Drives, err = mon.Drives(ctx); err != nil {
		out.monitorErr = err
	}
	if out.Volumes, err = mon.Volumes(ctx); err != nil && out.monitorErr == nil {
		out.monitorErr = err
	}
	return out
}
