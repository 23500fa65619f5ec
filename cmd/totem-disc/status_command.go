package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GNOME/totem-sub005/internal/disc"
	"github.com/GNOME/totem-sub005/internal/history"
)

var (
	detectDevice = disc.DetectWithURL
	driveStatus  = disc.CheckDriveStatus
)

type statusReport struct {
	Device      string         `json:"device"`
	DriveStatus string         `json:"drive_status,omitempty"`
	Type        disc.MediaType `json:"type"`
	Name        string         `json:"name,omitempty"`
	MRL         string         `json:"mrl,omitempty"`
	Error       string         `json:"error,omitempty"`
	Kind        string         `json:"kind,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var record bool

	cmd := &cobra.Command{
		Use:   "status [device]",
		Short: "Classify the disc in a drive (defaults to the configured drive)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			device := cfg.Drive.Device
			if len(args) == 1 {
				device = strings.TrimSpace(args[0])
			}

			report, classifyErr := buildStatusReport(device)

			if record {
				if err := recordStatus(cmd.Context(), cfg.HistoryPath(), device, report, classifyErr); err != nil {
					return err
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printStatusReport(cmd, report)
			}
			if classifyErr != nil {
				return fmt.Errorf("classify %s: %w", device, classifyErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "Store the outcome in the detection history")
	return cmd
}

func buildStatusReport(device string) (statusReport, error) {
	report := statusReport{Device: device}
	if info, err := os.Stat(device); err == nil && !info.IsDir() {
		if status, err := driveStatus(device); err == nil {
			report.DriveStatus = status.String()
		}
	}

	res, err := detectDevice(device)
	if err != nil {
		report.Type = disc.MediaTypeError
		report.Error = err.Error()
		var cerr *disc.ClassificationError
		if errors.As(err, &cerr) {
			report.Kind = cerr.ErrorKind()
		}
		return report, err
	}
	report.Type = res.Type
	report.MRL = res.MRL
	report.Name, _ = disc.HumanReadableName(res.Type)
	return report, nil
}

func recordStatus(ctx context.Context, path, device string, report statusReport, classifyErr error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := history.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	entry := history.NewEntry(device, history.SourceCLI, disc.Result{Type: report.Type, MRL: report.MRL}, classifyErr)
	if _, err := store.Add(ctx, entry); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

func printStatusReport(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	lines := renderSectionHeader("Disc status", colorize)
	lines = append(lines, renderStatusLine("Device", statusInfo, report.Device, colorize))
	if report.DriveStatus != "" {
		kind := statusWarn
		if report.DriveStatus == disc.DriveStatusDiscOK.String() {
			kind = statusOK
		}
		lines = append(lines, renderStatusLine("Drive", kind, report.DriveStatus, colorize))
	}
	if report.Error != "" {
		lines = append(lines, renderStatusLine("Media", statusError, report.Kind, colorize))
	} else {
		lines = append(lines, renderStatusLine("Media", statusOK, report.Name, colorize))
		if report.MRL != "" {
			lines = append(lines, renderStatusLine("MRL", statusInfo, report.MRL, colorize))
		}
	}

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
