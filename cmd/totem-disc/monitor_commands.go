package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GNOME/totem-sub005/internal/volumes"
)

var openMonitor = volumes.Open

func newDrivesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "drives",
		Short: "List connected drives",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(cmd, ctx, func(c context.Context, mon volumes.Monitor) error {
				drives, err := mon.Drives(c)
				if err != nil {
					return fmt.Errorf("list drives: %w", err)
				}
				if jsonOutput {
					if drives == nil {
						drives = []volumes.Drive{}
					}
					return writeJSON(cmd, drives)
				}
				if len(drives) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No connected drives")
					return nil
				}
				rows := make([][]string, 0, len(drives))
				for _, d := range drives {
					rows = append(rows, []string{d.Device, d.Name, yesNo(d.Optical), yesNo(d.Removable), yesNo(d.MediaAvailable)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Device", "Name", "Optical", "Removable", "Media"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print drives as JSON")
	return cmd
}

func newVolumesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "List mounted volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMonitor(cmd, ctx, func(c context.Context, mon volumes.Monitor) error {
				vols, err := mon.Volumes(c)
				if err != nil {
					return fmt.Errorf("list volumes: %w", err)
				}
				if jsonOutput {
					if vols == nil {
						vols = []volumes.Volume{}
					}
					return writeJSON(cmd, vols)
				}
				if len(vols) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No mounted volumes")
					return nil
				}
				rows := make([][]string, 0, len(vols))
				for _, v := range vols {
					rows = append(rows, []string{v.Label, v.Device, v.MountPath, v.FSType})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Label", "Device", "Mount point", "Filesystem"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print volumes as JSON")
	return cmd
}

func withMonitor(cmd *cobra.Command, ctx *commandContext, fn func(context.Context, volumes.Monitor) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	c := cmd.Context()
	if c == nil {
		c = context.Background()
	}
	mon, err := openMonitor(c, cfg, ctx.commandLogger(cmd, "volumes"))
	if err != nil {
		return fmt.Errorf("open volume monitor: %w", err)
	}
	defer mon.Close()
	return fn(c, mon)
}
