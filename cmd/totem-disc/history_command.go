package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GNOME/totem-sub005/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clearAll bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded disc detections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			c := cmd.Context()
			if c == nil {
				c = context.Background()
			}
			store, err := history.Open(c, cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if clearAll {
				removed, err := store.Clear(c)
				if err != nil {
					return fmt.Errorf("clear history: %w", err)
				}
				fmt.Fprintf(out, "Removed %d history %s\n", removed, pluralize(removed, "entry", "entries"))
				return nil
			}

			entries, err := store.List(c, limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if jsonOutput {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No detections recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Detected", "Device", "Source", "Type", "Details"},
				historyRows(entries),
				nil,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all recorded detections")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		details := e.MRL
		if e.Error != "" {
			details = e.Error
		}
		rows = append(rows, []string{
			e.DetectedAt.Local().Format("2006-01-02 15:04:05"),
			e.Device,
			string(e.Source),
			e.MediaType.String(),
			details,
		})
	}
	return rows
}

func pluralize(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
