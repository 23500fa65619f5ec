package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GNOME/totem-sub005/internal/disc"
)

type resultJSON struct {
	Path string         `json:"path"`
	Type disc.MediaType `json:"type"`
	Name string         `json:"name"`
	MRL  string         `json:"mrl,omitempty"`
}

type failureJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	listing
}

func printResult(cmd *cobra.Command, opts options, path string, res disc.Result) error {
	name, err := disc.HumanReadableName(res.Type)
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), resultJSON{Path: path, Type: res.Type, Name: name, MRL: res.MRL})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s contains a %s\n", path, name)
	if res.MRL != "" {
		fmt.Fprintf(out, "URL for directory is %s\n", res.MRL)
	}
	return nil
}

func printFailure(cmd *cobra.Command, opts options, path string, classifyErr error, l listing) error {
	if opts.jsonOutput {
		payload := failureJSON{Path: path, Error: classifyErr.Error(), listing: l}
		var cerr *disc.ClassificationError
		if errors.As(classifyErr, &cerr) {
			payload.Kind = cerr.ErrorKind()
		}
		return writeJSON(cmd.OutOrStdout(), payload)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Error: %s\n", classifyErr)
	writeDrives(out, l)
	writeVolumes(out, l)
	return nil
}

func writeDrives(out io.Writer, l listing) {
	if len(l.Drives) == 0 {
		fmt.Fprintln(out, "No connected drives!")
		return
	}
	fmt.Fprintln(out, "List of connected drives:")
	for _, d := range l.Drives {
		fmt.Fprintf(out, "\t%s (%s)\n", d.Name, d.Device)
	}
}

func writeVolumes(out io.Writer, l listing) {
	if len(l.Volumes) == 0 {
		fmt.Fprintln(out, "No mounted volumes!")
		return
	}
	fmt.Fprintln(out, "List of mounted volumes:")
	for _, v := range l.Volumes {
		fmt.Fprintf(out, "\t%s (%s)\n", v.Label, v.MountPath)
	}
}

// writeJSON encodes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
