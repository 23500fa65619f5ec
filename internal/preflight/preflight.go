package preflight

import (
	"context"

	"github.com/GNOME/totem-sub005/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// RunAll executes every applicable check for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDrive(cfg.Drive.Device),
		CheckBinary(Requirement{
			Name:        "lsblk",
			Command:     "lsblk",
			Description: "volume labels for the procfs backend",
			Optional:    true,
		}),
	}

	// procfs never talks to the bus; auto degrades to procfs without it.
	switch cfg.Monitor.Backend {
	case config.BackendUDisks2:
		results = append(results, CheckUDisks(ctx, cfg.DBusTimeout(), false))
	case config.BackendAuto, "":
		results = append(results, CheckUDisks(ctx, cfg.DBusTimeout(), true))
	}

	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
