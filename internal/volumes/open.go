package volumes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GNOME/totem-sub005/internal/config"
	"github.com/GNOME/totem-sub005/internal/logging"
)

// dialUDisks connects the UDisks2 backend. Tests replace it.
var dialUDisks = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Monitor, error) {
	return NewUDisks2(ctx, cfg.DBusTimeout(), logger)
}

// Open returns the monitor selected by cfg.Monitor.Backend. In auto mode a
// UDisks2 failure falls back to procfs with a warning.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Monitor, error) {
	logger = logging.NewComponentLogger(logger, "volumes")
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}

	switch cfg.Monitor.Backend {
	case config.BackendUDisks2:
		mon, err := dialUDisks(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("udisks2 monitor: %w", err)
		}
		return mon, nil
	case config.BackendProcfs:
		return NewProcfs(cfg.LabelTimeout(), logger), nil
	case config.BackendAuto, "":
		mon, err := dialUDisks(ctx, cfg, logger)
		if err == nil {
			logger.Debug("volume monitor selected", logging.Args(logging.DecisionAttrs("volume_backend", config.BackendUDisks2, "udisksd reachable")...)...)
			return mon, nil
		}
		logging.WarnWithContext(logger, "udisks2 unavailable; reading /proc instead", "volume_backend_fallback",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "start udisksd or set monitor.backend = \"procfs\""),
			logging.String(logging.FieldImpact, "drive names and labels may be less descriptive"),
		)
		return NewProcfs(cfg.LabelTimeout(), logger), nil
	default:
		return nil, fmt.Errorf("unknown volume monitor backend %q", cfg.Monitor.Backend)
	}
}
