package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/GNOME/totem-sub005/internal/config"
	"github.com/GNOME/totem-sub005/internal/disc"
	"github.com/GNOME/totem-sub005/internal/history"
	"github.com/GNOME/totem-sub005/internal/logging"
	"github.com/GNOME/totem-sub005/internal/preflight"
)

// ErrAlreadyRunning is returned by Run when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another totem-disc watch instance is already running")

type (
	classifyFunc func(device string) (disc.Result, error)
	waitFunc     func(ctx context.Context, device string, polls int, interval time.Duration) (disc.DriveStatus, error)
)

// Outcome is the result of one classification attempt.
type Outcome struct {
	Device string
	Source history.Source
	Result disc.Result
	Err    error
	At     time.Time
}

// Daemon watches one optical drive and classifies every inserted medium.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *history.Store
	session string

	lockPath string
	lock     *flock.Flock

	classify  classifyFunc
	waitReady waitFunc
	checks    func(context.Context, *config.Config) []preflight.Result

	running atomic.Bool
	mu      sync.Mutex
	last    *Outcome
}

// New constructs a daemon. store may be nil, in which case nothing is recorded.
func New(cfg *config.Config, logger *slog.Logger, store *history.Store) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	session := uuid.NewString()
	logger = logging.NewComponentLogger(logger, "daemon").With(logging.String(logging.FieldSessionID, session))
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		session:   session,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
		classify:  disc.DetectWithURL,
		waitReady: disc.WaitForReady,
		checks:    preflight.RunAll,
	}, nil
}

// Run holds the instance lock until ctx is cancelled. It probes the drive
// once, then reacts to netlink medium events.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	device := d.cfg.Drive.Device
	d.logger.Info("totem-disc watch started",
		logging.String(logging.FieldDevice, device),
		logging.String("lock", d.lockPath),
	)

	d.runPreflight(ctx)

	if d.cfg.Watch.ClassifyOnStart {
		d.Classify(ctx, device, history.SourceStartup)
	}

	monitor := newNetlinkMonitor(device, d.logger, func(ctx context.Context, dev string) {
		d.Classify(ctx, dev, history.SourceNetlink)
	})
	if err := monitor.Start(ctx); err != nil {
		logging.WarnWithContext(d.logger, "netlink monitor unavailable; only the startup probe ran", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to open netlink sockets"),
			logging.String(logging.FieldImpact, "disc insertions are not detected"),
		)
	}

	<-ctx.Done()
	monitor.Stop()
	d.logger.Info("totem-disc watch stopped")
	return nil
}

// Classify probes device and logs and records the outcome. Netlink-triggered
// probes first wait for the drive to finish spinning up.
func (d *Daemon) Classify(ctx context.Context, device string, source history.Source) Outcome {
	ctx = logging.ContextWithDevice(ctx, device)
	logger := logging.WithContext(ctx, d.logger)

	outcome := Outcome{Device: device, Source: source}
	if source == history.SourceNetlink {
		if _, err := d.waitReady(ctx, device, d.cfg.Drive.ReadyPolls, d.cfg.ReadyInterval()); err != nil {
			if ctx.Err() != nil {
				outcome.Err = ctx.Err()
				return outcome
			}
			logger.Debug("drive not ready after waiting; classifying anyway", logging.Error(err))
		}
	}

	outcome.Result, outcome.Err = d.classify(device)
	outcome.At = time.Now()

	switch {
	case outcome.Err == nil:
		logger.Info("disc classified",
			logging.String(logging.FieldEventType, "disc_classified"),
			logging.String(logging.FieldMediaType, outcome.Result.Type.String()),
			logging.String(logging.FieldMRL, outcome.Result.MRL),
			logging.String(logging.FieldSource, string(source)),
		)
	case errors.Is(outcome.Err, disc.ErrNoMedium):
		logger.Info("drive is empty",
			logging.String(logging.FieldEventType, "drive_empty"),
			logging.String(logging.FieldSource, string(source)),
		)
	default:
		logging.WarnWithContext(logger, "disc classification failed", "disc_classification_failed",
			logging.Error(outcome.Err),
			logging.String(logging.FieldSource, string(source)),
			logging.String(logging.FieldErrorHint, errorHint(outcome.Err)),
			logging.String(logging.FieldImpact, "the disc cannot be played automatically"),
		)
	}

	d.record(ctx, logger, outcome)

	d.mu.Lock()
	d.last = &outcome
	d.mu.Unlock()
	return outcome
}

func (d *Daemon) runPreflight(ctx context.Context) {
	for _, result := range d.checks(ctx, d.cfg) {
		if result.Passed {
			d.logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		impact := "watching may fail"
		if result.Optional {
			impact = "optional feature unavailable"
		}
		logging.WarnWithContext(d.logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run `totem-disc check` for details"),
			logging.String(logging.FieldImpact, impact),
		)
	}
}

// Last returns the most recent outcome.
func (d *Daemon) Last() (Outcome, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last == nil {
		return Outcome{}, false
	}
	return *d.last, true
}

// Session returns the identifier attached to every log line of this run.
func (d *Daemon) Session() string {
	return d.session
}

func (d *Daemon) record(ctx context.Context, logger *slog.Logger, outcome Outcome) {
	if d.store == nil || !d.cfg.Watch.RecordHistory {
		return
	}
	entry := history.NewEntry(outcome.Device, outcome.Source, outcome.Result, outcome.Err)
	entry.DetectedAt = outcome.At
	if _, err := d.store.Add(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "failed to record detection", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on "+d.store.Path()),
			logging.String(logging.FieldImpact, "detection missing from history"),
		)
	}
}

func errorHint(err error) string {
	var cerr *disc.ClassificationError
	if !errors.As(err, &cerr) {
		return "check logs for details"
	}
	switch cerr.ErrorKind() {
	case "permission_denied":
		return "add the user to the group owning the drive (often cdrom or optical)"
	case "not_ready":
		return "wait for the drive to finish loading and retry"
	case "not_found":
		return "check drive.device in the configuration"
	case "io":
		return "clean the disc or try another drive"
	}
	return "check logs for details"
}
