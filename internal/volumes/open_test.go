package volumes

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/GNOME/totem-sub005/internal/config"
)

type stubMonitor struct{}

func (stubMonitor) Drives(context.Context) ([]Drive, error)   { return nil, nil }
func (stubMonitor) Volumes(context.Context) ([]Volume, error) { return nil, nil }
func (stubMonitor) Close() error                              { return nil }

func stubDial(t *testing.T, mon Monitor, err error) *int {
	t.Helper()
	calls := 0
	orig := dialUDisks
	dialUDisks = func(context.Context, *config.Config, *slog.Logger) (Monitor, error) {
		calls++
		return mon, err
	}
	t.Cleanup(func() { dialUDisks = orig })
	return &calls
}

func TestOpenSelectsBackend(t *testing.T) {
	errNoBus := errors.New("no system bus")
	tests := []struct {
		name      string
		backend   string
		dialErr   error
		wantProcs bool
		wantErr   bool
		wantDials int
	}{
		{name: "auto prefers udisks2", backend: config.BackendAuto, wantDials: 1},
		{name: "auto falls back", backend: config.BackendAuto, dialErr: errNoBus, wantProcs: true, wantDials: 1},
		{name: "udisks2 only", backend: config.BackendUDisks2, wantDials: 1},
		{name: "udisks2 failure is fatal", backend: config.BackendUDisks2, dialErr: errNoBus, wantErr: true, wantDials: 1},
		{name: "procfs never dials", backend: config.BackendProcfs, wantProcs: true},
		{name: "unknown backend", backend: "hal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stub Monitor = stubMonitor{}
			if tt.dialErr != nil {
				stub = nil
			}
			calls := stubDial(t, stub, tt.dialErr)
			cfg := config.Default()
			cfg.Monitor.Backend = tt.backend

			mon, err := Open(context.Background(), &cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.dialErr != nil && !errors.Is(err, tt.dialErr) {
					t.Fatalf("expected wrapped dial error, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if *calls != tt.wantDials {
				t.Fatalf("expected %d dial attempts, got %d", tt.wantDials, *calls)
			}
			if tt.wantErr {
				return
			}
			_, isProcfs := mon.(*Procfs)
			if isProcfs != tt.wantProcs {
				t.Fatalf("unexpected monitor %T", mon)
			}
			if err := mon.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
		})
	}
}
