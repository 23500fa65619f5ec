package disc

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDriveStatusString(t *testing.T) {
	tests := []struct {
		status DriveStatus
		want   string
	}{
		{DriveStatusNoInfo, "no_info"},
		{DriveStatusNoDisc, "no_disc"},
		{DriveStatusTrayOpen, "tray_open"},
		{DriveStatusNotReady, "not_ready"},
		{DriveStatusDiscOK, "disc_ok"},
		{DriveStatus(99), "unknown(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.status.String()
			if got != tt.want {
				t.Errorf("DriveStatus(%d).String() = %q, want %q", int(tt.status), got, tt.want)
			}
		})
	}
}

func TestDiscStatusHasAudioTracks(t *testing.T) {
	for status, want := range map[DiscStatus]bool{
		DiscStatusAudio:  true,
		DiscStatusMixed:  true,
		DiscStatusData1:  false,
		DiscStatusXA21:   false,
		DiscStatusNoInfo: false,
	} {
		if got := status.HasAudioTracks(); got != want {
			t.Errorf("DiscStatus(%d).HasAudioTracks() = %v, want %v", int(status), got, want)
		}
	}
}

func TestCheckDriveStatusEmptyPath(t *testing.T) {
	_, err := CheckDriveStatus("")
	if err == nil {
		t.Fatal("expected error for empty device path")
	}
}

func TestCheckDriveStatusInvalidPath(t *testing.T) {
	_, err := CheckDriveStatus("/dev/nonexistent_device_12345")
	if err == nil {
		t.Fatal("expected error for nonexistent device")
	}
}

func stubCheckDriveStatus(t *testing.T, fn func(string) (DriveStatus, error)) {
	t.Helper()
	orig := checkDriveStatus
	checkDriveStatus = fn
	t.Cleanup(func() { checkDriveStatus = orig })
}

func TestWaitForReadyBecomesReady(t *testing.T) {
	calls := 0
	stubCheckDriveStatus(t, func(string) (DriveStatus, error) {
		calls++
		if calls < 3 {
			return DriveStatusNotReady, nil
		}
		return DriveStatusDiscOK, nil
	})

	status, err := WaitForReady(context.Background(), "/dev/sr0", 5, time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
	if status != DriveStatusDiscOK || calls != 3 {
		t.Fatalf("status=%s calls=%d", status, calls)
	}
}

func TestWaitForReadyExhaustsPolls(t *testing.T) {
	stubCheckDriveStatus(t, func(string) (DriveStatus, error) {
		return DriveStatusTrayOpen, nil
	})

	status, err := WaitForReady(context.Background(), "/dev/sr0", 2, time.Millisecond)
	if err == nil {
		t.Fatal("expected error after exhausting polls")
	}
	if status != DriveStatusTrayOpen {
		t.Fatalf("last status = %s", status)
	}
}

func TestWaitForReadyCancelledContext(t *testing.T) {
	stubCheckDriveStatus(t, func(string) (DriveStatus, error) {
		return DriveStatusNoDisc, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WaitForReady(ctx, "/dev/sr0", 10, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForReadyPropagatesErrors(t *testing.T) {
	boom := errors.New("open failed")
	stubCheckDriveStatus(t, func(string) (DriveStatus, error) {
		return DriveStatusNoInfo, boom
	})
	if _, err := WaitForReady(context.Background(), "/dev/sr0", 3, time.Millisecond); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
