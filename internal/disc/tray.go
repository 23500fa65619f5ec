package disc

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Linux CD-ROM ioctl numbers from <linux/cdrom.h>.
const (
	ioctlCDROMDriveStatus = 0x5326
	ioctlCDROMDiscStatus  = 0x5327
)

// DriveStatus represents the result of a CDROM_DRIVE_STATUS ioctl call.
type DriveStatus int

const (
	DriveStatusNoInfo   DriveStatus = 0
	DriveStatusNoDisc   DriveStatus = 1
	DriveStatusTrayOpen DriveStatus = 2
	DriveStatusNotReady DriveStatus = 3
	DriveStatusDiscOK   DriveStatus = 4
)

// String returns a human-readable label for the drive status.
func (s DriveStatus) String() string {
	switch s {
	case DriveStatusNoInfo:
		return "no_info"
	case DriveStatusNoDisc:
		return "no_disc"
	case DriveStatusTrayOpen:
		return "tray_open"
	case DriveStatusNotReady:
		return "not_ready"
	case DriveStatusDiscOK:
		return "disc_ok"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// DiscStatus represents the result of a CDROM_DISC_STATUS ioctl call.
type DiscStatus int

const (
	DiscStatusNoInfo DiscStatus = 0
	DiscStatusNoDisc DiscStatus = 1
	DiscStatusAudio  DiscStatus = 100
	DiscStatusData1  DiscStatus = 101
	DiscStatusData2  DiscStatus = 102
	DiscStatusXA21   DiscStatus = 103
	DiscStatusXA22   DiscStatus = 104
	DiscStatusMixed  DiscStatus = 105
)

// HasAudioTracks reports whether the table of contents carries audio tracks.
func (s DiscStatus) HasAudioTracks() bool {
	return s == DiscStatusAudio || s == DiscStatusMixed
}

// Test seams for the ioctls; regular files cannot answer them.
var (
	driveStatusOf = func(f *os.File) (DriveStatus, error) {
		r, err := unix.IoctlRetInt(int(f.Fd()), ioctlCDROMDriveStatus)
		return DriveStatus(r), err
	}
	discStatusOf = func(f *os.File) (DiscStatus, error) {
		r, err := unix.IoctlRetInt(int(f.Fd()), ioctlCDROMDiscStatus)
		return DiscStatus(r), err
	}
)

// CheckDriveStatus queries the drive state using the CDROM_DRIVE_STATUS ioctl.
// Returns an error if the device cannot be opened or the ioctl fails.
func CheckDriveStatus(devicePath string) (DriveStatus, error) {
	devicePath = strings.TrimSpace(devicePath)
	if devicePath == "" {
		return DriveStatusNoInfo, fmt.Errorf("empty device path")
	}

	f, err := os.OpenFile(devicePath, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("open %s: %w", devicePath, unwrapPathError(err))
	}
	defer f.Close()

	status, err := driveStatusOf(f)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("ioctl CDROM_DRIVE_STATUS on %s: %w", devicePath, err)
	}
	return status, nil
}

// WaitForReady polls the drive until it reports DriveStatusDiscOK, the poll
// budget is spent, or ctx is cancelled. Classification never calls this;
// waiting for a medium is the caller's policy.
func WaitForReady(ctx context.Context, devicePath string, maxPolls int, interval time.Duration) (DriveStatus, error) {
	if maxPolls <= 0 {
		maxPolls = 60
	}
	if interval <= 0 {
		interval = time.Second
	}

	var lastStatus DriveStatus
	for i := 0; i < maxPolls; i++ {
		status, err := checkDriveStatus(devicePath)
		if err != nil {
			return status, err
		}
		lastStatus = status
		if status == DriveStatusDiscOK {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return lastStatus, ctx.Err()
		case <-time.After(interval):
		}
	}

	return lastStatus, fmt.Errorf("drive %s not ready after %d polls (last status: %s)", devicePath, maxPolls, lastStatus)
}

// checkDriveStatus is swapped in tests of WaitForReady.
var checkDriveStatus = CheckDriveStatus
