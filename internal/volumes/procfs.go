package volumes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/GNOME/totem-sub005/internal/disc"
	"github.com/GNOME/totem-sub005/internal/logging"
)

// scsiTypeROM is the SCSI peripheral device type of CD/DVD drives.
const scsiTypeROM = "5"

// userMountRoots are where desktop automounters place removable media.
var userMountRoots = []string{"/media", "/run/media", "/mnt"}

// Procfs reads drives from sysfs and volumes from the kernel mount table.
type Procfs struct {
	sysBlock     string
	mountsPath   string
	labelTimeout time.Duration
	readLabel    func(ctx context.Context, device string, timeout time.Duration) (string, error)
	logger       *slog.Logger
}

// NewProcfs returns a monitor rooted at /sys/block and /proc/mounts.
func NewProcfs(labelTimeout time.Duration, logger *slog.Logger) *Procfs {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Procfs{
		sysBlock:     "/sys/block",
		mountsPath:   "/proc/mounts",
		labelTimeout: labelTimeout,
		readLabel:    disc.ReadLabel,
		logger:       logger,
	}
}

// Drives implements Monitor. Virtual block devices without a backing
// hardware device are skipped.
func (p *Procfs) Drives(ctx context.Context) ([]Drive, error) {
	entries, err := os.ReadDir(p.sysBlock)
	if err != nil {
		return nil, fmt.Errorf("list block devices: %w", err)
	}

	var drives []Drive
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		base := filepath.Join(p.sysBlock, name)
		if _, err := os.Stat(filepath.Join(base, "device")); err != nil {
			continue
		}
		optical := strings.HasPrefix(name, "sr") || readSysfs(base, "device", "type") == scsiTypeROM
		drives = append(drives, Drive{
			Name:           sysfsDriveName(base, name),
			Device:         "/dev/" + name,
			Optical:        optical,
			Removable:      optical || readSysfs(base, "removable") == "1",
			MediaAvailable: sysfsSize(base) > 0,
		})
	}
	sortDrives(drives)
	return drives, nil
}

// Volumes implements Monitor. A mount is listed when it lives under a
// desktop media root or its device belongs to a removable drive.
func (p *Procfs) Volumes(ctx context.Context) ([]Volume, error) {
	mounts, err := disc.ReadMounts(p.mountsPath)
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}

	drives, err := p.Drives(ctx)
	if err != nil {
		p.logger.Debug("drive listing failed; filtering mounts by path only", logging.Error(err))
	}

	seen := make(map[string]struct{})
	var vols []Volume
	for _, m := range mounts {
		if !strings.HasPrefix(m.Device, "/dev/") {
			continue
		}
		if !underUserRoot(m.MountPoint) && !onRemovableDrive(m.Device, drives) {
			continue
		}
		if _, dup := seen[m.MountPoint]; dup {
			continue
		}
		seen[m.MountPoint] = struct{}{}

		label, err := p.readLabel(ctx, m.Device, p.labelTimeout)
		if err != nil && !errors.Is(err, disc.ErrNoLabel) {
			p.logger.Debug("label lookup failed",
				logging.String(logging.FieldDevice, m.Device),
				logging.Error(err),
			)
		}
		vols = append(vols, Volume{
			Label:     volumeLabel(label, m.MountPoint),
			Device:    m.Device,
			MountPath: m.MountPoint,
			FSType:    m.FSType,
		})
	}
	sortVolumes(vols)
	return vols, nil
}

// Close implements Monitor.
func (p *Procfs) Close() error { return nil }

func underUserRoot(mount string) bool {
	for _, root := range userMountRoots {
		if mount == root || strings.HasPrefix(mount, root+"/") {
			return true
		}
	}
	return false
}

func onRemovableDrive(device string, drives []Drive) bool {
	for _, d := range drives {
		if d.Removable && (device == d.Device || isPartitionOf(device, d.Device)) {
			return true
		}
	}
	return false
}

// isPartitionOf reports whether device names a partition of disk: the disk
// name followed by a number (sdb1) or by "p" and a number (mmcblk0p1).
func isPartitionOf(device, disk string) bool {
	suffix, ok := strings.CutPrefix(device, disk)
	if !ok {
		return false
	}
	if rest, cut := strings.CutPrefix(suffix, "p"); cut && allDigits(rest) {
		return true
	}
	return allDigits(suffix)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sysfsDriveName(base, fallback string) string {
	name := strings.TrimSpace(readSysfs(base, "device", "vendor") + " " + readSysfs(base, "device", "model"))
	if name == "" {
		return fallback
	}
	return name
}

func sysfsSize(base string) int64 {
	size, err := strconv.ParseInt(readSysfs(base, "size"), 10, 64)
	if err != nil {
		return 0
	}
	return size
}

func readSysfs(parts ...string) string {
	data, err := os.ReadFile(filepath.Join(parts...))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
