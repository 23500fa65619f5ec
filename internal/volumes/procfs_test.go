package volumes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GNOME/totem-sub005/internal/disc"
)

func writeSysfs(t *testing.T, root, name string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, name, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func newTestProcfs(t *testing.T, mounts string) *Procfs {
	t.Helper()
	root := t.TempDir()
	sysBlock := filepath.Join(root, "block")

	writeSysfs(t, sysBlock, "sr0", map[string]string{
		"device/type":   "5\n",
		"device/vendor": "HL-DT-ST\n",
		"device/model":  "DVDRAM GH24NSD1\n",
		"removable":     "1\n",
		"size":          "8388608\n",
	})
	writeSysfs(t, sysBlock, "sda", map[string]string{
		"device/type":   "0\n",
		"device/vendor": "ATA     \n",
		"device/model":  "WDC WD10EZEX\n",
		"removable":     "0\n",
		"size":          "1953525168\n",
	})
	writeSysfs(t, sysBlock, "sdb", map[string]string{
		"device/type": "0\n",
		"removable":   "1\n",
		"size":        "0\n",
	})
	// Virtual devices have no device link.
	writeSysfs(t, sysBlock, "loop0", map[string]string{"size": "100\n"})

	mountsPath := filepath.Join(root, "mounts")
	if err := os.WriteFile(mountsPath, []byte(mounts), 0o644); err != nil {
		t.Fatalf("write mounts: %v", err)
	}

	p := NewProcfs(time.Second, nil)
	p.sysBlock = sysBlock
	p.mountsPath = mountsPath
	p.readLabel = func(_ context.Context, device string, _ time.Duration) (string, error) {
		if device == "/dev/sr0" {
			return "SUMMER_2009", nil
		}
		return "", disc.ErrNoLabel
	}
	return p
}

func TestProcfsDrives(t *testing.T) {
	p := newTestProcfs(t, "")
	drives, err := p.Drives(context.Background())
	if err != nil {
		t.Fatalf("Drives: %v", err)
	}
	if len(drives) != 3 {
		t.Fatalf("expected 3 drives, got %+v", drives)
	}

	want := []Drive{
		{Name: "ATA WDC WD10EZEX", Device: "/dev/sda"},
		{Name: "sdb", Device: "/dev/sdb", Removable: true},
		{Name: "HL-DT-ST DVDRAM GH24NSD1", Device: "/dev/sr0", Optical: true, Removable: true, MediaAvailable: true},
	}
	want[0].MediaAvailable = true
	for i := range want {
		if drives[i] != want[i] {
			t.Fatalf("drive %d: got %+v want %+v", i, drives[i], want[i])
		}
	}
}

func TestProcfsVolumesFiltersUserMounts(t *testing.T) {
	mounts := `/dev/sda2 / ext4 rw 0 0
proc /proc proc rw 0 0
/dev/sr0 /run/media/user/SUMMER\0402009 iso9660 ro 0 0
/dev/sdb1 /srv/stick vfat rw 0 0
/dev/sda3 /mnt/backup ext4 rw 0 0
/dev/sda3 /mnt/backup ext4 rw 0 0
tmpfs /media/tmp tmpfs rw 0 0
`
	p := newTestProcfs(t, mounts)
	vols, err := p.Volumes(context.Background())
	if err != nil {
		t.Fatalf("Volumes: %v", err)
	}

	want := []Volume{
		{Label: "backup", Device: "/dev/sda3", MountPath: "/mnt/backup", FSType: "ext4"},
		{Label: "SUMMER_2009", Device: "/dev/sr0", MountPath: "/run/media/user/SUMMER 2009", FSType: "iso9660"},
		{Label: "stick", Device: "/dev/sdb1", MountPath: "/srv/stick", FSType: "vfat"},
	}
	if len(vols) != len(want) {
		t.Fatalf("expected %d volumes, got %+v", len(want), vols)
	}
	for i := range want {
		if vols[i] != want[i] {
			t.Fatalf("volume %d: got %+v want %+v", i, vols[i], want[i])
		}
	}
}

func TestProcfsVolumesMissingMountTable(t *testing.T) {
	p := newTestProcfs(t, "")
	p.mountsPath = filepath.Join(t.TempDir(), "absent")
	if _, err := p.Volumes(context.Background()); err == nil {
		t.Fatal("expected error for missing mount table")
	}
}

func TestProcfsDrivesHonoursCancellation(t *testing.T) {
	p := newTestProcfs(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Drives(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOnRemovableDriveMatchesPartitionsOnly(t *testing.T) {
	drives := []Drive{
		{Device: "/dev/sdb", Removable: true},
		{Device: "/dev/mmcblk0", Removable: true},
		{Device: "/dev/sda"},
	}

	tests := []struct {
		device string
		want   bool
	}{
		{"/dev/sdb", true},
		{"/dev/sdb1", true},
		{"/dev/sdb12", true},
		{"/dev/sdbb1", false},
		{"/dev/sdba", false},
		{"/dev/mmcblk0p1", true},
		{"/dev/mmcblk0p", false},
		{"/dev/mmcblk0px", false},
		{"/dev/sda1", false},
	}
	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			if got := onRemovableDrive(tt.device, drives); got != tt.want {
				t.Fatalf("onRemovableDrive(%q) = %v, want %v", tt.device, got, tt.want)
			}
		})
	}
}
