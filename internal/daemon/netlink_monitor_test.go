package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestNewNetlinkMonitor(t *testing.T) {
	t.Run("empty device returns nil", func(t *testing.T) {
		if m := newNetlinkMonitor("  ", nil, nil); m != nil {
			t.Error("expected nil monitor for empty device")
		}
	})

	t.Run("resolves symlinked device", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "sr0")
		if err := os.WriteFile(target, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		link := filepath.Join(dir, "cdrom")
		if err := os.Symlink(target, link); err != nil {
			t.Fatal(err)
		}
		m := newNetlinkMonitor(link, nil, nil)
		if m.device != target {
			t.Errorf("expected device %s, got %s", target, m.device)
		}
	})

	t.Run("keeps missing device path", func(t *testing.T) {
		m := newNetlinkMonitor("/dev/sr9-missing", nil, nil)
		if m.device != "/dev/sr9-missing" {
			t.Errorf("unexpected device %s", m.device)
		}
	})
}

func TestNetlinkMonitorLifecycleWithoutSocket(t *testing.T) {
	noNetlink(t)

	var m *netlinkMonitor
	m.Stop()
	if m.Running() {
		t.Error("nil monitor must not report running")
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start on nil monitor: %v", err)
	}

	m = newNetlinkMonitor("/dev/sr0", nil, nil)
	if err := m.Start(context.Background()); err == nil || !strings.Contains(err.Error(), "netlink unavailable in tests") {
		t.Fatalf("expected the connection error, got %v", err)
	}
	if m.Running() {
		t.Error("monitor must stay stopped when the socket cannot be opened")
	}
	m.Stop()
}

func TestBuildMatcher(t *testing.T) {
	matcher := buildMatcher()
	discEnv := map[string]string{
		"SUBSYSTEM":      "block",
		"ID_CDROM":       "1",
		"ID_CDROM_MEDIA": "1",
	}

	tests := []struct {
		name  string
		event netlink.UEvent
		want  bool
	}{
		{name: "change", event: netlink.UEvent{Action: netlink.CHANGE, Env: discEnv}, want: true},
		{name: "add", event: netlink.UEvent{Action: netlink.ADD, Env: discEnv}, want: true},
		{name: "remove", event: netlink.UEvent{Action: netlink.REMOVE, Env: discEnv}, want: false},
		{name: "no media", event: netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "block", "ID_CDROM": "1"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Evaluate(tt.event)
			if got != tt.want {
				t.Errorf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "no device name", env: map[string]string{}},
		{name: "other device", env: map[string]string{"DEVNAME": "/dev/sr1"}},
		{name: "devname", env: map[string]string{"DEVNAME": "/dev/sr0"}, want: "/dev/sr0"},
		{name: "bare devname", env: map[string]string{"DEVNAME": "sr0"}, want: "/dev/sr0"},
		{name: "devpath", env: map[string]string{"DEVPATH": "/devices/pci0000:00/ata2/host1/block/sr0"}, want: "/dev/sr0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			m := newNetlinkMonitor("/dev/sr0", nil, func(_ context.Context, device string) {
				got = device
			})
			m.device = "/dev/sr0"
			m.handleEvent(context.Background(), netlink.UEvent{Action: netlink.CHANGE, Env: tt.env})
			if got != tt.want {
				t.Errorf("handler device = %q, want %q", got, tt.want)
			}
		})
	}
}
