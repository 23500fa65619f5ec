package disc

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mountsPath is the mount table consulted for mounted devices. Tests point it
// at a fixture.
var mountsPath = "/proc/mounts"

var errMountNotFound = errors.New("device is not mounted")

// MountEntry is one line of the kernel mount table.
type MountEntry struct {
	Device     string
	MountPoint string
	FSType     string
}

// ReadMounts parses a mount table in /proc/mounts format. An empty path reads
// the system table.
func ReadMounts(path string) ([]MountEntry, error) {
	if strings.TrimSpace(path) == "" {
		path = mountsPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mounts: %w", err)
	}
	defer f.Close()

	var entries []MountEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		e := MountEntry{
			Device:     decodeMountField(fields[0]),
			MountPoint: decodeMountField(fields[1]),
		}
		if len(fields) > 2 {
			e.FSType = fields[2]
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan mounts: %w", err)
	}
	return entries, nil
}

// MountPointFor returns where device is mounted, or an error wrapping
// errMountNotFound when it is not.
func MountPointFor(device string) (string, error) {
	entries, err := ReadMounts(mountsPath)
	if err != nil {
		return "", err
	}

	requested, _ := filepath.EvalSymlinks(device)
	if requested == "" {
		requested = device
	}

	for _, e := range entries {
		canonical, _ := filepath.EvalSymlinks(e.Device)
		if canonical == "" {
			canonical = e.Device
		}
		if sameDevice(requested, canonical) {
			return e.MountPoint, nil
		}
	}
	return "", fmt.Errorf("%s: %w", device, errMountNotFound)
}

func decodeMountField(field string) string {
	replacer := strings.NewReplacer(
		"\\040", " ",
		"\\011", "\t",
		"\\012", "\n",
		"\\134", "\\",
	)
	return replacer.Replace(field)
}

func sameDevice(a, b string) bool {
	if a == b {
		return true
	}
	if strings.HasPrefix(a, "/dev/") && strings.HasPrefix(b, "/dev/") {
		return filepath.Base(a) == filepath.Base(b)
	}
	return false
}
