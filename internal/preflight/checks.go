package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/GNOME/totem-sub005/internal/logging"
	"github.com/GNOME/totem-sub005/internal/volumes"
)

// Requirement defines an external binary totem-disc can use.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

var (
	lookPath   = exec.LookPath
	dialUDisks = func(ctx context.Context, timeout time.Duration) error {
		mon, err := volumes.NewUDisks2(ctx, timeout, logging.NewNop())
		if err != nil {
			return err
		}
		return mon.Close()
	}
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDrive verifies that the configured drive exists and can be opened for reading.
// Image files pass as well; only missing, unreadable or special non-block files fail.
func CheckDrive(device string) Result {
	const name = "Drive"

	device = strings.TrimSpace(device)
	if device == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(device)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", device)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", device, err)}
	}

	kind := "image file"
	mode := info.Mode()
	switch {
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0:
		kind = "block device"
	case info.IsDir():
		kind = "directory"
	case !mode.IsRegular():
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a block device)", device)}
	}

	if err := unix.Access(device, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", device, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s, readable)", device, kind)}
}

// CheckBinary reports whether req's command can be found on PATH.
func CheckBinary(req Requirement) Result {
	result := Result{Name: req.Name, Optional: req.Optional}
	cmd := strings.TrimSpace(req.Command)
	if cmd == "" {
		result.Detail = "command not configured"
		return result
	}
	path, err := lookPath(cmd)
	if err != nil {
		result.Detail = fmt.Sprintf("binary %q not found (%s)", cmd, req.Description)
		return result
	}
	result.Passed = true
	result.Detail = path
	return result
}

// CheckUDisks verifies that the UDisks2 service answers on the system bus.
func CheckUDisks(ctx context.Context, timeout time.Duration, optional bool) Result {
	result := Result{Name: "UDisks2", Optional: optional}
	if err := dialUDisks(ctx, timeout); err != nil {
		result.Detail = err.Error()
		if optional {
			result.Detail += " (procfs fallback will be used)"
		}
		return result
	}
	result.Passed = true
	result.Detail = "reachable on the system bus"
	return result
}
