package volumes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/GNOME/totem-sub005/internal/logging"
)

const (
	udisksService    = "org.freedesktop.UDisks2"
	udisksPath       = "/org/freedesktop/UDisks2"
	udisksDrive      = udisksService + ".Drive"
	udisksBlock      = udisksService + ".Block"
	udisksFilesystem = udisksService + ".Filesystem"
	udisksPartition  = udisksService + ".Partition"
)

// ErrUDisksUnavailable is returned when no process owns the UDisks2 bus name.
var ErrUDisksUnavailable = errors.New("udisks2 service is not running")

// UDisks2 reads drive and filesystem state from udisksd.
type UDisks2 struct {
	conn    *dbus.Conn
	timeout time.Duration
	logger  *slog.Logger
}

// NewUDisks2 connects to the system bus and checks that udisksd is present.
func NewUDisks2(ctx context.Context, timeout time.Duration, logger *slog.Logger) (*UDisks2, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	var owner string
	call := callWithTimeout(ctx, conn.BusObject(), timeout, getNameOwner, udisksService)
	if call.Err != nil || call.Store(&owner) != nil || owner == "" {
		conn.Close()
		if call.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUDisksUnavailable, call.Err)
		}
		return nil, ErrUDisksUnavailable
	}

	if logger == nil {
		logger = logging.NewNop()
	}
	return &UDisks2{conn: conn, timeout: timeout, logger: logger}, nil
}

func (u *UDisks2) objects(ctx context.Context) (objectMap, error) {
	obj := u.conn.Object(udisksService, dbus.ObjectPath(udisksPath))
	call := callWithTimeout(ctx, obj, u.timeout, managedObjects)
	if call.Err != nil {
		return nil, fmt.Errorf("query udisks2 objects: %w", call.Err)
	}
	var objs objectMap
	if err := call.Store(&objs); err != nil {
		return nil, fmt.Errorf("decode udisks2 objects: %w", err)
	}
	u.logger.Debug("udisks2 objects fetched", logging.Int("count", len(objs)))
	return objs, nil
}

// Drives implements Monitor.
func (u *UDisks2) Drives(ctx context.Context) ([]Drive, error) {
	objs, err := u.objects(ctx)
	if err != nil {
		return nil, err
	}
	return drivesFromObjects(objs), nil
}

// Volumes implements Monitor.
func (u *UDisks2) Volumes(ctx context.Context) ([]Volume, error) {
	objs, err := u.objects(ctx)
	if err != nil {
		return nil, err
	}
	return volumesFromObjects(objs), nil
}

// Close implements Monitor.
func (u *UDisks2) Close() error {
	if u == nil || u.conn == nil {
		return nil
	}
	return u.conn.Close()
}

func drivesFromObjects(objs objectMap) []Drive {
	// Whole-disk block devices keyed by the drive object they belong to.
	devices := make(map[dbus.ObjectPath]string)
	for _, ifaces := range objs {
		block, ok := ifaces[udisksBlock]
		if !ok {
			continue
		}
		if _, partition := ifaces[udisksPartition]; partition {
			continue
		}
		drivePath := mapObjectPath(block, "Drive")
		if drivePath == "" || drivePath == "/" {
			continue
		}
		if _, seen := devices[drivePath]; !seen {
			devices[drivePath] = mapByteString(block, "Device")
		}
	}

	var drives []Drive
	for path, ifaces := range objs {
		props, ok := ifaces[udisksDrive]
		if !ok {
			continue
		}
		device := devices[path]
		drives = append(drives, Drive{
			Name:           driveName(props, device, path),
			Device:         device,
			Optical:        isOptical(props),
			Removable:      mapBool(props, "Removable") || mapBool(props, "MediaRemovable"),
			MediaAvailable: mapBool(props, "MediaAvailable"),
		})
	}
	sortDrives(drives)
	return drives
}

func driveName(props map[string]dbus.Variant, device string, path dbus.ObjectPath) string {
	name := strings.TrimSpace(strings.TrimSpace(mapString(props, "Vendor")) + " " + strings.TrimSpace(mapString(props, "Model")))
	if name != "" {
		return name
	}
	if id := mapString(props, "Id"); id != "" {
		return id
	}
	if device != "" {
		return filepath.Base(device)
	}
	return filepath.Base(string(path))
}

func isOptical(props map[string]dbus.Variant) bool {
	if mapBool(props, "Optical") {
		return true
	}
	for _, media := range mapStrings(props, "MediaCompatibility") {
		if strings.HasPrefix(media, "optical") {
			return true
		}
	}
	return false
}

func volumesFromObjects(objs objectMap) []Volume {
	var vols []Volume
	for _, ifaces := range objs {
		fs, ok := ifaces[udisksFilesystem]
		if !ok {
			continue
		}
		block := ifaces[udisksBlock]
		if mapBool(block, "HintIgnore") || mapBool(block, "HintSystem") {
			continue
		}
		device := mapByteString(block, "Device")
		if device == "" {
			device = mapByteString(block, "PreferredDevice")
		}
		for _, mount := range mapByteStrings(fs, "MountPoints") {
			vols = append(vols, Volume{
				Label:     volumeLabel(mapString(block, "IdLabel"), mount),
				Device:    device,
				MountPath: mount,
				FSType:    mapString(block, "IdType"),
			})
		}
	}
	sortVolumes(vols)
	return vols
}

func volumeLabel(label, mount string) string {
	if label = strings.TrimSpace(label); label != "" {
		return label
	}
	return filepath.Base(mount)
}
