package volumes

import (
	"context"
	"sort"
)

// Drive is a block device capable of holding removable media.
type Drive struct {
	Name           string `json:"name"`
	Device         string `json:"device"`
	Optical        bool   `json:"optical"`
	Removable      bool   `json:"removable"`
	MediaAvailable bool   `json:"media_available"`
}

// Volume is a mounted filesystem.
type Volume struct {
	Label     string `json:"label"`
	Device    string `json:"device"`
	MountPath string `json:"mount_path"`
	FSType    string `json:"fs_type,omitempty"`
}

// Monitor lists drives and mounted volumes.
type Monitor interface {
	Drives(ctx context.Context) ([]Drive, error)
	Volumes(ctx context.Context) ([]Volume, error)
	Close() error
}

func sortDrives(drives []Drive) {
	sort.Slice(drives, func(i, j int) bool { return drives[i].Device < drives[j].Device })
}

func sortVolumes(vols []Volume) {
	sort.Slice(vols, func(i, j int) bool { return vols[i].MountPath < vols[j].MountPath })
}
