package volumes

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func nulBytes(s string) []byte {
	return append([]byte(s), 0)
}

func sampleObjects() objectMap {
	drivePath := dbus.ObjectPath("/org/freedesktop/UDisks2/drives/HL_DT_ST_BD_RE")
	diskPath := dbus.ObjectPath("/org/freedesktop/UDisks2/drives/Samsung_SSD")
	return objectMap{
		drivePath: {
			udisksDrive: {
				"Vendor":             dbus.MakeVariant("HL-DT-ST"),
				"Model":              dbus.MakeVariant("BD-RE  WH16NS40"),
				"MediaRemovable":     dbus.MakeVariant(true),
				"MediaAvailable":     dbus.MakeVariant(true),
				"MediaCompatibility": dbus.MakeVariant([]string{"optical_cd", "optical_dvd"}),
			},
		},
		diskPath: {
			udisksDrive: {
				"Id":             dbus.MakeVariant("Samsung-SSD-123"),
				"MediaAvailable": dbus.MakeVariant(true),
			},
		},
		"/org/freedesktop/UDisks2/block_devices/sr0": {
			udisksBlock: {
				"Device":  dbus.MakeVariant(nulBytes("/dev/sr0")),
				"Drive":   dbus.MakeVariant(drivePath),
				"IdLabel": dbus.MakeVariant("MY_MOVIE"),
				"IdType":  dbus.MakeVariant("udf"),
			},
			udisksFilesystem: {
				"MountPoints": dbus.MakeVariant([][]byte{nulBytes("/run/media/user/MY_MOVIE")}),
			},
		},
		"/org/freedesktop/UDisks2/block_devices/nvme0n1": {
			udisksBlock: {
				"Device": dbus.MakeVariant(nulBytes("/dev/nvme0n1")),
				"Drive":  dbus.MakeVariant(diskPath),
			},
		},
		"/org/freedesktop/UDisks2/block_devices/nvme0n1p2": {
			udisksBlock: {
				"Device":     dbus.MakeVariant(nulBytes("/dev/nvme0n1p2")),
				"Drive":      dbus.MakeVariant(diskPath),
				"HintSystem": dbus.MakeVariant(true),
				"IdType":     dbus.MakeVariant("ext4"),
			},
			udisksPartition: {},
			udisksFilesystem: {
				"MountPoints": dbus.MakeVariant([][]byte{nulBytes("/")}),
			},
		},
		"/org/freedesktop/UDisks2/block_devices/sdb1": {
			udisksBlock: {
				"Device": dbus.MakeVariant(nulBytes("/dev/sdb1")),
				"IdType": dbus.MakeVariant("vfat"),
			},
			udisksFilesystem: {
				"MountPoints": dbus.MakeVariant([][]byte{nulBytes("/media/stick")}),
			},
		},
	}
}

func TestDrivesFromObjects(t *testing.T) {
	drives := drivesFromObjects(sampleObjects())
	if len(drives) != 2 {
		t.Fatalf("expected 2 drives, got %+v", drives)
	}

	disk, optical := drives[0], drives[1]
	if disk.Device != "/dev/nvme0n1" || disk.Name != "Samsung-SSD-123" || disk.Optical || disk.Removable {
		t.Fatalf("unexpected disk drive: %+v", disk)
	}
	if optical.Device != "/dev/sr0" {
		t.Fatalf("unexpected optical device: %+v", optical)
	}
	if optical.Name != "HL-DT-ST BD-RE  WH16NS40" {
		t.Fatalf("unexpected optical name: %q", optical.Name)
	}
	if !optical.Optical || !optical.Removable || !optical.MediaAvailable {
		t.Fatalf("unexpected optical flags: %+v", optical)
	}
}

func TestVolumesFromObjectsSkipsSystemMounts(t *testing.T) {
	vols := volumesFromObjects(sampleObjects())
	if len(vols) != 2 {
		t.Fatalf("expected 2 volumes, got %+v", vols)
	}
	if vols[0].MountPath != "/media/stick" || vols[0].Label != "stick" || vols[0].FSType != "vfat" {
		t.Fatalf("unexpected first volume: %+v", vols[0])
	}
	want := Volume{Label: "MY_MOVIE", Device: "/dev/sr0", MountPath: "/run/media/user/MY_MOVIE", FSType: "udf"}
	if vols[1] != want {
		t.Fatalf("unexpected second volume: got %+v want %+v", vols[1], want)
	}
}

func TestMapHelpersTolerateWrongTypes(t *testing.T) {
	props := map[string]dbus.Variant{
		"s": dbus.MakeVariant(42),
		"b": dbus.MakeVariant("yes"),
		"y": dbus.MakeVariant("not bytes"),
	}
	if mapString(props, "s") != "" || mapBool(props, "b") || mapByteString(props, "y") != "" {
		t.Fatal("expected zero values for mismatched variant types")
	}
	if mapByteStrings(props, "missing") != nil || mapObjectPath(props, "missing") != "" {
		t.Fatal("expected zero values for missing keys")
	}
}
