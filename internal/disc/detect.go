package disc

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// sectorSize is the logical block size of optical media.
const sectorSize = 2048

// Result is a successful classification. MRL is set only for media types
// that have a playback scheme (DVD and VCD).
type Result struct {
	Type MediaType `json:"type"`
	MRL  string    `json:"mrl,omitempty"`
}

// isBlockDevice is swapped in tests so regular files can stand in for drives.
var isBlockDevice = func(info os.FileInfo) bool {
	mode := info.Mode()
	return mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0
}

// DetectFromDevice classifies the medium in a block device or disc image.
// Structures are probed in the order DVD, VCD, audio CD; a readable medium
// with none of them is MediaTypeData. A directory is classified by its layout.
// On failure the returned type is MediaTypeError and err is a
// *ClassificationError.
func DetectFromDevice(path string) (MediaType, error) {
	t, _, err := detectDevice("detect device", path)
	return t, err
}

// DetectWithURL classifies like DetectFromDevice and also returns an MRL for
// DVD and VCD media built from the device path.
func DetectWithURL(path string) (Result, error) {
	t, target, err := detectDevice("detect device", path)
	if err != nil {
		return Result{Type: MediaTypeError}, err
	}
	return newResult(t, target), nil
}

// DetectFromDir classifies a directory by its content: a VIDEO_TS structure
// is a DVD, an MPEGAV or MPEG2 structure is a VCD, anything else is Data.
// Only an unreadable or missing directory is an error.
func DetectFromDir(path string) (Result, error) {
	t, abs, err := detectDir("detect directory", path)
	if err != nil {
		return Result{Type: MediaTypeError}, err
	}
	return newResult(t, abs), nil
}

func newResult(t MediaType, target string) Result {
	res := Result{Type: t}
	if scheme, ok := schemeFor(t); ok {
		res.MRL = MRLFromType(scheme, target)
	}
	return res
}

func detectDir(op, path string) (MediaType, string, error) {
	if strings.TrimSpace(path) == "" {
		return MediaTypeError, "", newError(op, path, ErrInvalidPath, nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return MediaTypeError, "", newError(op, path, ErrIO, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return MediaTypeError, "", classifyIOError(op, path, err)
	}
	if !info.IsDir() {
		return MediaTypeError, "", newError(op, path, ErrNotDirectory, nil)
	}
	t, err := probeLayout(dirTree{base: abs})
	if err != nil {
		return MediaTypeError, "", classifyIOError(op, path, err)
	}
	slog.Debug("directory classified",
		"decision_type", "media_type",
		"decision_result", t.String(),
		"decision_reason", "directory layout",
		"path", abs,
	)
	return t, abs, nil
}

func detectDevice(op, path string) (MediaType, string, error) {
	if strings.TrimSpace(path) == "" {
		return MediaTypeError, "", newError(op, path, ErrInvalidPath, nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		return MediaTypeError, "", classifyIOError(op, path, err)
	}
	if info.IsDir() {
		return detectDir(op, path)
	}

	block := isBlockDevice(info)
	if !block && !info.Mode().IsRegular() {
		return MediaTypeError, "", errorf(op, path, ErrNotDevice, "unsupported file type %s", info.Mode().Type())
	}

	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return MediaTypeError, "", classifyIOError(op, path, err)
	}
	defer f.Close()

	t, err := probeDevice(op, path, f, block)
	if err != nil {
		return MediaTypeError, "", err
	}
	return t, path, nil
}

func probeDevice(op, path string, f *os.File, block bool) (MediaType, error) {
	optical := false
	if block {
		status, err := driveStatusOf(f)
		switch {
		case err == nil:
			optical = true
			switch status {
			case DriveStatusNoDisc, DriveStatusTrayOpen:
				return MediaTypeError, errorf(op, path, ErrNoMedium, "drive reports %s", status)
			case DriveStatusNotReady:
				return MediaTypeError, errorf(op, path, ErrNotReady, "drive reports %s", status)
			}
		case errors.Is(err, unix.ENOTTY), errors.Is(err, unix.EINVAL):
			// Block device without CD-ROM ioctls, e.g. a USB stick.
		default:
			return MediaTypeError, classifyIOError(op, path, err)
		}
	}

	discStatus := DiscStatusNoInfo
	if optical {
		if ds, err := discStatusOf(f); err == nil {
			discStatus = ds
			if ds == DiscStatusNoDisc {
				return MediaTypeError, errorf(op, path, ErrNoMedium, "drive reports no disc")
			}
		}
	}

	if t, ok := probeStructure(path, f, block); ok && t != MediaTypeData {
		logDecision(path, t, "filesystem layout")
		return t, nil
	}

	if discStatus.HasAudioTracks() {
		logDecision(path, MediaTypeCDDA, "table of contents has audio tracks")
		return MediaTypeCDDA, nil
	}

	buf := make([]byte, sectorSize)
	if _, err := f.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return MediaTypeError, classifyIOError(op, path, err)
	}
	logDecision(path, MediaTypeData, "readable without a recognized structure")
	return MediaTypeData, nil
}

// probeStructure reads the layout from the mounted filesystem of a block
// device. When the device is not mounted or its mount point cannot be listed
// it reads the ISO 9660 volume from the open handle instead. ok is false when
// neither source is readable.
func probeStructure(path string, f *os.File, block bool) (t MediaType, ok bool) {
	if block {
		if mp, err := MountPointFor(path); err == nil && mp != "" {
			t, err := probeLayout(dirTree{base: mp})
			if err == nil {
				return t, true
			}
			slog.Debug("mount point unreadable; reading iso9660 volume",
				"device", path,
				"mount_point", mp,
				"error", err,
			)
		}
	}
	iso, err := openISOTree(f)
	if err != nil {
		slog.Debug("no iso9660 volume", "path", path, "error", err)
		return MediaTypeError, false
	}
	t, err = probeLayout(iso)
	if err != nil {
		return MediaTypeError, false
	}
	return t, true
}

func logDecision(path string, t MediaType, reason string) {
	slog.Debug("device classified",
		"decision_type", "media_type",
		"decision_result", t.String(),
		"decision_reason", reason,
		"device", path,
	)
}
