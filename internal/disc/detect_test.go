package disc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kdomanski/iso9660"
	"golang.org/x/sys/unix"
)

func writeTree(t *testing.T, base string, files ...string) {
	t.Helper()
	for _, rel := range files {
		path := filepath.Join(base, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func writeISO(t *testing.T, files ...string) string {
	t.Helper()
	w, err := iso9660.NewWriter()
	if err != nil {
		t.Fatalf("iso9660.NewWriter: %v", err)
	}
	defer w.Cleanup() //nolint:errcheck

	for _, rel := range files {
		if err := w.AddFile(strings.NewReader("payload"), rel); err != nil {
			t.Fatalf("AddFile %s: %v", rel, err)
		}
	}

	path := filepath.Join(t.TempDir(), "disc.iso")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create iso: %v", err)
	}
	defer f.Close()
	if err := w.WriteTo(f, "TESTDISC"); err != nil {
		t.Fatalf("write iso: %v", err)
	}
	return path
}

// stubDrive makes regular files look like an optical drive reporting the
// given statuses.
func stubDrive(t *testing.T, drive DriveStatus, driveErr error, discState DiscStatus) {
	t.Helper()
	origBlock, origDrive, origDisc := isBlockDevice, driveStatusOf, discStatusOf
	isBlockDevice = func(os.FileInfo) bool { return true }
	driveStatusOf = func(*os.File) (DriveStatus, error) { return drive, driveErr }
	discStatusOf = func(*os.File) (DiscStatus, error) { return discState, nil }
	t.Cleanup(func() {
		isBlockDevice, driveStatusOf, discStatusOf = origBlock, origDrive, origDisc
	})
}

func assertKind(t *testing.T, mt MediaType, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got media type %s", kind, mt)
	}
	if mt != MediaTypeError {
		t.Fatalf("expected MediaTypeError alongside error, got %s", mt)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected error kind %v, got %v", kind, err)
	}
	var cerr *ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ClassificationError, got %T", err)
	}
	if strings.TrimSpace(err.Error()) == "" {
		t.Fatal("expected non-empty diagnostic")
	}
}

func TestDetectFromDirLayouts(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		want    MediaType
		wantMRL string
	}{
		{"dvd", []string{"VIDEO_TS/VIDEO_TS.IFO", "VIDEO_TS/VTS_01_0.IFO"}, MediaTypeDVD, "dvd://"},
		{"dvd lowercase", []string{"video_ts/video_ts.ifo"}, MediaTypeDVD, "dvd://"},
		{"vcd", []string{"MPEGAV/AVSEQ01.DAT", "VCD/INFO.VCD"}, MediaTypeVCD, "vcd://"},
		{"svcd", []string{"MPEG2/AVSEQ01.MPG"}, MediaTypeVCD, "vcd://"},
		{"dvd wins over vcd", []string{"MPEGAV/AVSEQ01.DAT", "VIDEO_TS/VIDEO_TS.IFO"}, MediaTypeDVD, "dvd://"},
		{"video_ts without ifo", []string{"VIDEO_TS/README.TXT"}, MediaTypeData, ""},
		{"marker file not dir", []string{"VIDEO_TS"}, MediaTypeData, ""},
		{"bluray is data", []string{"BDMV/index.bdmv"}, MediaTypeData, ""},
		{"plain files", []string{"notes.txt", "music/track.ogg"}, MediaTypeData, ""},
		{"empty", nil, MediaTypeData, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTree(t, dir, tt.files...)

			res, err := DetectFromDir(dir)
			if err != nil {
				t.Fatalf("DetectFromDir: %v", err)
			}
			if res.Type != tt.want {
				t.Fatalf("type = %s, want %s", res.Type, tt.want)
			}
			if tt.wantMRL == "" {
				if res.MRL != "" {
					t.Fatalf("expected no MRL, got %q", res.MRL)
				}
				return
			}
			if want := tt.wantMRL + dir; res.MRL != want {
				t.Fatalf("MRL = %q, want %q", res.MRL, want)
			}
		})
	}
}

func TestDetectFromDirIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "VIDEO_TS/VIDEO_TS.IFO")
	first, err := DetectFromDir(dir)
	if err != nil {
		t.Fatalf("DetectFromDir: %v", err)
	}
	second, err := DetectFromDir(dir + string(os.PathSeparator))
	if err != nil {
		t.Fatalf("DetectFromDir: %v", err)
	}
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestDetectFromDirErrors(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := DetectFromDir(filepath.Join(base, "missing"))
	assertKind(t, res.Type, err, ErrNotFound)
	if res.MRL != "" {
		t.Fatalf("expected no MRL on error, got %q", res.MRL)
	}

	res, err = DetectFromDir(file)
	assertKind(t, res.Type, err, ErrNotDirectory)

	res, err = DetectFromDir("  ")
	assertKind(t, res.Type, err, ErrInvalidPath)
}

func TestDetectFromDirUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	if err := os.Mkdir(dir, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	res, err := DetectFromDir(dir)
	assertKind(t, res.Type, err, ErrPermission)
}

func TestDetectFromDeviceMissingPath(t *testing.T) {
	mt, err := DetectFromDevice(filepath.Join(t.TempDir(), "sr99"))
	assertKind(t, mt, err, ErrNotFound)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected underlying cause to match os.ErrNotExist: %v", err)
	}
	var cerr *ClassificationError
	errors.As(err, &cerr)
	if cerr.ErrorKind() != "not_found" {
		t.Fatalf("ErrorKind = %q", cerr.ErrorKind())
	}
}

func TestDetectFromDeviceEmptyPath(t *testing.T) {
	mt, err := DetectFromDevice("")
	assertKind(t, mt, err, ErrInvalidPath)
}

func TestDetectFromDeviceCharacterDevice(t *testing.T) {
	if _, err := os.Stat("/dev/null"); err != nil {
		t.Skip("/dev/null unavailable")
	}
	mt, err := DetectFromDevice("/dev/null")
	assertKind(t, mt, err, ErrNotDevice)
}

func TestDetectFromDeviceDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "VIDEO_TS/VIDEO_TS.IFO")

	mt, err := DetectFromDevice(dir)
	if err != nil {
		t.Fatalf("DetectFromDevice: %v", err)
	}
	if mt != MediaTypeDVD {
		t.Fatalf("type = %s, want dvd", mt)
	}
}

func TestDetectFromDeviceImages(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  MediaType
	}{
		{"dvd image", []string{"VIDEO_TS/VIDEO_TS.IFO"}, MediaTypeDVD},
		{"vcd image", []string{"MPEGAV/AVSEQ01.DAT"}, MediaTypeVCD},
		{"dvd before vcd", []string{"MPEGAV/AVSEQ01.DAT", "VIDEO_TS/VIDEO_TS.IFO"}, MediaTypeDVD},
		{"data image", []string{"README.TXT"}, MediaTypeData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeISO(t, tt.files...)
			res, err := DetectWithURL(path)
			if err != nil {
				t.Fatalf("DetectWithURL: %v", err)
			}
			if res.Type != tt.want {
				t.Fatalf("type = %s, want %s", res.Type, tt.want)
			}
			scheme, ok := schemeFor(tt.want)
			switch {
			case ok && res.MRL != scheme+"://"+path:
				t.Fatalf("MRL = %q, want %q", res.MRL, scheme+"://"+path)
			case !ok && res.MRL != "":
				t.Fatalf("expected no MRL for %s, got %q", res.Type, res.MRL)
			}
		})
	}
}

func TestDetectFromDeviceUnstructuredFiles(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.img")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	noise := filepath.Join(dir, "noise.img")
	if err := os.WriteFile(noise, []byte(strings.Repeat("junk", 4096)), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{empty, noise} {
		mt, err := DetectFromDevice(path)
		if err != nil {
			t.Fatalf("DetectFromDevice(%s): %v", path, err)
		}
		if mt != MediaTypeData {
			t.Fatalf("DetectFromDevice(%s) = %s, want data", path, mt)
		}
	}
}

func TestDetectFromDeviceDriveStates(t *testing.T) {
	tests := []struct {
		name  string
		drive DriveStatus
		disc  DiscStatus
		files []string
		want  MediaType
		kind  error
	}{
		{name: "no disc", drive: DriveStatusNoDisc, kind: ErrNoMedium},
		{name: "tray open", drive: DriveStatusTrayOpen, kind: ErrNoMedium},
		{name: "not ready", drive: DriveStatusNotReady, kind: ErrNotReady},
		{name: "disc status no disc", drive: DriveStatusDiscOK, disc: DiscStatusNoDisc, kind: ErrNoMedium},
		{name: "audio cd", drive: DriveStatusDiscOK, disc: DiscStatusAudio, want: MediaTypeCDDA},
		{name: "mixed cd", drive: DriveStatusDiscOK, disc: DiscStatusMixed, want: MediaTypeCDDA},
		{name: "data cd", drive: DriveStatusDiscOK, disc: DiscStatusData1, files: []string{"README.TXT"}, want: MediaTypeData},
		{name: "dvd before cdda", drive: DriveStatusDiscOK, disc: DiscStatusMixed, files: []string{"VIDEO_TS/VIDEO_TS.IFO"}, want: MediaTypeDVD},
		{name: "vcd before cdda", drive: DriveStatusDiscOK, disc: DiscStatusXA21, files: []string{"MPEGAV/AVSEQ01.DAT"}, want: MediaTypeVCD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			if len(tt.files) > 0 {
				path = writeISO(t, tt.files...)
			} else {
				path = filepath.Join(t.TempDir(), "sr0")
				if err := os.WriteFile(path, nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}
			stubDrive(t, tt.drive, nil, tt.disc)

			mt, err := DetectFromDevice(path)
			if tt.kind != nil {
				assertKind(t, mt, err, tt.kind)
				return
			}
			if err != nil {
				t.Fatalf("DetectFromDevice: %v", err)
			}
			if mt != tt.want {
				t.Fatalf("type = %s, want %s", mt, tt.want)
			}
		})
	}
}

func TestDetectWithURLOmitsMRLForAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sr0")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	stubDrive(t, DriveStatusDiscOK, nil, DiscStatusAudio)

	res, err := DetectWithURL(path)
	if err != nil {
		t.Fatalf("DetectWithURL: %v", err)
	}
	if res.Type != MediaTypeCDDA || res.MRL != "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDetectFromDeviceNonOpticalBlockDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdb")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	stubDrive(t, DriveStatusNoInfo, unix.ENOTTY, DiscStatusAudio)

	mt, err := DetectFromDevice(path)
	if err != nil {
		t.Fatalf("DetectFromDevice: %v", err)
	}
	if mt != MediaTypeData {
		t.Fatalf("type = %s, want data (disc status must be ignored without drive ioctls)", mt)
	}
}

func TestDetectFromDeviceIoctlFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sr0")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	stubDrive(t, DriveStatusNoInfo, unix.EIO, DiscStatusNoInfo)

	mt, err := DetectFromDevice(path)
	assertKind(t, mt, err, ErrIO)
}

func TestDetectFromDeviceUsesMountPoint(t *testing.T) {
	base := t.TempDir()
	device := filepath.Join(base, "sr0")
	if err := os.WriteFile(device, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	mountDir := filepath.Join(base, "media", "My Disc")
	writeTree(t, mountDir, "VIDEO_TS/VIDEO_TS.IFO")

	table := filepath.Join(base, "mounts")
	line := device + " " + strings.ReplaceAll(mountDir, " ", `\040`) + " udf ro 0 0\n"
	if err := os.WriteFile(table, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}
	origMounts := mountsPath
	mountsPath = table
	t.Cleanup(func() { mountsPath = origMounts })
	stubDrive(t, DriveStatusDiscOK, nil, DiscStatusData1)

	res, err := DetectWithURL(device)
	if err != nil {
		t.Fatalf("DetectWithURL: %v", err)
	}
	if res.Type != MediaTypeDVD {
		t.Fatalf("type = %s, want dvd", res.Type)
	}
	if res.MRL != "dvd://"+device {
		t.Fatalf("MRL = %q", res.MRL)
	}
}

func TestDetectFromDeviceReadsISOWhenMountPointUnreadable(t *testing.T) {
	device := writeISO(t, "VIDEO_TS/VIDEO_TS.IFO")
	base := t.TempDir()

	table := filepath.Join(base, "mounts")
	line := device + " " + filepath.Join(base, "gone") + " iso9660 ro 0 0\n"
	if err := os.WriteFile(table, []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}
	origMounts := mountsPath
	mountsPath = table
	t.Cleanup(func() { mountsPath = origMounts })
	stubDrive(t, DriveStatusDiscOK, nil, DiscStatusData1)

	mt, err := DetectFromDevice(device)
	if err != nil {
		t.Fatalf("DetectFromDevice: %v", err)
	}
	if mt != MediaTypeDVD {
		t.Fatalf("type = %s, want dvd", mt)
	}
}
