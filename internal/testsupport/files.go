package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with size bytes of a repeating pattern.
// A size <= 0 creates an empty file.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	for remaining := size; remaining > 0; {
		n := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= n
	}
}

// WriteTree creates root and the given slash-separated relative files in it.
func WriteTree(t testing.TB, root string, files ...string) string {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	for _, rel := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), 16)
	}
	return root
}

// DVDTree writes a minimal DVD-Video layout and returns its root.
func DVDTree(t testing.TB) string {
	t.Helper()
	return WriteTree(t, filepath.Join(t.TempDir(), "dvd"), "VIDEO_TS/VIDEO_TS.IFO", "VIDEO_TS/VTS_01_1.VOB")
}

// VCDTree writes a minimal Video CD layout and returns its root.
func VCDTree(t testing.TB) string {
	t.Helper()
	return WriteTree(t, filepath.Join(t.TempDir(), "vcd"), "MPEGAV/AVSEQ01.DAT", "VCD/INFO.VCD")
}
