package disc

import (
	"os"
	"path/filepath"
	"strings"
)

// entry is one name in a disc filesystem listing.
type entry struct {
	name string
	dir  bool
}

// tree lists the top levels of a disc filesystem, either a mounted directory
// or an ISO 9660 volume read straight from the device.
type tree interface {
	// list returns the entries of dir, where "" is the root.
	list(dir string) ([]entry, error)
}

// marker is a directory/file pair whose presence identifies a layout.
type marker struct {
	dir  string
	file string
}

var (
	dvdMarkers = []marker{
		{dir: "VIDEO_TS", file: "VIDEO_TS.IFO"},
	}
	vcdMarkers = []marker{
		{dir: "MPEGAV", file: "AVSEQ01.DAT"},
		{dir: "MPEG2", file: "AVSEQ01.MPG"},
	}
)

// probeLayout classifies a tree as DVD, VCD or Data. DVD markers are checked
// first. Only a failure to list the root is an error.
func probeLayout(t tree) (MediaType, error) {
	root, err := t.list("")
	if err != nil {
		return MediaTypeError, err
	}
	if hasAnyMarker(t, root, dvdMarkers) {
		return MediaTypeDVD, nil
	}
	if hasAnyMarker(t, root, vcdMarkers) {
		return MediaTypeVCD, nil
	}
	return MediaTypeData, nil
}

func hasAnyMarker(t tree, root []entry, markers []marker) bool {
	for _, m := range markers {
		if hasMarker(t, root, m) {
			return true
		}
	}
	return false
}

func hasMarker(t tree, root []entry, m marker) bool {
	dir, ok := findEntry(root, m.dir, true)
	if !ok {
		return false
	}
	children, err := t.list(dir)
	if err != nil {
		return false
	}
	_, ok = findEntry(children, m.file, false)
	return ok
}

// findEntry matches names case-insensitively; discs authored on different
// systems disagree on case.
func findEntry(entries []entry, name string, wantDir bool) (string, bool) {
	for _, e := range entries {
		if e.dir == wantDir && strings.EqualFold(e.name, name) {
			return e.name, true
		}
	}
	return "", false
}

// dirTree reads a layout from a directory on a mounted filesystem.
type dirTree struct {
	base string
}

func (d dirTree) list(dir string) ([]entry, error) {
	path := d.base
	if dir != "" {
		path = filepath.Join(d.base, dir)
	}
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, len(dirents))
	for _, de := range dirents {
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(path, de.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		entries = append(entries, entry{name: de.Name(), dir: isDir})
	}
	return entries, nil
}
