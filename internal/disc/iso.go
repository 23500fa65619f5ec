package disc

import (
	"fmt"
	"io"

	"github.com/kdomanski/iso9660"
)

// isoTree reads a layout from an ISO 9660 volume without mounting it.
type isoTree struct {
	root *iso9660.File
}

func openISOTree(r io.ReaderAt) (*isoTree, error) {
	img, err := iso9660.OpenImage(r)
	if err != nil {
		return nil, fmt.Errorf("read iso9660 volume: %w", err)
	}
	root, err := img.RootDir()
	if err != nil {
		return nil, fmt.Errorf("read iso9660 root: %w", err)
	}
	return &isoTree{root: root}, nil
}

func (t *isoTree) list(dir string) ([]entry, error) {
	files, err := t.root.GetChildren()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		var target *iso9660.File
		for _, f := range files {
			if f.IsDir() && f.Name() == dir {
				target = f
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("iso9660 directory %q not found", dir)
		}
		if files, err = target.GetChildren(); err != nil {
			return nil, err
		}
	}
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, entry{name: f.Name(), dir: f.IsDir()})
	}
	return entries, nil
}
