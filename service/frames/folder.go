package frames

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// ListImages returns the image files directly under folder, sorted by name.
func ListImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, xerrors.Errorf("reading input folder %s: %w", folder, err)
	}

	files := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(folder, e.Name()))
	}

	sort.Strings(files)
	return files, nil
}
