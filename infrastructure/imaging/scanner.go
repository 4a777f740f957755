package imaging

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// imageExtensions is the fixed set of recognized photo file extensions,
// matched case-insensitively.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".bmp":  {},
	".tif":  {},
	".tiff": {},
}

// IsImagePath reports whether the path has a recognized photo extension.
func IsImagePath(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ScanDirectory walks root recursively and returns the paths of all files
// with a recognized photo extension, in walk order. Directories that cannot
// be read abort the scan.
func ScanDirectory(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsImagePath(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return paths, nil
}
