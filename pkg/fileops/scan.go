package fileops

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FileInfo describes one file discovered by a scan, with Path relative to
// the scan root.
type FileInfo struct {
	Name string
	Path string
}

// directories never worth descending into
var skipDirs = []string{
	".git", "node_modules", "__pycache__", ".venv", "venv",
	".cache", ".idea", ".vscode", "temp_audio",
}

// ScanWithFilter walks root up to maxDepth levels deep and returns every
// regular file whose name passes the filter. Symlinked directories are not
// followed.
func ScanWithFilter(root string, filter func(string) bool, maxDepth int) ([]FileInfo, error) {
	var results []FileInfo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir // unreadable subtree, keep going
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if slices.Contains(skipDirs, d.Name()) {
				return fs.SkipDir
			}
			if strings.Count(rel, string(filepath.Separator))+1 > maxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if filter != nil && !filter(d.Name()) {
			return nil
		}

		results = append(results, FileInfo{Name: d.Name(), Path: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", root, err)
	}

	return results, nil
}
