package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the file that marks a kwarg project root.
const ManifestName = "kwarg.toml"

// boundaryMarkers end the upward search: a manifest outside the repository
// holding startDir never applies to it.
var boundaryMarkers = []string{".git", ".hg"}

// FindManifest looks for kwarg.toml in startDir (or the directory of a file
// path) and its parents, up to the nearest repository root.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		found, err := exists(candidate)
		if err != nil || found {
			return candidate, found, err
		}
		if atBoundary(dir) {
			return "", false, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func atBoundary(dir string) bool {
	for _, marker := range boundaryMarkers {
		if ok, _ := exists(filepath.Join(dir, marker)); ok {
			return true
		}
	}
	return false
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %q: %w", path, err)
}
