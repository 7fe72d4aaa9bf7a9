package pipeline

import (
	"path/filepath"
	"slices"
	"strings"
)

// DisplayPath renders file relative to baseDir when it lies beneath it,
// with forward slashes.
func DisplayPath(file, baseDir string) string {
	path := filepath.Clean(file)
	if base := strings.TrimSpace(baseDir); base != "" {
		if rel, ok := relativeTo(path, base); ok {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// DisplayPaths maps files through DisplayPath, sorted and without
// duplicates or empty entries.
func DisplayPaths(files []string, baseDir string) []string {
	out := make([]string, 0, len(files))
	for _, file := range files {
		if file != "" {
			out = append(out, DisplayPath(file, baseDir))
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Within keeps the files that are root itself or lie below it. Order is
// preserved.
func Within(files []string, root string) []string {
	if strings.TrimSpace(root) == "" {
		return files
	}
	return slices.DeleteFunc(slices.Clone(files), func(file string) bool {
		if file == "" {
			return true
		}
		rel, ok := relativeTo(file, root)
		return !ok && rel != "."
	})
}

// relativeTo returns path relative to base; ok is false when path is base
// itself or lies outside it.
func relativeTo(path, base string) (string, bool) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", false
	}
	if rel == "." {
		return rel, false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
