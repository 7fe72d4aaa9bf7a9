package source

import (
	"os"
	"path/filepath"
)

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns path relative to base with forward slashes. On
// error path is returned unchanged.
func RelativePath(path, base string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path, err
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return path, err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return path, err
	}
	return filepath.ToSlash(rel), nil
}

// autoPathLimit is the length above which "auto" shortens absolute paths
// to their base name.
const autoPathLimit = 40

// FormatPath renders the path for display. mode is one of "absolute",
// "relative", "basename" or "auto"; anything else returns the stored path.
// Virtual files keep their name in every mode but "basename".
func (f *File) FormatPath(mode, baseDir string) string {
	virtual := f.Flags.Has(FileVirtual)
	switch mode {
	case "absolute":
		if virtual {
			return f.Path
		}
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
	case "relative":
		if virtual {
			return f.Path
		}
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if len(f.Path) >= autoPathLimit && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
