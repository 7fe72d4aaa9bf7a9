package driver

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// walker decides which entries of a directory walk are inputs.
type walker struct {
	root    string
	exts    []string
	exclude []string
}

// excluded reports whether rel, a slash-separated path below the root,
// matches an exclude pattern as a whole or by its base name. Patterns were
// validated when the config was loaded.
func (w walker) excluded(rel string) bool {
	base := path.Base(rel)
	return slices.ContainsFunc(w.exclude, func(pattern string) bool {
		full, _ := path.Match(pattern, rel)
		short, _ := path.Match(pattern, base)
		return full || short
	})
}

func (w walker) visit(files *[]string) fs.WalkDirFunc {
	return func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == w.root {
			return nil
		}
		rel, err := filepath.Rel(w.root, p)
		if err != nil {
			return err
		}
		skip := w.excluded(filepath.ToSlash(rel))
		if d.IsDir() {
			if skip || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !skip && slices.Contains(w.exts, filepath.Ext(p)) {
			*files = append(*files, p)
		}
		return nil
	}
}

// ListFiles returns the files ExpandDir would process below dir, sorted.
// Hidden directories and excluded paths are skipped.
func ListFiles(dir string, opts Options) ([]string, error) {
	w := walker{root: dir, exts: opts.extensions(), exclude: opts.Exclude}
	var files []string
	if err := filepath.WalkDir(dir, w.visit(&files)); err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func statDir(p string) (bool, error) {
	info, err := os.Stat(p)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
