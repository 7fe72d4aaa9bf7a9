package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"

	"kwarg/internal/pipeline"
)

var watchLog = commonlog.GetLogger("kwarg.watch")

// DefaultDebounce coalesces bursts of editor writes into one rebuild.
const DefaultDebounce = 150 * time.Millisecond

// Watcher calls OnChange with the sorted set of changed files after each
// quiet period.
type Watcher struct {
	Extensions []string
	Debounce   time.Duration
	OnChange   func(changed []string)
}

// Run watches root (a file or a directory tree) until ctx is done.
func (w *Watcher) Run(ctx context.Context, root string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := fw.Close(); closeErr != nil {
			watchLog.Warningf("close watcher: %v", closeErr)
		}
	}()

	if err := w.addTree(fw, root); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if isDir, statErr := statDir(ev.Name); statErr == nil && isDir {
					if err := w.addTree(fw, ev.Name); err != nil {
						watchLog.Warningf("watch %s: %v", ev.Name, err)
					}
					continue
				}
			}
			if !w.relevant(ev) {
				continue
			}
			watchLog.Debugf("%s %s", ev.Op, ev.Name)
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			watchLog.Errorf("watch error: %v", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			// a file root also sees its siblings through the parent watch
			changed = pipeline.Within(changed, root)
			sort.Strings(changed)
			if len(changed) > 0 && w.OnChange != nil {
				w.OnChange(changed)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	exts := w.Extensions
	if len(exts) == 0 {
		exts = []string{".kw"}
	}
	return slices.Contains(exts, filepath.Ext(ev.Name))
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	isDir, err := statDir(root)
	if err != nil {
		return err
	}
	if !isDir {
		// editors replace files on save; watching the parent survives that
		return fw.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
