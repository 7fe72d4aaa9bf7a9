package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRelevant(t *testing.T) {
	w := &Watcher{}
	assert.True(t, w.relevant(fsnotify.Event{Name: "a.kw", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "a.kw", Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "a.kw", Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "a.go", Op: fsnotify.Write}))

	w.Extensions = []string{".src"}
	assert.True(t, w.relevant(fsnotify.Event{Name: "x/a.src", Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "a.kw", Op: fsnotify.Write}))
}

func TestWatcherReportsChanges(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a.kw")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))

	changed := make(chan []string, 1)
	w := &Watcher{
		Debounce: 20 * time.Millisecond,
		OnChange: func(files []string) {
			select {
			case changed <- files:
			default:
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, root) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give the watcher a moment to register
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case files := <-changed:
			assert.Contains(t, files, target)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(target, []byte("y"), 0o600))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
}
