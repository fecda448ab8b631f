package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(Options{DebounceWindow: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(func() { _ = w.Stop() })

	go func() { _ = w.Start(ctx, root) }()

	// Give the watch set a moment to settle before mutating the tree.
	time.Sleep(100 * time.Millisecond)
	return w
}

func waitForEvent(t *testing.T, w *Watcher, path string) FileEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case batch := <-w.Events():
			for _, ev := range batch {
				if ev.Path == path {
					return ev
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event on %s", path)
		}
	}
}

func TestWatcherSeesCreate(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	path := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	ev := waitForEvent(t, w, path)
	assert.Equal(t, OpCreate, ev.Operation)
}

func TestWatcherSeesModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w := startWatcher(t, dir)
	require.NoError(t, os.WriteFile(path, []byte("xy"), 0o644))

	ev := waitForEvent(t, w, path)
	assert.Equal(t, OpModify, ev.Operation)
}

func TestWatcherSeesDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w := startWatcher(t, dir)
	require.NoError(t, os.Remove(path))

	ev := waitForEvent(t, w, path)
	assert.Equal(t, OpDelete, ev.Operation)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Let the new directory join the watch set.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(sub, "inner.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	ev := waitForEvent(t, w, path)
	assert.Equal(t, OpCreate, ev.Operation)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
