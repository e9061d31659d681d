package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - New fails for a missing root
// - a single write is delivered after the debounce period
// - rapid writes are coalesced and deduplicated into one sorted batch
// - files in a directory created after Start are reported
// - the filter and hidden-file rule drop uninteresting events
// - context cancellation ends the watch goroutine
// - Stop is idempotent and safe before Start

const testDebounce = 100 * time.Millisecond

func startWatcher(t *testing.T, root string, opts Options) <-chan []string {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = testDebounce
	}
	w, err := New(root, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	batches := make(chan []string, 16)
	require.NoError(t, w.Start(context.Background(), func(files []string) {
		batches <- files
	}))
	// let the OS register watches
	time.Sleep(50 * time.Millisecond)
	return batches
}

func nextBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case files := <-batches:
		return files
	case <-time.After(3 * time.Second):
		t.Fatal("no change batch delivered")
		return nil
	}
}

func TestNew_MissingRoot(t *testing.T) {
	t.Parallel()

	w, err := New(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	batches := startWatcher(t, root, Options{})

	file := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	assert.Equal(t, []string{file}, nextBatch(t, batches))
}

func TestWatcher_CoalescesChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	batches := startWatcher(t, root, Options{Debounce: 300 * time.Millisecond})

	a := filepath.Join(root, "a.rs")
	b := filepath.Join(root, "b.rs")
	require.NoError(t, os.WriteFile(b, []byte("fn b() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("fn a() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(a, []byte("fn a2() {}\n"), 0o644))

	assert.Equal(t, []string{a, b}, nextBatch(t, batches))
}

func TestWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	batches := startWatcher(t, root, Options{})

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(dir, "lib.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	assert.Contains(t, nextBatch(t, batches), file)
}

func TestWatcher_Filtering(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	batches := startWatcher(t, root, Options{
		Filter: func(path string) bool { return strings.HasSuffix(path, ".ts") },
	})

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.ts"), []byte("x\n"), 0o644))
	wanted := filepath.Join(root, "app.ts")
	require.NoError(t, os.WriteFile(wanted, []byte("export {}\n"), 0o644))

	assert.Equal(t, []string{wanted}, nextBatch(t, batches))
}

func TestWatcher_ContextCancel(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), Options{Debounce: testDebounce})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func([]string) {}))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watch goroutine did not exit")
	}
	require.NoError(t, w.Stop())
}

func TestWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
