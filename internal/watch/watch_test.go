package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesChanges(t *testing.T) {
	t.Parallel()
	got := make(chan []string, 2)
	d := NewDebouncer(30*time.Millisecond, func(files []string) { got <- files })
	defer d.Stop()

	d.Add("b.yaml")
	d.Add("a.yaml")
	d.Add("b.yaml")

	select {
	case files := <-got:
		assert.Equal(t, []string{"a.yaml", "b.yaml"}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}
	select {
	case files := <-got:
		t.Fatalf("unexpected second batch: %v", files)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(20*time.Millisecond, func([]string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	d.Add("a.yaml")
	d.Stop()
	d.Add("b.yaml")
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestWatcher_Relevant(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := filepath.Join(dir, "openapi.yaml")
	w, err := New([]string{target}, 0, nil)
	require.NoError(t, err)
	defer w.watcher.Close()

	assert.Equal(t, DefaultDelay, w.delay)
	assert.Equal(t, []string{dir}, w.dirs)
	assert.True(t, w.relevant(fsnotify.Event{Name: target, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: target, Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: target, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}))
}

func TestWatcher_RunTriggersOnWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := filepath.Join(dir, "openapi.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a: 1\n"), 0o644))

	w, err := New([]string{target}, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, files []string) error {
			select {
			case changed <- files:
			default:
			}
			return nil
		})
	}()

	// Keep writing until the watcher has registered its directories.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case files := <-changed:
			require.Len(t, files, 1)
			assert.Equal(t, "openapi.yaml", filepath.Base(files[0]))
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(target, []byte("a: 2\n"), 0o644))
		case <-deadline:
			t.Fatal("no change observed")
		}
	}
}

func TestNew_RequiresFiles(t *testing.T) {
	t.Parallel()
	_, err := New(nil, 0, nil)
	assert.Error(t, err)
}
