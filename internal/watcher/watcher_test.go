package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/themeforge/internal/watcher"
)

func startWatcher(t *testing.T, path string) <-chan struct{} {
	t.Helper()

	w, err := watcher.New(watcher.Config{Path: path, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	if err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	onChange := startWatcher(t, path)

	for i := 0; i < 10; i++ {
		if err := os.WriteFile(path, []byte(fmt.Sprintf(`{"n":%d}`, i)), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	if err := os.WriteFile(other, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create other file: %v", err)
	}

	onChange := startWatcher(t, path)

	if err := os.WriteFile(other, []byte(`{"x":1}`), 0644); err != nil {
		t.Fatalf("failed to write other file: %v", err)
	}

	select {
	case <-onChange:
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_DetectsAtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	onChange := startWatcher(t, path)

	tmp := filepath.Join(dir, ".theme.json.swp")
	if err := os.WriteFile(tmp, []byte(`{"saved":true}`), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("failed to rename temp file: %v", err)
	}

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification after rename over the watched file")
	}
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := watcher.New(watcher.Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
