package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(path, []byte(`{"types":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, log.New(io.Discard), func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"types":[{"id":"A"}]}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange not called after write")
	}

	// The burst of writes is debounced into one call.
	select {
	case <-changed:
		t.Error("onChange called more than once for one burst")
	case <-time.After(2 * watchDebounce):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchFile() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watchFile did not stop on cancel")
	}
}
