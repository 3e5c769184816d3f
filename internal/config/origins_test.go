package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

type originRecorder struct {
	mu      sync.Mutex
	origins []string
}

func (r *originRecorder) SetOrigins(origins []string) {
	r.mu.Lock()
	r.origins = origins
	r.mu.Unlock()
}

func (r *originRecorder) current() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.origins...)
}

func writeOriginsFile(t *testing.T, path string, origins []string) {
	t.Helper()
	raw, err := json.Marshal(origins)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestLoadOrigins(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "origins.json")
	writeOriginsFile(t, path, []string{"https://menulens.app", "https://*.preview.menulens.app"})

	origins, err := LoadOrigins(path)
	if err != nil {
		t.Fatalf("LoadOrigins failed: %v", err)
	}
	if len(origins) != 2 || origins[0] != "https://menulens.app" {
		t.Errorf("origins = %v", origins)
	}

	if _, err := LoadOrigins(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := LoadOrigins(bad); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestWatchOrigins_ReloadsOnChange(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "origins.json")
	writeOriginsFile(t, path, []string{"https://a.menulens.app"})

	sink := &originRecorder{}
	watcher, err := WatchOrigins(path, sink, zerolog.Nop())
	if err != nil {
		t.Fatalf("WatchOrigins failed: %v", err)
	}
	defer watcher.Close()

	if got := sink.current(); len(got) != 1 || got[0] != "https://a.menulens.app" {
		t.Fatalf("initial origins = %v", got)
	}

	writeOriginsFile(t, path, []string{"https://b.menulens.app"})

	deadline := time.Now().Add(5 * time.Second)
	for {
		got := sink.current()
		if len(got) == 1 && got[0] == "https://b.menulens.app" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("allow-list not reloaded, have %v", got)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestHandleOriginWatcher_ClosesReloadOnShutdown(t *testing.T) {
	t.Parallel()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	reload := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		handleOriginWatcher(watcher, "origins.json", reload, zerolog.Nop())
		close(done)
	}()

	if err := watcher.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher goroutine kept running after Close")
	}
	select {
	case _, ok := <-reload:
		if ok {
			t.Fatal("expected reload channel to be closed, got a value")
		}
	case <-time.After(time.Second):
		t.Fatal("reload channel not closed after Close")
	}
}

func TestScheduleOriginReload_StopsWhenInputCloses(t *testing.T) {
	t.Parallel()
	reload := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		scheduleOriginReload("does-not-exist.json", &originRecorder{}, reload, zerolog.Nop())
		close(done)
	}()

	// a pending debounce timer must not keep the goroutine alive
	reload <- struct{}{}
	close(reload)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reload goroutine kept running after its input closed")
	}
}
