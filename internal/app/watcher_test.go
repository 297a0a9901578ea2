package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/relay-healthwatch/internal/config"
)

func TestWatcherProbesAndPublishesUntilCancelled(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer relay.Close()

	var hooks atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hooks.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	dir := t.TempDir()
	targetsFile := filepath.Join(dir, "targets.yaml")
	publishersFile := filepath.Join(dir, "publishers.yaml")
	writeFile(t, targetsFile, "targets:\n  - id: relay\n    name: Relay\n    base_url: "+relay.URL+"\n")
	writeFile(t, publishersFile, "publishers:\n  - id: hook\n    type: http\n    http:\n      url: "+hook.URL+"\n")

	cfg := &config.Config{
		TargetsFile:            targetsFile,
		PublishersFile:         publishersFile,
		HTTPTimeout:            2 * time.Second,
		PollInterval:           20 * time.Millisecond,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "status.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	w, err := NewWatcher(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}

	if got := hooks.Load(); got != 1 {
		t.Fatalf("expected exactly one status-change delivery, got %d", got)
	}
}

func TestNewWatcherRequiresConfig(t *testing.T) {
	if _, err := NewWatcher(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
