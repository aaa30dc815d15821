package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	"zhitu_backend/internal/config"
)

func writeModel(t *testing.T, file, model string) {
	t.Helper()
	body := "database:\n  driver: sqlite\nstorage:\n  type: minio\nai:\n  model: " + model + "\n"
	if err := os.WriteFile(file, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	writeModel(t, file, "gpt-4o-mini")

	w := New(file)
	w.debounce = 50 * time.Millisecond
	got := make(chan string, 4)
	w.OnReload(func(cfg *config.Config) { got <- cfg.AI.Model })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// 等待监听建立
	time.Sleep(100 * time.Millisecond)
	writeModel(t, file, "qwen-plus")

	select {
	case model := <-got:
		if model != "qwen-plus" {
			t.Errorf("reloaded model = %q, want qwen-plus", model)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("reloader not called")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	writeModel(t, file, "gpt-4o-mini")

	w := New(file)
	w.debounce = 20 * time.Millisecond
	called := make(chan struct{}, 1)
	w.OnReload(func(*config.Config) { called <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
		t.Error("reloader called for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}
