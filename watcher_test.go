package inkpress

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/inkpress/content"
)

func TestWatchContentCreatesDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "content")
	cache := NewContentCache(content.NewRepository(root, content.WithLogger(quietLogger{})), time.Hour)

	w, err := WatchContent(root, cache, quietLogger{})
	if err != nil {
		t.Fatalf("WatchContent: %v", err)
	}
	for _, dir := range []string{"posts", "pages", "reviews"} {
		if info, err := os.Stat(filepath.Join(root, dir)); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestWatchContentInvalidatesOnWrite(t *testing.T) {
	root := t.TempDir()
	cache := NewContentCache(content.NewRepository(root, content.WithLogger(quietLogger{})), time.Hour)
	w, err := WatchContent(root, cache, quietLogger{})
	if err != nil {
		t.Fatalf("WatchContent: %v", err)
	}
	defer w.Stop()

	ctx := context.Background()
	items, err := cache.Items(ctx, content.TypePost)
	if err != nil || len(items) != 0 {
		t.Fatalf("Items = %d, %v; want empty collection", len(items), err)
	}

	body := []byte("---\ntitle: Fresh\npublishedAt: 2024-01-01\n---\nNew on disk.\n")
	if err := os.WriteFile(filepath.Join(root, "posts", "fresh.md"), body, 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		items, err = cache.Items(ctx, content.TypePost)
		if err == nil && len(items) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("cache still holds %d posts after a write, want 1", len(items))
}
