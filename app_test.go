package inkpress

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/inkpress/content"
)

type quietLogger struct{}

func (quietLogger) Debug(args ...any)                 {}
func (quietLogger) Info(args ...any)                  {}
func (quietLogger) Warn(args ...any)                  {}
func (quietLogger) Error(args ...any)                 {}
func (quietLogger) Debugf(format string, args ...any) {}
func (quietLogger) Infof(format string, args ...any)  {}
func (quietLogger) Warnf(format string, args ...any)  {}
func (quietLogger) Errorf(format string, args ...any) {}

const testAdminKey = "s3cret-key"

var fixtures = map[string]string{
	"posts/hello.md": `---
title: Hello World
excerpt: The first post
publishedAt: 2024-01-10T09:00:00Z
lastModified: 2024-01-11T09:00:00Z
tags: [go, web]
author:
  name: Ada
  email: ada@example.com
---
Hello from **inkpress**.
`,
	"posts/second.md": `---
title: Second Post
publishedAt: 2024-01-05T09:00:00Z
lastModified: 2024-01-05T10:00:00Z
featured: true
tags: go
---
Another post about go.
`,
	"posts/future.md": `---
title: Future Post
publishedAt: 2030-01-01T00:00:00Z
tags: [go]
---
Not yet.
`,
	"posts/draft.md": `---
title: Draft Post
published: false
---
Work in progress.
`,
	"pages/about.md": `---
title: About
publishedAt: 2024-01-01T00:00:00Z
lastModified: 2024-01-01T00:00:00Z
---
About this site.
`,
	"reviews/keyboard.md": `---
title: Keyboard
slug: keyboard
publishedAt: 2024-02-01T00:00:00Z
lastModified: 2024-02-01T00:00:00Z
rating: 4
---
Clacky.
`,
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func testViews() ViewFuncs {
	return ViewFuncs{
		Home: func(page content.Result, tag string, tags []string, site SiteConfig) templ.Component {
			return textComponent(fmt.Sprintf("home:%d tag:%s", page.Pagination.Total, tag))
		},
		Item: func(item content.Item, related []content.Item, site SiteConfig) templ.Component {
			return textComponent(fmt.Sprintf("item:%s related:%d", item.Title, len(related)))
		},
		NotFound:    func() templ.Component { return textComponent("not found") },
		ServerError: func() templ.Component { return textComponent("server error") },
	}
}

func writeFixtures(t *testing.T, root string) {
	t.Helper()
	for rel, body := range fixtures {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestApp(t *testing.T) (*App, *testClock) {
	t.Helper()
	dir := t.TempDir()
	contentDir := filepath.Join(dir, "content")
	writeFixtures(t, contentDir)

	clock := &testClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	app := New(SiteConfig{
		Name:         "Test Blog",
		URL:          "https://example.com",
		Description:  "A test blog",
		ContentDir:   contentDir,
		StaticDir:    filepath.Join(dir, "public"),
		DatabasePath: filepath.Join(dir, "data", "test.db"),
		AdminKey:     testAdminKey,
		CacheTTL:     time.Hour,
	}, testViews(), WithLogger(quietLogger{}), WithClock(clock.Now))

	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app, clock
}

func doRequest(app *App, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminKey}
}

func TestInitRequiresAdminKey(t *testing.T) {
	app := New(SiteConfig{DatabasePath: filepath.Join(t.TempDir(), "x.db")}, testViews(), WithLogger(quietLogger{}))
	if err := app.Init(); err == nil {
		t.Fatal("Init without AdminKey succeeded, want error")
	}
}

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()
	if cfg.ContentDir != "content" {
		t.Errorf("ContentDir = %q, want %q", cfg.ContentDir, "content")
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("CacheTTL = %v, want 30s", cfg.CacheTTL)
	}
	if cfg.PublishInterval != time.Minute {
		t.Errorf("PublishInterval = %v, want 1m", cfg.PublishInterval)
	}
	if cfg.WordsPerMinute != 200 {
		t.Errorf("WordsPerMinute = %d, want 200", cfg.WordsPerMinute)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
}

func TestRunPublisherFlipsDueItems(t *testing.T) {
	app, clock := newTestApp(t)
	ctx := context.Background()

	flipped, err := app.RunPublisher(ctx)
	if err != nil {
		t.Fatalf("RunPublisher: %v", err)
	}
	if len(flipped) != 0 {
		t.Fatalf("flipped = %d before the date, want 0", len(flipped))
	}

	clock.t = time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	flipped, err = app.RunPublisher(ctx)
	if err != nil {
		t.Fatalf("RunPublisher: %v", err)
	}
	if len(flipped) != 1 || flipped[0].ID != "future" {
		t.Fatalf("flipped = %+v, want only future", flipped)
	}

	records, err := app.Store.ListPublishLog(ctx, 10)
	if err != nil {
		t.Fatalf("ListPublishLog: %v", err)
	}
	if len(records) != 1 || records[0].Slug != "future-post" || records[0].RunID == "" {
		t.Errorf("records = %+v, want one future-post entry with a run id", records)
	}
}

func TestPublishSchedulerStops(t *testing.T) {
	app, _ := newTestApp(t)
	stop := app.StartPublishScheduler(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	stop()
}
