package inkpress

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/inkpress/content"
)

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestAPIListPublishedOnly(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res content.Result
	decodeJSON(t, rec, &res)
	assert.Equal(t, 2, res.Pagination.Total)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "hello-world", res.Data[0].Slug)
	assert.Equal(t, "second-post", res.Data[1].Slug)

	// published=false on the public API is overridden
	rec = doRequest(app, http.MethodGet, "/api/posts?published=false", nil)
	decodeJSON(t, rec, &res)
	assert.Equal(t, 2, res.Pagination.Total)
}

func TestAPIListFiltersAndPaging(t *testing.T) {
	app, _ := newTestApp(t)

	var res content.Result
	rec := doRequest(app, http.MethodGet, "/api/posts?featured=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &res)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "second-post", res.Data[0].Slug)

	rec = doRequest(app, http.MethodGet, "/api/posts?tags=web", nil)
	decodeJSON(t, rec, &res)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "hello-world", res.Data[0].Slug)

	rec = doRequest(app, http.MethodGet, "/api/posts?limit=1&page=2&sortBy=title&sortOrder=asc", nil)
	decodeJSON(t, rec, &res)
	assert.Equal(t, content.Pagination{Page: 2, Limit: 1, Total: 2, TotalPages: 2}, res.Pagination)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Second Post", res.Data[0].Title)
}

func TestAPIListValidation(t *testing.T) {
	app, _ := newTestApp(t)

	for _, target := range []string{
		"/api/posts?limit=500",
		"/api/posts?page=-1",
		"/api/posts?page=abc",
		"/api/posts?sortBy=rating",
		"/api/posts?featured=maybe",
		"/api/videos",
	} {
		rec := doRequest(app, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400 (%s)", target, rec.Code, rec.Body.String())
			continue
		}
		var body map[string]string
		decodeJSON(t, rec, &body)
		if body["error"] == "" {
			t.Errorf("GET %s: missing error message", target)
		}
	}
}

func TestAPIItem(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/api/posts/hello-world", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var item content.Item
	decodeJSON(t, rec, &item)
	assert.Equal(t, "Hello World", item.Title)
	assert.Contains(t, item.Content, "<strong>inkpress</strong>")
	require.NotNil(t, item.Post)
	assert.Equal(t, 1, item.Post.ReadingTime)

	for _, target := range []string{"/api/posts/future-post", "/api/posts/draft-post", "/api/posts/nope"} {
		rec := doRequest(app, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}

	rec = doRequest(app, http.MethodGet, "/api/reviews/keyboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &item)
	require.NotNil(t, item.Review)
	assert.InDelta(t, 4.0, item.Review.Rating, 0.001)
}

func TestAPISearchAndTags(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/api/search?q=another+go", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sr searchResponse
	decodeJSON(t, rec, &sr)
	require.Equal(t, 1, sr.Total)
	assert.Equal(t, "second-post", sr.Data[0].Slug)

	rec = doRequest(app, http.MethodGet, "/api/search?q=site&type=pages", nil)
	decodeJSON(t, rec, &sr)
	assert.Equal(t, 1, sr.Total)

	rec = doRequest(app, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(app, http.MethodGet, "/api/tags/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tags map[string][]string
	decodeJSON(t, rec, &tags)
	assert.Equal(t, []string{"go", "web"}, tags["tags"])
}

func TestAPICORS(t *testing.T) {
	app, _ := newTestApp(t)
	rec := doRequest(app, http.MethodGet, "/api/posts", map[string]string{"Origin": "https://reader.example.org"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTMLPages(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		target string
		code   int
		body   string
	}{
		{"/", http.StatusOK, "home:2 tag:"},
		{"/?tag=web", http.StatusOK, "home:1 tag:web"},
		{"/blog/hello-world/", http.StatusOK, "item:Hello World related:1"},
		{"/blog/future-post/", http.StatusNotFound, "not found"},
		{"/reviews/keyboard/", http.StatusOK, "item:Keyboard"},
		{"/about/", http.StatusOK, "item:About"},
		{"/missing/", http.StatusNotFound, "not found"},
	}
	for _, tt := range tests {
		rec := doRequest(app, http.MethodGet, tt.target, nil)
		if rec.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.code)
		}
		if !strings.Contains(rec.Body.String(), tt.body) {
			t.Errorf("GET %s body = %q, want to contain %q", tt.target, rec.Body.String(), tt.body)
		}
	}

	rec := doRequest(app, http.MethodGet, "/blog/hello-world", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
}

func TestFeed(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/feed.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/rss+xml")

	feed, err := gofeed.NewParser().ParseString(rec.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "Test Blog", feed.Title)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "Hello World", feed.Items[0].Title)
	assert.Equal(t, "https://example.com/blog/hello-world/", feed.Items[0].Link)
	assert.Equal(t, "The first post", feed.Items[0].Description)
	assert.ElementsMatch(t, []string{"go", "web"}, feed.Items[0].Categories)
	require.NotNil(t, feed.Items[0].PublishedParsed)
	assert.True(t, feed.Items[0].PublishedParsed.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))
}

func TestSitemap(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, loc := range []string{
		"<loc>https://example.com/</loc>",
		"<loc>https://example.com/blog/hello-world/</loc>",
		"<loc>https://example.com/about/</loc>",
		"<loc>https://example.com/reviews/keyboard/</loc>",
	} {
		assert.Contains(t, body, loc)
	}
	assert.NotContains(t, body, "future-post")
	assert.NotContains(t, body, "draft-post")
}

func TestAdminRequiresKey(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/admin/calendar/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(app, http.MethodGet, "/admin/calendar/", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(app, http.MethodGet, "/admin/calendar/", adminHeaders())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(app, http.MethodGet, "/admin/calendar/", map[string]string{"X-Admin-Key": testAdminKey})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAdminRateLimitsFailedKeys(t *testing.T) {
	app, _ := newTestApp(t)
	bad := map[string]string{"Authorization": "Bearer wrong"}

	for i := 0; i < 5; i++ {
		rec := doRequest(app, http.MethodGet, "/admin/calendar/", bad)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := doRequest(app, http.MethodGet, "/admin/calendar/", bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doRequest(app, http.MethodGet, "/admin/calendar/", adminHeaders())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdminStatusAndList(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/admin/status/posts/", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status statusResponse
	decodeJSON(t, rec, &status)
	assert.Equal(t, statusCounts{Draft: 1, Scheduled: 1, Published: 2}, status.Counts)
	assert.Len(t, status.Items, 4)

	rec = doRequest(app, http.MethodGet, "/admin/api/posts?published=false", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var res content.Result
	decodeJSON(t, rec, &res)
	assert.Equal(t, 2, res.Pagination.Total)

	rec = doRequest(app, http.MethodGet, "/admin/api/posts", adminHeaders())
	decodeJSON(t, rec, &res)
	assert.Equal(t, 4, res.Pagination.Total)
}

func TestAdminCalendar(t *testing.T) {
	app, clock := newTestApp(t)
	clock.t = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	rec := doRequest(app, http.MethodGet, "/admin/calendar/", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var cal content.Calendar
	decodeJSON(t, rec, &cal)

	require.Len(t, cal.Today, 1)
	assert.Equal(t, "hello-world", cal.Today[0].Slug)
	var upcoming []string
	for _, it := range cal.Upcoming {
		upcoming = append(upcoming, it.Slug)
	}
	assert.Equal(t, []string{"keyboard", "future-post"}, upcoming)
}

func TestAdminPublishAndLog(t *testing.T) {
	app, clock := newTestApp(t)

	// warm the cache so the publish run has to invalidate it
	rec := doRequest(app, http.MethodGet, "/api/posts/future-post", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	clock.t = time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	rec = doRequest(app, http.MethodPost, "/admin/publish/", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pr publishResponse
	decodeJSON(t, rec, &pr)
	require.Len(t, pr.Published, 1)
	assert.Equal(t, "future-post", pr.Published[0].Slug)

	rec = doRequest(app, http.MethodGet, "/api/posts/future-post", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(app, http.MethodPost, "/admin/publish/", adminHeaders())
	decodeJSON(t, rec, &pr)
	assert.Empty(t, pr.Published)

	rec = doRequest(app, http.MethodGet, "/admin/publish/log/", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var log map[string][]PublishRecord
	decodeJSON(t, rec, &log)
	require.Len(t, log["runs"], 1)
	assert.Equal(t, "future", log["runs"][0].ItemID)
}

func TestContentChangesReachAPI(t *testing.T) {
	app, _ := newTestApp(t)

	total := func() int {
		rec := doRequest(app, http.MethodGet, "/api/pages", nil)
		var res content.Result
		decodeJSON(t, rec, &res)
		return res.Pagination.Total
	}
	require.Equal(t, 1, total())

	path := filepath.Join(app.Config.ContentDir, "pages", "contact.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Contact\npublishedAt: 2024-01-01\n---\nWrite to us.\n"), 0o644))
	assert.Eventually(t, func() bool { return total() == 2 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool { return total() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestAdminCacheInvalidate(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(app, http.MethodGet, "/api/pages", nil)
	var res content.Result
	decodeJSON(t, rec, &res)
	require.Equal(t, 1, res.Pagination.Total)

	path := filepath.Join(app.Config.ContentDir, "pages", "contact.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Contact\npublishedAt: 2024-01-01\n---\nWrite to us.\n"), 0o644))

	rec = doRequest(app, http.MethodPost, "/admin/cache/invalidate/", adminHeaders())
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(app, http.MethodGet, "/api/pages", nil)
	decodeJSON(t, rec, &res)
	assert.Equal(t, 2, res.Pagination.Total)
}

func TestAdminImages(t *testing.T) {
	app, _ := newTestApp(t)

	img := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	for x := 0; x < 1000; x++ {
		img.Set(x, 250, color.RGBA{R: 200, A: 255})
	}
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "My Photo.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/images/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAdminKey)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var uploaded imageResponse
	decodeJSON(t, rec, &uploaded)
	assert.Equal(t, "my-photo.jpg", uploaded.Filename)
	assert.Equal(t, 800, uploaded.Width)
	assert.Equal(t, 400, uploaded.Height)
	assert.Equal(t, "/public/uploads/my-photo.jpg", uploaded.Meta.URL)
	assert.Equal(t, "uploads/my-photo.jpg", uploaded.Meta.Key)
	assert.FileExists(t, filepath.Join(app.Config.StaticDir, "uploads", "my-photo.jpg"))

	rec = doRequest(app, http.MethodGet, "/admin/images/", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	var list map[string][]imageResponse
	decodeJSON(t, rec, &list)
	require.Len(t, list["images"], 1)

	rec = doRequest(app, http.MethodDelete, "/admin/images/my-photo.jpg/", adminHeaders())
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoFileExists(t, filepath.Join(app.Config.StaticDir, "uploads", "my-photo.jpg"))

	rec = doRequest(app, http.MethodGet, "/admin/images/", adminHeaders())
	decodeJSON(t, rec, &list)
	assert.Empty(t, list["images"])
}
