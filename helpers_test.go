package inkpress

import (
	"encoding/json"
	"testing"

	"github.com/eringen/inkpress/content"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"blog", "hello"}, "https://example.com/blog/hello/"},
		{"https://example.com/sub", []string{"about"}, "https://example.com/sub/about/"},
		{"https://example.com/", []string{"blog", "a b"}, "https://example.com/blog/a%20b/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestItemURL(t *testing.T) {
	tests := []struct {
		item content.Item
		want string
	}{
		{content.Item{Type: content.TypePost, Slug: "hello"}, "https://example.com/blog/hello/"},
		{content.Item{Type: content.TypeReview, Slug: "kb"}, "https://example.com/reviews/kb/"},
		{content.Item{Type: content.TypePage, Slug: "about"}, "https://example.com/about/"},
	}
	for _, tt := range tests {
		if got := ItemURL("https://example.com", tt.item); got != tt.want {
			t.Errorf("ItemURL(%s/%s) = %q, want %q", tt.item.Type, tt.item.Slug, got, tt.want)
		}
	}
}

func TestFilterRelated(t *testing.T) {
	current := content.Item{Type: content.TypePost, Slug: "a", Tags: []string{"Go", " web "}}
	items := []content.Item{
		current,
		{Type: content.TypePost, Slug: "b", Tags: []string{"go"}},
		{Type: content.TypePost, Slug: "c", Tags: []string{"rust"}},
		{Type: content.TypePost, Slug: "d", Tags: []string{"WEB", "go"}},
	}
	related := FilterRelated(current, items)
	if len(related) != 2 {
		t.Fatalf("len(related) = %d, want 2", len(related))
	}
	if related[0].Slug != "b" || related[1].Slug != "d" {
		t.Errorf("related = %s, %s; want b, d", related[0].Slug, related[1].Slug)
	}
}

func TestCollectTags(t *testing.T) {
	items := []content.Item{
		{Tags: []string{"Go", "web"}},
		{Tags: []string{" go ", "", "CMS"}},
	}
	got := CollectTags(items)
	want := []string{"cms", "go", "web"}
	if len(got) != len(want) {
		t.Fatalf("CollectTags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CollectTags[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestItemJsonLD(t *testing.T) {
	item := content.Item{SEO: content.SEO{Schema: map[string]any{"@type": "BlogPosting", "headline": "Hi"}}}
	var data map[string]any
	if err := json.Unmarshal([]byte(ItemJsonLD(item)), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data["@type"] != "BlogPosting" {
		t.Errorf("@type = %v, want BlogPosting", data["@type"])
	}
	if got := ItemJsonLD(content.Item{}); got != "{}" {
		t.Errorf("ItemJsonLD(empty) = %q, want {}", got)
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	var data map[string]any
	if err := json.Unmarshal([]byte(WebsiteJsonLD(SiteConfig{Name: "Blog", URL: "https://example.com", Author: "Ada"})), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data["name"] != "Blog" {
		t.Errorf("name = %v, want Blog", data["name"])
	}
	author, ok := data["author"].(map[string]any)
	if !ok || author["name"] != "Ada" {
		t.Errorf("author = %v, want Ada", data["author"])
	}
}
