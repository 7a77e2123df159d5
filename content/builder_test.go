package content

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/djherbis/times"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fileTimes = FileTimes{
	Created:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	Modified: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
}

func TestBuildPostDefaults(t *testing.T) {
	b := NewBuilder(BuilderConfig{SiteURL: "https://example.com"})
	src := "---\ntitle: Hello, World!\nexcerpt: A first post\ntags: go, web\n---\nSome **bold** text.\n"

	item, err := b.Build(TypePost, "hello", []byte(src), fileTimes)
	require.NoError(t, err)

	assert.Equal(t, "hello", item.ID)
	assert.Equal(t, "hello-world", item.Slug)
	assert.True(t, item.Published)
	assert.False(t, item.Featured)
	assert.Nil(t, item.PublishedAt)
	assert.Equal(t, fileTimes.Created, item.EffectiveDate())
	assert.Equal(t, []string{"go", "web"}, item.Tags)
	assert.Contains(t, item.Content, "<strong>bold</strong>")
	require.NotNil(t, item.Post)
	assert.Nil(t, item.Page)
	assert.Nil(t, item.Review)
	assert.Equal(t, 1, item.Post.ReadingTime)

	assert.Equal(t, "Hello, World!", item.SEO.Title)
	assert.Equal(t, "A first post", item.SEO.Description)
	assert.Equal(t, []string{"go", "web"}, item.SEO.Keywords)
	assert.Equal(t, "https://example.com/blog/hello-world/", item.SEO.Canonical)
	assert.Equal(t, "article", item.SEO.OpenGraph.Type)
	assert.Equal(t, "summary", item.SEO.Twitter.Card)
	assert.Equal(t, "BlogPosting", item.SEO.Schema["@type"])
}

func TestBuildTitleFallsBackToID(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	item, err := b.Build(TypePage, "about-us", []byte("no frontmatter here"), fileTimes)
	require.NoError(t, err)
	assert.Equal(t, "about-us", item.Title)
	assert.Equal(t, "about-us", item.Slug)
	require.NotNil(t, item.Page)
	assert.Equal(t, "website", item.SEO.OpenGraph.Type)
	assert.Empty(t, item.SEO.Canonical)
}

func TestBuildReadingTime(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	body := strings.Repeat("word ", 400)

	item, err := b.Build(TypePost, "long", []byte("---\ntitle: Long\n---\n"+body), fileTimes)
	require.NoError(t, err)
	assert.Equal(t, 400, item.WordCount)
	assert.Equal(t, 2, item.Post.ReadingTime)

	item, err = b.Build(TypePost, "long", []byte("---\ntitle: Long\nreadingTime: 7\n---\n"+body), fileTimes)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Post.ReadingTime)
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words, wpm, want int
	}{
		{0, 200, 0},
		{1, 200, 1},
		{200, 200, 1},
		{201, 200, 2},
		{400, 0, 2},
	}
	for _, tt := range tests {
		if got := ReadingTime(tt.words, tt.wpm); got != tt.want {
			t.Errorf("ReadingTime(%d, %d) = %d, want %d", tt.words, tt.wpm, got, tt.want)
		}
	}
}

func TestBuildReview(t *testing.T) {
	b := NewBuilder(BuilderConfig{SiteURL: "https://example.com"})
	src := `---
title: Keyboard Review
slug: keyboard
rating: 4.5
productName: Clacker 9000
pros: [loud, sturdy]
cons: "heavy, pricey"
featuredImage:
  url: https://cdn.example.com/media/2024/kb.jpg
  alt: Keyboard
---
Great keyboard.
`
	item, err := b.Build(TypeReview, "keyboard-review", []byte(src), fileTimes)
	require.NoError(t, err)
	require.NotNil(t, item.Review)
	assert.InDelta(t, 4.5, item.Review.Rating, 0.0001)
	assert.Equal(t, "Clacker 9000", item.Review.ProductName)
	assert.Equal(t, []string{"loud", "sturdy"}, item.Review.Pros)
	assert.Equal(t, []string{"heavy", "pricey"}, item.Review.Cons)

	require.NotNil(t, item.FeaturedImage)
	assert.Equal(t, "media/2024/kb.jpg", item.FeaturedImage.Key)
	assert.Equal(t, "https://example.com/reviews/keyboard/", item.SEO.Canonical)
	assert.Equal(t, item.FeaturedImage.URL, item.SEO.OpenGraph.Image)
	assert.Equal(t, "summary_large_image", item.SEO.Twitter.Card)
	assert.Equal(t, "Review", item.SEO.Schema["@type"])
}

func TestBuildSEOOverrides(t *testing.T) {
	b := NewBuilder(BuilderConfig{SiteURL: "https://example.com"})
	src := `---
title: Post
seo:
  title: Custom Title
  description: Custom description
  keywords: [alpha, beta]
  canonical: https://other.example.com/post/
  noindex: true
  openGraph:
    type: video
  schema:
    "@type": HowTo
---
body
`
	item, err := b.Build(TypePost, "post", []byte(src), fileTimes)
	require.NoError(t, err)
	assert.Equal(t, "Custom Title", item.SEO.Title)
	assert.Equal(t, "Custom description", item.SEO.Description)
	assert.Equal(t, []string{"alpha", "beta"}, item.SEO.Keywords)
	assert.Equal(t, "https://other.example.com/post/", item.SEO.Canonical)
	assert.True(t, item.SEO.NoIndex)
	assert.Equal(t, "video", item.SEO.OpenGraph.Type)
	assert.Equal(t, "Custom Title", item.SEO.OpenGraph.Title)
	assert.Equal(t, "Custom Title", item.SEO.Twitter.Title)
	assert.Equal(t, "HowTo", item.SEO.Schema["@type"])
}

func TestBuildMergesImages(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	src := `---
title: Gallery
images:
  - /media/2024/a.png
  - url: /media/2024/c.png
    alt: C
---
![first](/media/2024/a.png) and ![second](/media/2024/b.png)
`
	item, err := b.Build(TypePost, "gallery", []byte(src), fileTimes)
	require.NoError(t, err)
	require.Len(t, item.Images, 3)
	assert.Equal(t, "first", item.Images[0].Alt)
	assert.Equal(t, "/media/2024/b.png", item.Images[1].URL)
	assert.Equal(t, "C", item.Images[2].Alt)
	assert.Equal(t, "media/2024/c.png", item.Images[2].Key)
}

func TestBuildDateAliasAndFlags(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	src := "---\ntitle: Dated\ndate: 2024-03-01\npublished: false\nfeatured: true\n---\nbody\n"
	item, err := b.Build(TypePost, "dated", []byte(src), fileTimes)
	require.NoError(t, err)
	require.NotNil(t, item.PublishedAt)
	assert.True(t, item.PublishedAt.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, item.Published)
	assert.True(t, item.Featured)
}

func TestBuildInvalidDate(t *testing.T) {
	b := NewBuilder(BuilderConfig{})
	_, err := b.Build(TypePost, "bad", []byte("---\npublishedAt: 2024-13-45\n---\n"), fileTimes)
	assert.Error(t, err)
}

func TestBuildFileWrapsParseError(t *testing.T) {
	root := t.TempDir()
	path := writeContent(t, root, TypePost, "broken.md", "---\ntitle: [oops\n---\nbody\n")

	_, err := NewBuilder(BuilderConfig{}).BuildFile(path, TypePost)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "broken.md")
}

func TestBuildFileRejectsUnclosedHeader(t *testing.T) {
	root := t.TempDir()
	path := writeContent(t, root, TypePost, "open.md", "---\ntitle: T\nno closing delimiter\n")

	_, err := NewBuilder(BuilderConfig{}).BuildFile(path, TypePost)
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestStatTimesIgnoresChangeTime(t *testing.T) {
	path := writeContent(t, t.TempDir(), TypePost, "old.md", "---\ntitle: Old\n---\n")
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, old, old))

	ft, err := statTimes(path)
	require.NoError(t, err)
	assert.True(t, ft.Modified.Equal(old), "Modified = %v, want %v", ft.Modified, old)

	ts, err := times.Stat(path)
	require.NoError(t, err)
	if ts.HasBirthTime() {
		assert.True(t, ft.Created.Equal(ts.BirthTime()))
	} else {
		assert.True(t, ft.Created.Equal(old), "Created = %v, want mtime %v", ft.Created, old)
	}
}
