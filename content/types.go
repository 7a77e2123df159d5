// Package content is the content repository engine: it reads markdown files
// from disk, normalizes their frontmatter into typed items, renders bodies to
// HTML and answers filtered, sorted and paginated queries over the result.
//
// Every load re-reads the content directory. Callers that want caching wrap
// a Repository and invalidate explicitly.
package content

import (
	"time"
)

// Type identifies a content collection.
type Type string

const (
	TypePost   Type = "post"
	TypePage   Type = "page"
	TypeReview Type = "review"
)

// Types lists every content type in load order.
var Types = []Type{TypePost, TypePage, TypeReview}

// Dir is the directory name of the type under the content root.
func (t Type) Dir() string {
	return string(t) + "s"
}

// Path is the public URL path prefix for items of the type.
func (t Type) Path() string {
	switch t {
	case TypePost:
		return "blog"
	case TypeReview:
		return "reviews"
	default:
		return ""
	}
}

// ImageMeta describes an image referenced by a content item. Key is the
// storage key used by the media collaborator.
type ImageMeta struct {
	URL     string `json:"url"`
	Key     string `json:"key"`
	Alt     string `json:"alt,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Author is the optional byline of an item.
type Author struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type OpenGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Type        string `json:"type"`
	URL         string `json:"url,omitempty"`
}

type Twitter struct {
	Card        string `json:"card"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// SEO is the fully defaulted metadata block of an item.
type SEO struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Keywords    []string       `json:"keywords"`
	Canonical   string         `json:"canonical,omitempty"`
	NoIndex     bool           `json:"noindex,omitempty"`
	OpenGraph   OpenGraph      `json:"openGraph"`
	Twitter     Twitter        `json:"twitter"`
	Schema      map[string]any `json:"schema,omitempty"`
}

type PostFields struct {
	ReadingTime int    `json:"readingTime"`
	Series      string `json:"series,omitempty"`
	SeriesOrder int    `json:"seriesOrder,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

type PageFields struct {
	Template string `json:"template,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	Order    int    `json:"order"`
}

type ReviewFields struct {
	Rating       float64  `json:"rating"`
	ProductName  string   `json:"productName,omitempty"`
	ProductURL   string   `json:"productUrl,omitempty"`
	ProductImage string   `json:"productImage,omitempty"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
	Verdict      string   `json:"verdict,omitempty"`
}

// Item is a parsed content file. Exactly one of Post, Page and Review is set,
// matching Type.
type Item struct {
	Type          Type        `json:"type"`
	ID            string      `json:"id"`
	Slug          string      `json:"slug"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	Excerpt       string      `json:"excerpt,omitempty"`
	Published     bool        `json:"published"`
	Featured      bool        `json:"featured"`
	PublishedAt   *time.Time  `json:"publishedAt,omitempty"`
	LastModified  *time.Time  `json:"lastModified,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	Author        *Author     `json:"author,omitempty"`
	Category      string      `json:"category,omitempty"`
	Tags          []string    `json:"tags"`
	FeaturedImage *ImageMeta  `json:"featuredImage,omitempty"`
	Images        []ImageMeta `json:"images"`
	SEO           SEO         `json:"seo"`

	Post   *PostFields   `json:"post,omitempty"`
	Page   *PageFields   `json:"page,omitempty"`
	Review *ReviewFields `json:"review,omitempty"`

	// Path is the source file on disk.
	Path string `json:"-"`
	// WordCount is the markdown word count of the body.
	WordCount int `json:"wordCount"`
}

// EffectiveDate is PublishedAt when set, otherwise CreatedAt.
func (i Item) EffectiveDate() time.Time {
	if i.PublishedAt != nil {
		return *i.PublishedAt
	}
	return i.CreatedAt
}
