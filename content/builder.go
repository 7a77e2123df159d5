package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"

	"github.com/eringen/inkpress/markdown"
)

// DefaultWordsPerMinute is the reading speed used for post reading time.
const DefaultWordsPerMinute = 200

// BuilderConfig configures item construction.
type BuilderConfig struct {
	// SiteURL is used for external link detection and canonical URLs.
	SiteURL string
	// Sanitize passes rendered HTML through the sanitizer.
	Sanitize bool
	// WordsPerMinute defaults to DefaultWordsPerMinute.
	WordsPerMinute int
}

// FileTimes are the filesystem timestamps of a content file.
type FileTimes struct {
	Created  time.Time
	Modified time.Time
}

// Builder turns markdown documents into typed items.
type Builder struct {
	renderer *markdown.Renderer
	siteURL  string
	wpm      int
}

// NewBuilder creates a Builder for cfg.
func NewBuilder(cfg BuilderConfig) *Builder {
	wpm := cfg.WordsPerMinute
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	return &Builder{
		renderer: markdown.New(markdown.Config{SiteURL: cfg.SiteURL, Sanitize: cfg.Sanitize}),
		siteURL:  cfg.SiteURL,
		wpm:      wpm,
	}
}

// BuildFile reads path and builds an item of type t. Any failure, including
// a panic while rendering, is returned as a *ParseError.
func (b *Builder) BuildFile(path string, t Type) (item Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ParseError{Path: path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	src, err := os.ReadFile(path)
	if err != nil {
		return Item{}, &ParseError{Path: path, Err: err}
	}
	ft, err := statTimes(path)
	if err != nil {
		return Item{}, &ParseError{Path: path, Err: err}
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	item, err = b.Build(t, id, src, ft)
	if err != nil {
		return Item{}, &ParseError{Path: path, Err: err}
	}
	item.Path = path
	return item, nil
}

// Build constructs an item from raw file contents.
func (b *Builder) Build(t Type, id string, src []byte, ft FileTimes) (Item, error) {
	doc, err := ParseDocument(src)
	if err != nil {
		return Item{}, err
	}
	front := doc.Front

	title := firstNonEmpty(front.String("title"), id)
	slug := firstNonEmpty(front.String("slug"), Slugify(title), Slugify(id), id)

	publishedAt, err := optionalTime(front, "publishedAt", "date")
	if err != nil {
		return Item{}, err
	}
	lastModified, err := optionalTime(front, "lastModified")
	if err != nil {
		return Item{}, err
	}

	var featured *ImageMeta
	if img, ok := front.Image("featuredImage"); ok {
		featured = &img
	}

	html, err := b.renderer.Render(doc.Body)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		Type:          t,
		ID:            id,
		Slug:          slug,
		Title:         title,
		Content:       html,
		Excerpt:       front.String("excerpt"),
		Published:     front.Bool("published", true),
		Featured:      front.Bool("featured", false),
		PublishedAt:   publishedAt,
		LastModified:  lastModified,
		CreatedAt:     ft.Created,
		UpdatedAt:     ft.Modified,
		Author:        front.Author("author"),
		Category:      front.String("category"),
		Tags:          front.Tags(),
		FeaturedImage: featured,
		Images:        MergeImages(inlineImages(doc.Body), front.Images("images")),
		WordCount:     markdown.WordCount(doc.Body),
	}

	switch t {
	case TypePost:
		rt := front.Int("readingTime")
		if rt <= 0 {
			rt = ReadingTime(item.WordCount, b.wpm)
		}
		item.Post = &PostFields{
			ReadingTime: rt,
			Series:      front.String("series"),
			SeriesOrder: front.Int("seriesOrder"),
			Difficulty:  front.String("difficulty"),
		}
	case TypePage:
		item.Page = &PageFields{
			Template: front.String("template"),
			ParentID: front.String("parentId"),
			Order:    front.Int("order"),
		}
	case TypeReview:
		item.Review = &ReviewFields{
			Rating:       front.Float("rating"),
			ProductName:  front.String("productName"),
			ProductURL:   front.String("productUrl"),
			ProductImage: front.String("productImage"),
			Pros:         front.Strings("pros"),
			Cons:         front.Strings("cons"),
			Verdict:      front.String("verdict"),
		}
	default:
		return Item{}, fmt.Errorf("unknown content type %q", t)
	}

	item.SEO = buildSEO(front, &item, b.siteURL)
	return item, nil
}

// ReadingTime is words divided by wpm, rounded up.
func ReadingTime(words, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	return (words + wpm - 1) / wpm
}

func optionalTime(front Frontmatter, keys ...string) (*time.Time, error) {
	for _, key := range keys {
		t, ok, err := front.Time(key)
		if err != nil {
			return nil, err
		}
		if ok {
			return &t, nil
		}
	}
	return nil, nil
}

// statTimes reads birth time as Created, or mtime where the platform has no
// birth time. Change time moves on every write, so it is never a creation
// date.
func statTimes(path string) (FileTimes, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return FileTimes{}, err
	}
	ft := FileTimes{Modified: ts.ModTime(), Created: ts.ModTime()}
	if ts.HasBirthTime() {
		ft.Created = ts.BirthTime()
	}
	return ft, nil
}
