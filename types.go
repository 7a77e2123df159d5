package inkpress

import (
	"path"
	"time"

	"github.com/eringen/inkpress/content"
)

// Image is an uploaded media file stored under <StaticDir>/uploads.
type Image struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Size         int    `json:"size"`
	UploadedAt   string `json:"uploadedAt"`
}

// Meta describes the upload the way content frontmatter references images.
func (img Image) Meta() content.ImageMeta {
	key := path.Join(uploadsSubdir, img.Filename)
	return content.ImageMeta{
		URL:    "/public/" + key,
		Key:    key,
		Width:  img.Width,
		Height: img.Height,
	}
}

// PublishRecord is one item flipped live by a publisher run.
type PublishRecord struct {
	RunID       string    `json:"runId"`
	Type        string    `json:"type"`
	ItemID      string    `json:"itemId"`
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"publishedAt"`
	FlippedAt   time.Time `json:"flippedAt"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	TwitterCard string
	NoIndex     bool
	JSONLD      string
}

// ItemMeta builds the head metadata of an item from its SEO block.
func ItemMeta(item content.Item, cfg SiteConfig) PageMeta {
	url := item.SEO.Canonical
	if url == "" {
		url = ItemURL(cfg.URL, item)
	}
	return PageMeta{
		Title:       item.SEO.Title,
		Description: item.SEO.Description,
		URL:         url,
		OGType:      item.SEO.OpenGraph.Type,
		Image:       item.SEO.OpenGraph.Image,
		TwitterCard: item.SEO.Twitter.Card,
		NoIndex:     item.SEO.NoIndex,
		JSONLD:      ItemJsonLD(item),
	}
}

// SiteMeta builds the head metadata of the home page.
func SiteMeta(cfg SiteConfig) PageMeta {
	return PageMeta{
		Title:       cfg.Name,
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
		TwitterCard: "summary",
		JSONLD:      WebsiteJsonLD(cfg),
	}
}
