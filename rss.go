package inkpress

import (
	"encoding/xml"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkpress/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

// buildFeed turns posts, newest first, into an RSS 2.0 document.
func buildFeed(cfg SiteConfig, posts []content.Item) rssXML {
	items := make([]rssItem, 0, len(posts))
	var latest time.Time
	for _, p := range posts {
		at := p.EffectiveDate()
		if at.After(latest) {
			latest = at
		}
		link := ItemURL(cfg.URL, p)
		it := rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.SEO.Description,
			Categories:  p.Tags,
			PubDate:     at.Format(time.RFC1123Z),
			GUID:        link,
		}
		if p.Author != nil && p.Author.Email != "" {
			it.Author = p.Author.Email + " (" + p.Author.Name + ")"
		}
		items = append(items, it)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        BuildURL(cfg.URL),
			Description: cfg.Description,
			Items:       items,
		},
	}
	if !latest.IsZero() {
		feed.Channel.LastBuildDate = latest.Format(time.RFC1123Z)
	}
	return feed
}

func (a *App) renderRSS(c echo.Context, posts []content.Item) error {
	return renderXML(c, "application/rss+xml; charset=utf-8", buildFeed(a.Config, posts))
}
