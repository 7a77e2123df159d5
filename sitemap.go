package inkpress

import (
	"encoding/xml"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkpress/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists the home page and every item not marked noindex.
func buildSitemap(cfg SiteConfig, items []content.Item) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: BuildURL(cfg.URL)},
	}
	for _, it := range items {
		if it.SEO.NoIndex {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     ItemURL(cfg.URL, it),
			LastMod: lastMod(it),
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func lastMod(it content.Item) string {
	at := it.EffectiveDate()
	if it.LastModified != nil && it.LastModified.After(at) {
		at = *it.LastModified
	}
	if it.UpdatedAt.After(at) {
		at = it.UpdatedAt
	}
	if at.IsZero() {
		return ""
	}
	return at.Format("2006-01-02")
}

func (a *App) renderSitemap(c echo.Context, items []content.Item) error {
	return renderXML(c, "application/xml; charset=utf-8", buildSitemap(a.Config, items))
}
