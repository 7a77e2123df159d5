package content

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// firstNonEmpty returns the first candidate that is not blank. Fallback
// chains are written as ordered argument lists.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}

func firstNonEmptyList(candidates ...[]string) []string {
	for _, c := range candidates {
		if len(c) > 0 {
			return append([]string(nil), c...)
		}
	}
	return []string{}
}

// CanonicalURL joins the site URL with the public path of an item and adds a
// trailing slash. It returns "" without a site URL.
func CanonicalURL(siteURL string, t Type, slug string) string {
	if strings.TrimSpace(siteURL) == "" {
		return ""
	}
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	u.Path = path.Join(u.Path, t.Path(), slug)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// buildSEO assembles the metadata block once, at construction.
func buildSEO(front Frontmatter, item *Item, siteURL string) SEO {
	seo := front.Map("seo")
	og := seo.Map("openGraph")
	tw := seo.Map("twitter")

	featured := ""
	if item.FeaturedImage != nil {
		featured = item.FeaturedImage.URL
	}

	s := SEO{
		Title:       firstNonEmpty(seo.String("title"), item.Title),
		Description: firstNonEmpty(seo.String("description"), item.Excerpt),
		Keywords:    firstNonEmptyList(seo.Strings("keywords"), item.Tags),
		Canonical: firstNonEmpty(
			seo.String("canonical"),
			front.String("canonical"),
			CanonicalURL(siteURL, item.Type, item.Slug),
		),
		NoIndex: seo.Bool("noindex", false),
	}

	ogType := "article"
	if item.Type == TypePage {
		ogType = "website"
	}
	s.OpenGraph = OpenGraph{
		Title:       firstNonEmpty(og.String("title"), seo.String("ogTitle"), s.Title),
		Description: firstNonEmpty(og.String("description"), seo.String("ogDescription"), s.Description),
		Image:       firstNonEmpty(og.String("image"), seo.String("ogImage"), featured),
		Type:        firstNonEmpty(og.String("type"), seo.String("ogType"), ogType),
		URL:         s.Canonical,
	}

	twImage := firstNonEmpty(tw.String("image"), seo.String("twitterImage"), s.OpenGraph.Image)
	card := "summary"
	if twImage != "" {
		card = "summary_large_image"
	}
	s.Twitter = Twitter{
		Card:        firstNonEmpty(tw.String("card"), seo.String("twitterCard"), card),
		Title:       firstNonEmpty(tw.String("title"), seo.String("twitterTitle"), s.OpenGraph.Title),
		Description: firstNonEmpty(tw.String("description"), seo.String("twitterDescription"), s.OpenGraph.Description),
		Image:       twImage,
	}

	s.Schema = seo.Map("schema")
	if s.Schema == nil {
		s.Schema = front.Map("schema")
	}
	if s.Schema == nil {
		s.Schema = defaultSchema(item, s)
	}
	return s
}

// defaultSchema returns a schema.org JSON-LD mapping for item.
func defaultSchema(item *Item, s SEO) map[string]any {
	data := map[string]any{
		"@context":    "https://schema.org",
		"headline":    s.Title,
		"description": s.Description,
	}
	if s.Canonical != "" {
		data["url"] = s.Canonical
		data["mainEntityOfPage"] = map[string]any{"@type": "WebPage", "@id": s.Canonical}
	}
	if !item.EffectiveDate().IsZero() {
		data["datePublished"] = item.EffectiveDate().Format(time.RFC3339)
	}
	if !item.UpdatedAt.IsZero() {
		data["dateModified"] = item.UpdatedAt.Format(time.RFC3339)
	}
	if item.Author != nil {
		data["author"] = map[string]any{"@type": "Person", "name": item.Author.Name}
	}
	if s.OpenGraph.Image != "" {
		data["image"] = s.OpenGraph.Image
	}
	if len(s.Keywords) > 0 {
		data["keywords"] = strings.Join(s.Keywords, ", ")
	}

	switch item.Type {
	case TypePage:
		data["@type"] = "WebPage"
		data["name"] = s.Title
		delete(data, "headline")
	case TypeReview:
		data["@type"] = "Review"
		data["name"] = s.Title
		if item.Review != nil {
			data["itemReviewed"] = map[string]any{
				"@type": "Product",
				"name":  firstNonEmpty(item.Review.ProductName, item.Title),
			}
			data["reviewRating"] = map[string]any{
				"@type":       "Rating",
				"ratingValue": item.Review.Rating,
				"bestRating":  5,
				"worstRating": 1,
			}
		}
	default:
		data["@type"] = "BlogPosting"
	}
	return data
}
