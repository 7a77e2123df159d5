package inkpress

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/inkpress/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// ItemURL is the public URL of item under base.
func ItemURL(base string, item content.Item) string {
	if p := item.Type.Path(); p != "" {
		return BuildURL(base, p, item.Slug)
	}
	return BuildURL(base, item.Slug)
}

// FilterRelated returns items that share at least one tag with current.
func FilterRelated(current content.Item, items []content.Item) []content.Item {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []content.Item
	for _, it := range items {
		if it.Type == current.Type && it.Slug == current.Slug {
			continue
		}
		for _, t := range it.Tags {
			if _, ok := tagSet[normalizeTag(t)]; ok {
				related = append(related, it)
				break
			}
		}
	}
	return related
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	return marshalJsonLD(data)
}

// ItemJsonLD returns the item's schema block as a JSON-LD string.
func ItemJsonLD(item content.Item) string {
	if len(item.SEO.Schema) == 0 {
		return "{}"
	}
	return marshalJsonLD(item.SEO.Schema)
}

func marshalJsonLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
