package content

import (
	"net/url"
	"strings"

	"github.com/eringen/inkpress/markdown"
)

// DeriveImageKey maps an image URL to its storage key. Absolute URLs use
// their path without the leading slash. Anything else falls back to the last
// three path segments (folder/date/filename layouts), or the raw string.
func DeriveImageKey(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		if p := strings.TrimPrefix(u.Path, "/"); p != "" {
			return p
		}
	}
	var segs []string
	for _, s := range strings.Split(raw, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) >= 3 {
		return strings.Join(segs[len(segs)-3:], "/")
	}
	return raw
}

// ParseImage accepts a bare URL string or an object with a url field.
func ParseImage(v any) (ImageMeta, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return ImageMeta{}, false
		}
		return ImageMeta{URL: s, Key: DeriveImageKey(s)}, true
	}
	m := asMap(v)
	if m == nil {
		return ImageMeta{}, false
	}
	img := ImageMeta{
		URL:     m.String("url"),
		Key:     m.String("key"),
		Alt:     m.String("alt"),
		Width:   m.Int("width"),
		Height:  m.Int("height"),
		Caption: m.String("caption"),
	}
	if img.URL == "" {
		return ImageMeta{}, false
	}
	if img.Key == "" {
		img.Key = DeriveImageKey(img.URL)
	}
	return img, true
}

func inlineImages(body string) []ImageMeta {
	refs := markdown.ExtractImages(body)
	out := make([]ImageMeta, 0, len(refs))
	for _, r := range refs {
		out = append(out, ImageMeta{URL: r.URL, Key: DeriveImageKey(r.URL), Alt: r.Alt})
	}
	return out
}

// MergeImages concatenates the lists and drops later entries whose URL was
// already seen.
func MergeImages(lists ...[]ImageMeta) []ImageMeta {
	seen := make(map[string]struct{})
	out := []ImageMeta{}
	for _, list := range lists {
		for _, img := range list {
			if _, ok := seen[img.URL]; ok {
				continue
			}
			seen[img.URL] = struct{}{}
			out = append(out, img)
		}
	}
	return out
}
