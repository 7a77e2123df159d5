// Package views provides the default HTML components for an inkpress site.
// Components live in the .templ files; run `templ generate` after editing them.
package views

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/inkpress"
)

const dateLayout = "January 2, 2006"

var titleCaser = cases.Title(language.English)

// Default returns the built-in view set.
func Default() inkpress.ViewFuncs {
	return inkpress.ViewFuncs{
		Home:        Home,
		Item:        Item,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}

// label turns a slug-ish word such as a tag or type into a display label.
func label(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "-", " "))
}

func pageTitle(meta inkpress.PageMeta, site inkpress.SiteConfig) string {
	switch {
	case meta.Title == "":
		return site.Name
	case site.Name != "" && meta.Title != site.Name:
		return meta.Title + " | " + site.Name
	default:
		return meta.Title
	}
}

// hasJSONLD reports whether meta carries a non-empty JSON-LD object.
func hasJSONLD(meta inkpress.PageMeta) bool {
	return meta.JSONLD != "" && meta.JSONLD != "{}"
}

// jsonLDScript wraps the JSON-LD payload in its script element. encoding/json
// escapes <, > and &, so the payload cannot end the element.
func jsonLDScript(payload string) string {
	return `<script type="application/ld+json">` + payload + `</script>`
}

func tagHref(tag string) string {
	return "/?tag=" + url.QueryEscape(tag)
}

func pageHref(n int, tag string) string {
	q := url.Values{"page": {strconv.Itoa(n)}}
	if tag != "" {
		q.Set("tag", tag)
	}
	return "/?" + q.Encode()
}

func ratingText(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
