// Package markdown renders content bodies to HTML with the site's rendering
// rules: lazy responsive images, external link targeting, labelled code fences
// and scrollable tables.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const imageStyle = "max-width:100%;height:auto"

// Config controls the renderer.
type Config struct {
	// SiteURL is the canonical site URL; links to any other host are external.
	SiteURL string
	// Sanitize runs the rendered HTML through a bluemonday UGC policy.
	Sanitize bool
}

// Renderer converts markdown to HTML. It holds no per-call state and is safe
// for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a Renderer for cfg.
func New(cfg Config) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&attrTransformer{siteHost: hostOf(cfg.SiteURL)}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&blockRenderer{}, 100),
			),
		),
	)
	r := &Renderer{md: md}
	if cfg.Sanitize {
		r.policy = newPolicy()
	}
	return r
}

// Render converts src to HTML. The same input always yields the same output.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	if r.policy != nil {
		return string(r.policy.SanitizeBytes(buf.Bytes())), nil
	}
	return buf.String(), nil
}

// Component returns a templ.Component that writes already-rendered HTML.
func Component(rendered string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, rendered)
		return err
	})
}

// WordCount counts whitespace-separated words in the markdown source.
func WordCount(src string) int {
	return len(strings.Fields(src))
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\- ]+$`)).Globally()
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")
	p.AllowStyles("max-width", "height").OnElements("img")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("rel").OnElements("a")
	return p
}

// attrTransformer annotates images and links in the parsed document.
type attrTransformer struct {
	siteHost string
}

func (t *attrTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			if !SafeURL(string(node.Destination)) {
				node.Destination = nil
			}
			node.SetAttributeString("loading", []byte("lazy"))
			node.SetAttributeString("style", []byte(imageStyle))
		case *ast.Link:
			dest := string(node.Destination)
			if !SafeURL(dest) {
				node.Destination = nil
				return ast.WalkContinue, nil
			}
			if t.isExternal(dest) {
				markExternal(node)
			}
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkURL && t.isExternal(string(node.URL(source))) {
				markExternal(node)
			}
		}
		return ast.WalkContinue, nil
	})
}

func markExternal(n ast.Node) {
	// The html renderer asserts attribute values to []byte.
	n.SetAttributeString("target", []byte("_blank"))
	n.SetAttributeString("rel", []byte("noopener noreferrer"))
}

func (t *attrTransformer) isExternal(dest string) bool {
	u, err := url.Parse(strings.TrimSpace(dest))
	if err != nil || u.Host == "" {
		return false
	}
	return !sameHost(u.Hostname(), t.siteHost)
}

func hostOf(siteURL string) string {
	u, err := url.Parse(strings.TrimSpace(siteURL))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func sameHost(a, b string) bool {
	if b == "" {
		return false
	}
	a = strings.TrimPrefix(strings.ToLower(a), "www.")
	b = strings.TrimPrefix(strings.ToLower(b), "www.")
	return a == b
}

// SafeURL reports whether raw may be emitted in an href or src attribute.
// Relative references, fragments and http(s)/mailto/tel URLs are allowed.
func SafeURL(raw string) bool {
	val := strings.TrimSpace(raw)
	if val == "" || strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return true
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https", "mailto", "tel":
		return true
	default:
		return false
	}
}
