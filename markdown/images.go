package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// imageParser only parses; it never renders, so it carries no transformers.
var imageParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// ImageRef is an inline image reference found in markdown source.
type ImageRef struct {
	Alt string
	URL string
}

// ExtractImages returns every inline image in src, in document order. Image
// syntax inside code spans and code blocks is not an image and is skipped.
// Duplicates are kept; callers decide how to merge them.
func ExtractImages(src string) []ImageRef {
	source := []byte(src)
	doc := imageParser.Parse(text.NewReader(source))

	var refs []ImageRef
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		if u := strings.TrimSpace(string(img.Destination)); u != "" {
			refs = append(refs, ImageRef{Alt: strings.TrimSpace(string(img.Text(source))), URL: u})
		}
		return ast.WalkSkipChildren, nil
	})
	return refs
}
