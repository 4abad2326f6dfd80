// Package markdown converts page bodies to HTML with goldmark.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Converter renders markdown to HTML. Site-root links ("/about/") are
// prefixed so that they take part in link rewriting like template links.
type Converter struct {
	md goldmark.Markdown
}

// New returns a Converter prefixing site-root link and image destinations
// with prefix. An empty prefix leaves destinations alone.
func New(prefix string) *Converter {
	opts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}
	if prefix != "" {
		opts = append(opts, goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(rootLinks{prefix: []byte(prefix)}, 100)),
		))
	}
	return &Converter{md: goldmark.New(opts...)}
}

// Convert renders body (frontmatter already removed).
func (c *Converter) Convert(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type rootLinks struct {
	prefix []byte
}

func (t rootLinks) Transform(doc *gmast.Document, _ text.Reader, _ parser.Context) {
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link:
			node.Destination = t.apply(node.Destination)
		case *gmast.Image:
			node.Destination = t.apply(node.Destination)
		}
		return gmast.WalkContinue, nil
	})
}

func (t rootLinks) apply(dest []byte) []byte {
	s := string(dest)
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") {
		return dest
	}
	out := make([]byte, 0, len(t.prefix)+len(dest))
	out = append(out, t.prefix...)
	return append(out, dest...)
}
