package export

import (
	"path"
	"regexp"
	"strings"
)

// RelativeBase is the base URL sentinel selecting relative links.
const RelativeBase = "relative"

// linkPattern matches the marker wherever it starts a link: a quoted
// attribute value, a bare key=value assignment, a later srcset candidate
// (after whitespace or a comma) or a CSS url(). The path stops at whitespace,
// quotes, angle brackets, braces, a closing parenthesis and query delimiters.
// Markers glued to other text are left to leftoverPattern, which substitutes
// the base.
var (
	linkPattern     = regexp.MustCompile(`(["'=(,\s])` + regexp.QuoteMeta(Marker) + `(/?[^?&<>{}()"'\s]*)`)
	leftoverPattern = regexp.MustCompile(regexp.QuoteMeta(Marker) + `/?`)
)

// Rewriter turns marker-based links in rendered text into their final form.
type Rewriter struct {
	// BaseURL is an absolute URL, or RelativeBase (also assumed when empty).
	BaseURL string
	// UglyURLs makes links name files explicitly ("/about/index.html").
	UglyURLs bool
	// Extension is appended to extensionless links when UglyURLs is set.
	Extension string
}

// IsRelativeBase reports whether base selects relative links.
func IsRelativeBase(base string) bool {
	return base == "" || base == RelativeBase || base == "./"
}

// Rewrite rewrites the links of text, the rendered page written to pagePath.
// pagePath is the page's file relative to the output root with a leading
// slash, e.g. "/about/index.html".
func (r Rewriter) Rewrite(text, pagePath string) string {
	relative := IsRelativeBase(r.BaseURL)

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		b.WriteString(text[last:m[2]])
		b.WriteString(text[m[2]:m[3]])
		b.WriteString(r.link(text[m[4]:m[5]], pagePath, relative))
		last = m[1]
	}
	b.WriteString(text[last:])

	return leftoverPattern.ReplaceAllLiteralString(b.String(), r.base(relative))
}

func (r Rewriter) link(p, pagePath string, relative bool) string {
	if r.UglyURLs {
		if p == "" || p == "/" {
			p = "/index.html"
		} else if !strings.HasSuffix(p, "/") && path.Ext(p) == "" {
			p += NormalizeExtension(r.Extension)
		}
	}
	if p == "" {
		p = "/"
	}
	if relative {
		return RelativeURL(pagePath, p)
	}
	return strings.TrimRight(r.BaseURL, "/") + p
}

func (r Rewriter) base(relative bool) string {
	if relative {
		return "./"
	}
	return strings.TrimRight(r.BaseURL, "/") + "/"
}

// RelativeURL returns the link from the document at from to the target to.
// Both are slash-separated paths from the same root. Equal leading segments
// are dropped; a target inside the source's directory (or the source itself)
// is reached through "./", anything else through one "../" per remaining
// source directory.
func RelativeURL(from, to string) string {
	src := strings.Split(strings.TrimPrefix(from, "/"), "/")
	dst := strings.Split(strings.TrimPrefix(to, "/"), "/")

	last := ""
	for len(src) > 0 && len(dst) > 0 && src[0] == dst[0] {
		last = src[0]
		src = src[1:]
		dst = dst[1:]
	}

	if len(src) == 0 {
		if last != "" {
			dst = append([]string{last}, dst...)
		}
		return "./" + strings.Join(dst, "/")
	}
	return "./" + strings.Repeat("../", len(src)-1) + strings.Join(dst, "/")
}
